package tests

import (
	"fmt"
	"sync/atomic"
	"time"
)

var phoneSeq atomic.Int64

// uniquePhone returns a local mobile number that is unlikely to exist on the server.
func uniquePhone() string {
	n := (time.Now().UnixNano()/1000 + phoneSeq.Add(1)) % 10_000_000
	return fmt.Sprintf("0935%07d", n)
}
