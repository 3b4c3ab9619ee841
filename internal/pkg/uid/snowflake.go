package uid

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates int64 ids using the Twitter snowflake layout.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node number is derived from the host identity,
// so replicas running on different machines do not collide.
func NewSnowflake() (*Snowflake, error) {
	g := &ObjectIDGenerator{}
	src, err := g.machineIDOrHostnameStrict()
	if err != nil {
		return nil, err
	}

	h := fnv.New32a()
	h.Write([]byte(src))
	h.Write([]byte{byte(os.Getpid()), byte(os.Getpid() >> 8)})

	node, err := snowflake.NewNode(int64(h.Sum32() % 1024))
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns the next id.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
