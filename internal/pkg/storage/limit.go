package storage

import (
	"errors"
	"io"
)

// ErrTooLarge is returned by a LimitedReader once its source outgrows the limit.
var ErrTooLarge = errors.New("storage: object exceeds max size")

// LimitedReader passes through at most max bytes and fails with ErrTooLarge
// when the source holds more. Unlike io.LimitReader it never truncates silently.
type LimitedReader struct {
	r     io.Reader
	max   int64
	read  int64
	extra [1]byte
	over  bool
}

// LimitReader wraps r with a size limit of max bytes.
func LimitReader(r io.Reader, max int64) *LimitedReader {
	return &LimitedReader{r: r, max: max}
}

func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.over {
		return 0, ErrTooLarge
	}

	if l.read >= l.max {
		n, err := l.r.Read(l.extra[:])
		if n > 0 {
			l.over = true
			return 0, ErrTooLarge
		}
		return 0, err
	}

	if remaining := l.max - l.read; int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err := l.r.Read(p)
	l.read += int64(n)
	return n, err
}

// Size is the number of bytes read so far.
func (l *LimitedReader) Size() int64 {
	return l.read
}
