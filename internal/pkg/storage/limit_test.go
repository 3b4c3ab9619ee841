package storage

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		max     int64
		wantErr error
		want    string
	}{
		{name: "under the limit", input: "hello", max: 8, want: "hello"},
		{name: "exactly the limit", input: "hello", max: 5, want: "hello"},
		{name: "over the limit", input: "hello!", max: 5, wantErr: ErrTooLarge},
		{name: "empty", input: "", max: 5, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lr := LimitReader(strings.NewReader(tt.input), tt.max)
			got, err := io.ReadAll(lr)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
			assert.Equal(t, int64(len(tt.want)), lr.Size())
		})
	}
}

func TestLimitReader_OneByteReads(t *testing.T) {
	lr := LimitReader(iotest.OneByteReader(bytes.NewReader(make([]byte, 10))), 9)

	_, err := io.ReadAll(lr)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = lr.Read(make([]byte, 4))
	assert.ErrorIs(t, err, ErrTooLarge, "stays failed")
}
