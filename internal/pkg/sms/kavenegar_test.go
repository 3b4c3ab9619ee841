package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKavenegar_Send(t *testing.T) {
	tests := []struct {
		name       string
		handler    func(calls *atomic.Int32) http.HandlerFunc
		wantOK     bool
		wantCalls  int32
		maxRetries uint64
	}{
		{
			name: "delivered",
			handler: func(calls *atomic.Int32) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					calls.Add(1)
					assert.Equal(t, "/v1/key/sms/send.json", r.URL.Path)
					assert.NoError(t, r.ParseForm())
					assert.Equal(t, "+989123456789", r.PostForm.Get("receptor"))
					assert.Equal(t, "your code is 123456", r.PostForm.Get("message"))
					assert.Equal(t, "10004346", r.PostForm.Get("sender"))
					w.Write([]byte(`{"return":{"status":200,"message":"ok"},"entries":[]}`))
				}
			},
			wantOK:    true,
			wantCalls: 1,
		},
		{
			name: "gateway business error is not retried",
			handler: func(calls *atomic.Int32) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					calls.Add(1)
					w.WriteHeader(http.StatusBadRequest)
					w.Write([]byte(`{"return":{"status":411,"message":"invalid receptor"}}`))
				}
			},
			wantOK:     false,
			wantCalls:  1,
			maxRetries: 2,
		},
		{
			name: "server error is retried then fails",
			handler: func(calls *atomic.Int32) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					calls.Add(1)
					w.WriteHeader(http.StatusBadGateway)
				}
			},
			wantOK:     false,
			wantCalls:  3,
			maxRetries: 2,
		},
		{
			name: "server error recovers on retry",
			handler: func(calls *atomic.Int32) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					if calls.Add(1) == 1 {
						w.WriteHeader(http.StatusServiceUnavailable)
						return
					}
					w.Write([]byte(`{"return":{"status":200,"message":"ok"}}`))
				}
			},
			wantOK:     true,
			wantCalls:  2,
			maxRetries: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(tt.handler(&calls))
			defer srv.Close()

			sender, err := NewKavenegar(Config{
				BaseURL:    srv.URL,
				APIKey:     "key",
				SenderLine: "10004346",
				Region:     "IR",
				MaxRetries: tt.maxRetries,
			})
			require.NoError(t, err)

			ok := sender.Send(context.Background(), "09123456789", "your code is 123456")
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantCalls, calls.Load())
		})
	}
}

func TestKavenegar_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	sender, err := NewKavenegar(Config{BaseURL: srv.URL, APIKey: "key"})
	require.NoError(t, err)

	assert.False(t, sender.Send(context.Background(), "09123456789", "hi"))
}

func TestNew(t *testing.T) {
	s, err := New(Config{Driver: DriverLog})
	require.NoError(t, err)
	assert.True(t, s.Send(context.Background(), "09123456789", "hello"))

	_, err = New(Config{Driver: DriverKavenegar})
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = New(Config{Driver: "carrier-pigeon"})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}

func TestFormatE164(t *testing.T) {
	assert.Equal(t, "+989123456789", FormatE164("09123456789", "IR"))
	assert.Equal(t, "09123456789", FormatE164(" 09123456789 ", ""))
	assert.Equal(t, "not-a-number", FormatE164("not-a-number", "IR"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "0912****789", Mask("09123456789"))
	assert.Equal(t, "***", Mask("123"))
}
