package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskHandler_MasksConfiguredKeys(t *testing.T) {
	var buf bytes.Buffer
	base := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(&maskHandler{handler: base, maskKeys: buildMaskKeys([]string{"code", " Refresh_Token "})})

	logger.Info("otp issued", "phone_number", "09123456789", "code", "123456",
		"body", `{"refresh_token":"abc","other":"x"}`)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "***", out["code"])
	assert.Equal(t, "09123456789", out["phone_number"])
	assert.Contains(t, out["body"], `"refresh_token":"***"`)
}

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "[invalid_chain_id]", GetCorrelationID(ctx))

	ctx = SetCorrelationID(ctx, "cid-1")
	assert.Equal(t, "cid-1", GetCorrelationID(ctx))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}
