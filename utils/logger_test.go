package utils

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// These tests swap the global logger output, so they do not run in parallel.

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetOutput(os.Stdout)
		require.NoError(t, SetFormat("json"))
		require.NoError(t, SetLevel("info"))
	})
	return &buf
}

func TestLogFields(t *testing.T) {
	buf := captureLogs(t)

	Warn("bid rejected", map[string]any{"auction_id": "a1", "amount": 12.5})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "bid rejected", line["msg"])
	require.Equal(t, "warning", line["level"])
	require.Equal(t, ServiceName, line["service"])
	require.Equal(t, "a1", line["auction_id"])
	require.Equal(t, 12.5, line["amount"])
}

func TestSetLevel(t *testing.T) {
	buf := captureLogs(t)

	Debug("hidden", nil)
	require.Zero(t, buf.Len())

	require.NoError(t, SetLevel("debug"))
	Debug("shown", nil)
	require.Contains(t, buf.String(), "shown")

	require.Error(t, SetLevel("chatty"))
}

func TestSetFormat(t *testing.T) {
	buf := captureLogs(t)

	require.NoError(t, SetFormat("text"))
	Info("server started", map[string]any{"address": ":3000"})
	out := buf.String()
	require.False(t, strings.HasPrefix(out, "{"))
	require.Contains(t, out, `msg="server started"`)
	require.Contains(t, out, "address=\":3000\"")

	require.Error(t, SetFormat("xml"))
}
