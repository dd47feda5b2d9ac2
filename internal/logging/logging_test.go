package logging

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWithWriterFormat(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewWithWriter("info", &buf, false)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Warn("Attempt 1/3 failed, retrying in 1.0s", zap.String("op", "send"))
	require.NoError(t, log.Sync())

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\tWARN\tAttempt 1/3 failed`), out)
	assert.Contains(t, out, `"op": "send"`)
}

func TestNewWithWriterRejectsLevel(t *testing.T) {
	_, err := NewWithWriter("loud", &bytes.Buffer{}, false)
	assert.Error(t, err)
}

func TestBanner(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	Banner(&buf, "WALLET ACTIVITY")
	Success(&buf, "sent %s", "0.00095")
	Failure(&buf, "swap %d failed", 2)
	assert.Equal(t,
		"=======================\n    WALLET ACTIVITY\n=======================\n✓ sent 0.00095\n✗ swap 2 failed\n",
		buf.String())
}
