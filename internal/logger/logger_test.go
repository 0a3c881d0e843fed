package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLogger(level Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewWithWriter(level, &buf)
	l.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return l, &buf
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   DEBUG,
		" INFO ":  INFO,
		"warn":    WARN,
		"WARNING": WARN,
		"error":   ERROR,
		"bogus":   INFO,
		"":        INFO,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestLogger_FiltersBelowLevel(t *testing.T) {
	l, buf := newTestLogger(WARN)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, "[2026-01-02 03:04:05] WARN: shown key=value\n", out)
}

func TestLogger_WithPrependsFields(t *testing.T) {
	l, buf := newTestLogger(DEBUG)

	child := l.With("component", "wizard")
	child.Info("state transition", "user_id", 42)

	assert.Equal(t, "[2026-01-02 03:04:05] INFO: state transition component=wizard user_id=42\n", buf.String())
}

func TestLogger_SetLevelAffectsChildren(t *testing.T) {
	l, buf := newTestLogger(DEBUG)
	child := l.With("component", "store")

	l.SetLevel(ERROR)
	child.Warn("dropped")
	child.Error("kept")

	assert.False(t, strings.Contains(buf.String(), "dropped"))
	assert.True(t, strings.Contains(buf.String(), "kept component=store"))
}

func TestLogger_OddFieldCountDropsTrailingKey(t *testing.T) {
	l, buf := newTestLogger(DEBUG)

	l.Error("boom", "error", "x", "orphan")

	assert.Equal(t, "[2026-01-02 03:04:05] ERROR: boom error=x\n", buf.String())
}
