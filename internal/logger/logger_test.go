package logger

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestLogger(cfg *LogConfig, out *syncBuffer) (*logrus.Logger, *AsyncHook) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetOutput(bytes.NewBuffer(nil))
	l.AddHook(NewFilterHook(cfg))
	hook := NewAsyncHookWithWriters([]io.Writer{out}, 10)
	l.AddHook(hook)
	return l, hook
}

func TestAsyncHookWritesEntries(t *testing.T) {
	out := &syncBuffer{}
	l, hook := newTestLogger(&LogConfig{}, out)

	l.WithField("module", "botconfig").Info("config updated")
	require.NoError(t, hook.Close())

	assert.Contains(t, out.String(), "config updated")
	assert.Contains(t, out.String(), "module=botconfig")
}

func TestFilterHook(t *testing.T) {
	t.Run("lọc theo module", func(t *testing.T) {
		out := &syncBuffer{}
		l, hook := newTestLogger(&LogConfig{FilterModules: "auth"}, out)

		l.WithField("module", "botconfig").Info("hidden")
		l.WithField("module", "auth").Info("shown")
		l.Info("no module")
		require.NoError(t, hook.Close())

		assert.NotContains(t, out.String(), "hidden")
		assert.Contains(t, out.String(), "shown")
		assert.Contains(t, out.String(), "no module")
	})

	t.Run("lọc theo log type", func(t *testing.T) {
		out := &syncBuffer{}
		l, hook := newTestLogger(&LogConfig{FilterLogTypes: "error"}, out)

		l.Info("info line")
		l.Error("error line")
		require.NoError(t, hook.Close())

		assert.NotContains(t, out.String(), "info line")
		assert.Contains(t, out.String(), "error line")
	})
}

func TestAsyncHookAfterClose(t *testing.T) {
	out := &syncBuffer{}
	l, hook := newTestLogger(&LogConfig{}, out)
	require.NoError(t, hook.Close())

	l.Warn("after close")
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "after close")
	}, time.Second, 10*time.Millisecond)
}

func TestParseFilter(t *testing.T) {
	assert.Nil(t, parseFilter(""))
	assert.Nil(t, parseFilter("*"))
	assert.Equal(t, map[string]bool{"auth": true, "botconfig": true}, parseFilter("Auth, botconfig,"))
}
