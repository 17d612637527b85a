package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func(string, ...any)
		want string
	}{
		{"debug", Debug, "level=DEBUG msg=\"test message arg\"\n"},
		{"info", Info, "level=INFO msg=\"test message arg\"\n"},
		{"warn", Warn, "level=WARN msg=\"test message arg\"\n"},
		{"error", Error, "level=ERROR msg=\"test message arg\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer reset()

			var buf bytes.Buffer
			SetOutput(&buf)
			SetVerbose(true)

			tt.log("test message %s", "arg")

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("debug")
	Info("info")
	Warn("warn")
	assert.Zero(t, buf.Len())

	Error("still printed")
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "still printed")
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Refresh")

	assert.Equal(t, "\n=== Refresh ===\n", buf.String())
}

func TestSlog_UsesConfiguredOutput(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)

	Slog().Info("query", "results", 3)

	assert.Contains(t, buf.String(), "msg=query")
	assert.Contains(t, buf.String(), "results=3")
	assert.NotContains(t, buf.String(), "time=")
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	var buf safeBuffer
	SetOutput(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}

type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}
