package logger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestLogBuffer_GetLogEntries(t *testing.T) {
	buf := &TestLogBuffer{}
	_, _ = buf.Write([]byte(`{"msg":"one"}` + "\n\n" + `{"msg":"two"}` + "\n"))

	entries, err := buf.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "two", entries[1]["msg"])

	buf.Reset()
	_, _ = buf.Write([]byte("not json\n"))
	_, err = buf.GetLogEntries()
	assert.Error(t, err)
}

func TestSetupTestLogger(t *testing.T) {
	logBuf, l := SetupTestLogger(t)
	slog.Info("via default", slog.Int("units", 3))

	assert.Same(t, l, slog.Default())
	AssertLogContains(t, logBuf, "via default")
	AssertLogField(t, logBuf, "units", float64(3))
}
