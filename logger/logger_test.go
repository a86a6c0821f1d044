package logger

import (
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogs(t *testing.T) {
	t.Setenv("MODPORTAL_LOG_FOLDER", t.TempDir())
	InitLogger(logging.ERROR)
	logBuffer = nil

	for i := 0; i < 5; i++ {
		Infof("entry %d", i)
	}
	Debug("noise")

	// The count is a hard cap.
	logs := GetLogs(3, "INFO")
	require.Len(t, logs, 3)
	assert.Contains(t, logs[0], "entry 4", "newest entries come first")

	// A generous count returns everything at or above the level; the
	// debug entry is filtered out.
	logs = GetLogs(100, "INFO")
	assert.Len(t, logs, 5)

	logs = GetLogs(100, "DEBUG")
	assert.Len(t, logs, 6)
}
