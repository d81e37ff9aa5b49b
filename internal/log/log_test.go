package log

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_Pattern(t *testing.T) {
	f := &formatter{pattern: "%time [%level] %msg {%field}%n", time: "15:04:05"}
	entry := &logrus.Entry{
		Time:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "payload looks encrypted",
		Data:    logrus.Fields{"record": 3, "entropy": "7.99"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "03:04:05 [WARNING] payload looks encrypted {entropy=7.99,record=3}\n", string(out))
}

func TestFormatter_AppendsFieldsWithoutPlaceholder(t *testing.T) {
	f := &formatter{pattern: DefaultPattern, time: DefaultTime}
	entry := &logrus.Entry{
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "scan finished",
		Data:    logrus.Fields{"records": 12},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.True(t, strings.HasSuffix(line, "scan finished records=12\n"), line)
	assert.Contains(t, line, "[INFO] ")
}

func TestFormatter_Caller(t *testing.T) {
	entry := &logrus.Entry{
		Caller: &runtime.Frame{
			File:     "/src/cipherscope/internal/scan/scanner.go",
			Function: "firestige.xyz/cipherscope/internal/scan.(*Scanner).Scan",
			Line:     42,
		},
		Logger: logrus.New(),
	}
	entry.Logger.SetReportCaller(true)

	assert.Equal(t, "scan/scanner.go:42", getCaller(entry))
	assert.Equal(t, "Scan", getFunc(entry))
}

func TestInitByConfig_FileAppender(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cipherscope.log")
	l, err := initByConfig(&LoggerConfig{
		Level:    "debug",
		Appender: "file",
		File:     FileAppenderOpt{Filename: path, MaxSize: 1},
	})
	require.NoError(t, err)
	assert.True(t, l.IsDebugEnabled())
	assert.False(t, l.IsTraceEnabled())

	l.WithField("file", "a.pcap").WithError(errors.New("short read")).Warn("record truncated")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "record truncated")
	assert.Contains(t, string(data), "file=a.pcap")
	assert.Contains(t, string(data), "error=short read")
}

func TestInitByConfig_Errors(t *testing.T) {
	_, err := initByConfig(&LoggerConfig{Appender: "kafka"})
	assert.Error(t, err)

	_, err = initByConfig(&LoggerConfig{Appender: "file"})
	assert.Error(t, err)
}

func TestInitByConfig_BadLevelFallsBackToInfo(t *testing.T) {
	l, err := initByConfig(&LoggerConfig{Level: "loud"})
	require.NoError(t, err)
	assert.True(t, l.IsInfoEnabled())
	assert.False(t, l.IsDebugEnabled())
}

func TestGetLogger_DefaultBeforeInit(t *testing.T) {
	assert.NotNil(t, GetLogger())
}
