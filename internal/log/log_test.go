package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure(t *testing.T) {
	l := logrus.New()

	Configure(l, "json", "debug")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, l.Formatter)

	Configure(l, "text", "not-a-level")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New("json", "info")
	l.Out = &buf

	l.WithField("repo", "octocat/hello-world").Info("README fetched")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "README fetched", entry["msg"])
	assert.Equal(t, "octocat/hello-world", entry["repo"])
}
