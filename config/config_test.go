package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogLevel(t *testing.T) {
	t.Setenv("MODPORTAL_DEBUG", "")
	t.Setenv("MODPORTAL_LOG_LEVEL", "")
	assert.Equal(t, Info, GetLogLevel())

	// Every declared level round-trips through the environment.
	for _, level := range []LogLevel{Debug, Info, Notice, Warn, Error} {
		t.Setenv("MODPORTAL_LOG_LEVEL", string(level))
		assert.Equal(t, level, GetLogLevel())
	}

	t.Setenv("MODPORTAL_DEBUG", "true")
	t.Setenv("MODPORTAL_LOG_LEVEL", "error")
	assert.Equal(t, Debug, GetLogLevel(), "debug mode wins over the configured level")
}

func TestGetSessionMaxAge(t *testing.T) {
	t.Setenv("MODPORTAL_SESSION_MAX_AGE", "")
	assert.Equal(t, 24*60*60, GetSessionMaxAge())

	t.Setenv("MODPORTAL_SESSION_MAX_AGE", "3600")
	assert.Equal(t, 3600, GetSessionMaxAge())

	t.Setenv("MODPORTAL_SESSION_MAX_AGE", "-1")
	assert.Equal(t, 24*60*60, GetSessionMaxAge())
}

func TestGetBasePath(t *testing.T) {
	t.Setenv("MODPORTAL_BASE_PATH", "")
	assert.Equal(t, "/", GetBasePath())

	t.Setenv("MODPORTAL_BASE_PATH", "panel")
	assert.Equal(t, "/panel/", GetBasePath())

	t.Setenv("MODPORTAL_BASE_PATH", "/panel/")
	assert.Equal(t, "/panel/", GetBasePath())
}
