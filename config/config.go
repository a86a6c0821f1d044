// Package config exposes the portal configuration. Values come from
// environment variables (MODPORTAL_*), optionally overridden by a TOML
// file whose path is given in MODPORTAL_CONFIG.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// fileConfig mirrors the optional TOML config file.
type fileConfig struct {
	Listen        string `toml:"listen"`
	Port          int    `toml:"port"`
	BasePath      string `toml:"basePath"`
	DBFolder      string `toml:"dbFolder"`
	LogFolder     string `toml:"logFolder"`
	SessionSecret string `toml:"sessionSecret"`
	SessionMaxAge int    `toml:"sessionMaxAge"`
	RedisAddr     string `toml:"redisAddr"`
}

var (
	fileCfg  fileConfig
	fileOnce sync.Once
)

// fromFile loads the TOML config file once. A missing file is not an
// error; a malformed one is reported on stderr and ignored.
func fromFile() *fileConfig {
	fileOnce.Do(func() {
		path := os.Getenv("MODPORTAL_CONFIG")
		if path == "" {
			path = "modportal.toml"
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return
		}
		if err := toml.Unmarshal(data, &fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "invalid config file %s: %v\n", path, err)
			fileCfg = fileConfig{}
		}
	})
	return &fileCfg
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("MODPORTAL_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("MODPORTAL_DEBUG") == "true"
}

func GetListen() string {
	if listen := os.Getenv("MODPORTAL_LISTEN"); listen != "" {
		return listen
	}
	return fromFile().Listen
}

func GetPort() int {
	if port := os.Getenv("MODPORTAL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	if p := fromFile().Port; p != 0 {
		return p
	}
	return 8080
}

func GetBasePath() string {
	basePath := os.Getenv("MODPORTAL_BASE_PATH")
	if basePath == "" {
		basePath = fromFile().BasePath
	}
	if basePath == "" {
		return "/"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return basePath
}

func GetDBFolderPath() string {
	if dbFolderPath := os.Getenv("MODPORTAL_DB_FOLDER"); dbFolderPath != "" {
		return dbFolderPath
	}
	if folder := fromFile().DBFolder; folder != "" {
		return folder
	}
	if IsDebug() {
		return "db"
	}
	return "/etc/modportal"
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	if logFolderPath := os.Getenv("MODPORTAL_LOG_FOLDER"); logFolderPath != "" {
		return logFolderPath
	}
	if folder := fromFile().LogFolder; folder != "" {
		return folder
	}
	return "/var/log"
}

// GetSessionSecret returns the cookie signing secret. Empty means the
// caller should generate an ephemeral one.
func GetSessionSecret() string {
	if secret := os.Getenv("MODPORTAL_SESSION_SECRET"); secret != "" {
		return secret
	}
	return fromFile().SessionSecret
}

// GetSessionMaxAge returns the session lifetime in seconds. Sessions
// last 24 hours unless configured otherwise.
func GetSessionMaxAge() int {
	if maxAge := os.Getenv("MODPORTAL_SESSION_MAX_AGE"); maxAge != "" {
		if v, err := strconv.Atoi(maxAge); err == nil && v > 0 {
			return v
		}
	}
	if v := fromFile().SessionMaxAge; v > 0 {
		return v
	}
	return 24 * 60 * 60
}

// GetRedisAddr returns the redis address for the session store. Empty
// means sessions are kept in the portal database instead.
func GetRedisAddr() string {
	if addr := os.Getenv("MODPORTAL_REDIS_ADDR"); addr != "" {
		return addr
	}
	return fromFile().RedisAddr
}

// GetTOTPSecret returns the TOTP secret required for admin logins.
// Empty disables the second factor.
func GetTOTPSecret() string {
	return os.Getenv("MODPORTAL_TOTP_SECRET")
}
