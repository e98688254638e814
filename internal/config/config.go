package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

const (
	DefaultUsernameMaxLength = 150
	DefaultEmailMaxLength    = 254
	DefaultCodeLength        = 6
	DefaultCodeAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	DefaultCodeSentinel      = "default"
	DefaultTokenTTLMinutes   = 1440
)

type AuthConfig struct {
	UsernameMaxLength int    `json:"usernameMaxLength"`
	EmailMaxLength    int    `json:"emailMaxLength"`
	CodeLength        int    `json:"codeLength"`
	CodeAlphabet      string `json:"codeAlphabet"`
	// DefaultCode is the sentinel stored when no live confirmation code
	// is outstanding.
	DefaultCode     string `json:"defaultCode"`
	TokenTTLMinutes int    `json:"tokenTTLMinutes"`
}

type MailConfig struct {
	SMTPAddr string `json:"smtpAddr"`
	From     string `json:"from"`
}

type Config struct {
	Server struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		JWTSecret string `json:"jwtSecret"`
	} `json:"server"`
	Postgres struct {
		DSN string `json:"dsn"`
	} `json:"postgres"`
	Redis struct {
		Addr     string `json:"addr"`
		Password string `json:"password"`
		DB       int    `json:"db"`
	} `json:"redis"`
	Auth AuthConfig `json:"auth"`
	Mail MailConfig `json:"mail"`
}

var (
	once   sync.Once
	cfg    *Config
	cfgErr error
)

// LoadConfig reads config.json from disk (singleton)
func LoadConfig(path string) (*Config, error) {
	once.Do(func() {
		raw, err := os.ReadFile(path)
		if err != nil {
			cfgErr = fmt.Errorf("failed to read config file: %w", err)
			return
		}
		var c Config
		if err := json.Unmarshal(raw, &c); err != nil {
			cfgErr = fmt.Errorf("invalid config format: %w", err)
			return
		}
		// Minimal validation
		if c.Server.JWTSecret == "" {
			cfgErr = errors.New("jwtSecret must be set in config")
			return
		}
		c.ApplyDefaults()
		if c.Auth.CodeLength > len(c.Auth.CodeAlphabet) {
			cfgErr = errors.New("codeLength must not exceed the size of codeAlphabet")
			return
		}
		cfg = &c
	})
	return cfg, cfgErr
}

// ApplyDefaults fills in auth values not present in the config file.
func (c *Config) ApplyDefaults() {
	if c.Auth.UsernameMaxLength == 0 {
		c.Auth.UsernameMaxLength = DefaultUsernameMaxLength
	}
	if c.Auth.EmailMaxLength == 0 {
		c.Auth.EmailMaxLength = DefaultEmailMaxLength
	}
	if c.Auth.CodeLength == 0 {
		c.Auth.CodeLength = DefaultCodeLength
	}
	if c.Auth.CodeAlphabet == "" {
		c.Auth.CodeAlphabet = DefaultCodeAlphabet
	}
	if c.Auth.DefaultCode == "" {
		c.Auth.DefaultCode = DefaultCodeSentinel
	}
	if c.Auth.TokenTTLMinutes == 0 {
		c.Auth.TokenTTLMinutes = DefaultTokenTTLMinutes
	}
}

// GetConfig returns the loaded config (must call LoadConfig first)
func GetConfig() *Config {
	return cfg
}

// ResetConfigForTest resets the singleton state (for testing only)
func ResetConfigForTest() {
	once = sync.Once{}
	cfg = nil
	cfgErr = nil
}
