// Package config は設定ファイル（YAML）の読み込みを扱う
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// デフォルト値
const (
	DefaultLogLevel      = "info"
	DefaultMaxIterations = 1000000
	DefaultMaxDepth      = 1000
	MaxDepthLimit        = 50000 // これを超えるとGo自体のスタックが尽きる
	DefaultEncoding      = "utf-8"
	DefaultCacheSize     = 64
	DefaultHistoryFile   = ".bangla_history" // ホームディレクトリからの相対パス
)

// Config は設定ファイルの内容を保持する
type Config struct {
	LogLevel      string `yaml:"log_level"`
	Timeout       int    `yaml:"timeout"` // 秒（0は無制限）
	MaxIterations int    `yaml:"max_iterations"`
	MaxDepth      int    `yaml:"max_depth"`
	Encoding      string `yaml:"encoding"`
	HistoryFile   string `yaml:"history_file"`
	CacheSize     int    `yaml:"cache_size"`
	NoColor       bool   `yaml:"no_color"`
}

// Default デフォルト設定を返す
func Default() *Config {
	return &Config{
		LogLevel:      DefaultLogLevel,
		MaxIterations: DefaultMaxIterations,
		MaxDepth:      DefaultMaxDepth,
		Encoding:      DefaultEncoding,
		HistoryFile:   DefaultHistoryFile,
		CacheSize:     DefaultCacheSize,
	}
}

// Load 設定ファイルを読み込む
// ファイルに書かれていない項目はデフォルト値のまま
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse YAMLを解析してデフォルト値に上書きする
// 未知のキーはエラーにする（タイプミスの検出のため）
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 設定値を検証する
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got %d", c.Timeout)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must be non-negative, got %d", c.MaxIterations)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.MaxDepth > MaxDepthLimit {
		return fmt.Errorf("max_depth must be at most %d, got %d", MaxDepthLimit, c.MaxDepth)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must be non-negative, got %d", c.CacheSize)
	}
	return nil
}

// Marshal 設定をYAMLに変換する
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
