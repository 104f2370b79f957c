package config

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// 🎯 核心配置结构
// =============================================================================

// Config 是 npcflow 的完整配置结构
type Config struct {
	// Log 日志配置
	Log LogConfig `yaml:"log" env:"LOG"`

	// Content 对话内容资产配置
	Content ContentConfig `yaml:"content" env:"CONTENT"`

	// Augment 对白增强配置
	Augment AugmentConfig `yaml:"augment" env:"AUGMENT"`

	// Presenter 表现层配置
	Presenter PresenterConfig `yaml:"presenter" env:"PRESENTER"`
}

// LogConfig 日志配置
type LogConfig struct {
	// 级别: debug, info, warn, error
	Level string `yaml:"level" env:"LEVEL"`
	// 格式: console, json
	Format string `yaml:"format" env:"FORMAT"`
	// 输出路径
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
}

// ContentConfig 对话内容资产配置
type ContentConfig struct {
	// 资产文件路径
	Path string `yaml:"path" env:"PATH"`
	// 是否监听文件变更并热重载
	Watch bool `yaml:"watch" env:"WATCH"`
	// 轮询间隔
	PollInterval time.Duration `yaml:"poll_interval" env:"POLL_INTERVAL"`
}

// AugmentConfig 对白增强配置
type AugmentConfig struct {
	// 是否启用增强
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// OpenAI 兼容端点
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
	// Bearer 凭证
	APIKey string `yaml:"api_key" env:"API_KEY"`
	// 模型名称
	Model string `yaml:"model" env:"MODEL"`
	// 温度参数
	Temperature float32 `yaml:"temperature" env:"TEMPERATURE"`
	// 最大输出 Token 数
	MaxTokens int `yaml:"max_tokens" env:"MAX_TOKENS"`
	// 单次请求超时
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// PresenterConfig 表现层配置
type PresenterConfig struct {
	// NPC 说话者约定（不区分大小写）
	NPCSpeaker string `yaml:"npc_speaker" env:"NPC_SPEAKER"`
	// 生成中的占位文本
	Placeholder string `yaml:"placeholder" env:"PLACEHOLDER"`
	// 单次生成的最长等待
	GenerateTimeout time.Duration `yaml:"generate_timeout" env:"GENERATE_TIMEOUT"`
}

// =============================================================================
// 📋 默认值
// =============================================================================

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stderr"},
		},
		Content: ContentConfig{
			Path:         "conversations.yaml",
			Watch:        false,
			PollInterval: 2 * time.Second,
		},
		Augment: AugmentConfig{
			Enabled:     false,
			BaseURL:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   120,
			Timeout:     10 * time.Second,
		},
		Presenter: PresenterConfig{
			NPCSpeaker:      "NPC",
			Placeholder:     "...",
			GenerateTimeout: 15 * time.Second,
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	var errs []string

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "log level must be one of debug/info/warn/error")
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, "log format must be console or json")
	}

	if c.Content.Watch && c.Content.PollInterval <= 0 {
		errs = append(errs, "poll_interval must be positive when watch is enabled")
	}

	if c.Augment.Temperature < 0 || c.Augment.Temperature > 2 {
		errs = append(errs, "temperature must be between 0 and 2")
	}
	if c.Augment.MaxTokens <= 0 {
		errs = append(errs, "max_tokens must be positive")
	}
	if c.Augment.Timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}

	if c.Presenter.NPCSpeaker == "" {
		errs = append(errs, "npc_speaker must not be empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
