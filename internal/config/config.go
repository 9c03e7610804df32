package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 结构同时带 mapstructure 与 yaml 标签：主应用经 viper 加载，
// scripts/ 下的工具直接用 yaml 解析同一份文件。
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	AI        AIConfig        `mapstructure:"ai" yaml:"ai"`
	Analysis  AnalysisConfig  `mapstructure:"analysis" yaml:"analysis"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors" yaml:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" yaml:"port"`
	Mode string `mapstructure:"mode" yaml:"mode"`
}

// AIConfig 外部分类服务（OpenAI 兼容接口）。BaseURL 或 APIKey 为空时
// 视为未配置，所有分析走确定性回退路径。
type AIConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	Model   string `mapstructure:"model" yaml:"model"`
}

type AnalysisConfig struct {
	MaxUploadMB int `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled" yaml:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint" yaml:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests" yaml:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes" yaml:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("FAIR_EXAM")
	viper.AutomaticEnv()

	// Server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.mode", "SERVER_MODE")

	// AI
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")

	// Analysis
	viper.BindEnv("analysis.max_upload_mb", "MAX_UPLOAD_MB")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}
	if cfg.Analysis.MaxUploadMB <= 0 {
		cfg.Analysis.MaxUploadMB = 10
	}
	if cfg.RateLimit.MaxRequests <= 0 {
		cfg.RateLimit.MaxRequests = 120
	}
	if cfg.RateLimit.WindowMinutes <= 0 {
		cfg.RateLimit.WindowMinutes = 1
	}

	// API Key 配置了却没有 BaseURL，多半是部署配置错误，尽早失败
	if cfg.AI.APIKey != "" && cfg.AI.BaseURL == "" {
		return nil, fmt.Errorf("ai.api_key is set but ai.base_url is empty")
	}

	return &cfg, nil
}
