package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	SQLite    SQLiteConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Analysis  AnalysisConfig
	RateLimit RateLimitConfig
	Session   SessionConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path          string
	BusyTimeoutMs int
}

type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	AnswerTTLSec int
}

type LLMConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	TimeoutSec  int
}

// AnalysisConfig holds the defaults for topic discovery runs.
type AnalysisConfig struct {
	NumTopics        int
	Seed             int64
	TopTerms         int
	MaxIter          int
	MaxDocUpdateIter int
	MeanChangeTol    float64
	Tokenizer        string
	Schedule         string
}

type RateLimitConfig struct {
	RequestsPerMinute int
}

type SessionConfig struct {
	HistoryLimit int
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/patternlog")

	viper.SetEnvPrefix("PATTERNLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate rejects analysis settings the topic engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Analysis.NumTopics <= 0 {
		errs = append(errs, fmt.Errorf("analysis.numTopics must be positive, got %d", c.Analysis.NumTopics))
	}
	if c.Analysis.TopTerms <= 0 {
		errs = append(errs, fmt.Errorf("analysis.topTerms must be positive, got %d", c.Analysis.TopTerms))
	}
	if c.Analysis.MaxIter <= 0 {
		errs = append(errs, fmt.Errorf("analysis.maxIter must be positive, got %d", c.Analysis.MaxIter))
	}
	switch c.Analysis.Tokenizer {
	case "word", "prose":
	default:
		errs = append(errs, fmt.Errorf("analysis.tokenizer must be word or prose, got %q", c.Analysis.Tokenizer))
	}
	if c.SQLite.Path == "" {
		errs = append(errs, errors.New("sqlite.path is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 60)
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("sqlite.path", "./data/interactions.db")
	viper.SetDefault("sqlite.busyTimeoutMs", 5000)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.answerTTLSec", 86400)

	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.maxTokens", 150)
	viper.SetDefault("llm.timeoutSec", 60)

	viper.SetDefault("analysis.numTopics", 5)
	viper.SetDefault("analysis.seed", 42)
	viper.SetDefault("analysis.topTerms", 10)
	viper.SetDefault("analysis.maxIter", 10)
	viper.SetDefault("analysis.maxDocUpdateIter", 100)
	viper.SetDefault("analysis.meanChangeTol", 0.001)
	viper.SetDefault("analysis.tokenizer", "word")
	viper.SetDefault("analysis.schedule", "")

	viper.SetDefault("rateLimit.requestsPerMinute", 60)

	viper.SetDefault("session.historyLimit", 100)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
