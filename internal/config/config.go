package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Kafka          KafkaConfig          `mapstructure:"kafka"`
	Ollama         OllamaConfig         `mapstructure:"ollama"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Security       SecurityConfig       `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	Hot  RedisInstanceConfig `mapstructure:"hot"`
	Warm RedisInstanceConfig `mapstructure:"warm"`
}

type RedisInstanceConfig struct {
	URL        string        `mapstructure:"url"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topics  struct {
		Recommendations string `mapstructure:"recommendations"`
		Feedback        string `mapstructure:"feedback"`
	} `mapstructure:"topics"`
}

type OllamaConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RecommendationConfig struct {
	MaxRecommendations int               `mapstructure:"max_recommendations"`
	Scoring            ScoringConfig     `mapstructure:"scoring"`
	Hybrid             HybridConfig      `mapstructure:"hybrid"`
	Explanation        ExplanationConfig `mapstructure:"explanation"`
	Caching            CachingConfig     `mapstructure:"caching"`
}

// ScoringConfig holds the additive relevance adjustments. Defaults match the
// documented scoring contract; overriding them is an operator decision.
type ScoringConfig struct {
	BaseProbability float64 `mapstructure:"base_probability"`
	LocationBoost   float64 `mapstructure:"location_boost"`
	SeasonBoost     float64 `mapstructure:"season_boost"`
	HolidayBoost    float64 `mapstructure:"holiday_boost"`
	PriceFitBoost   float64 `mapstructure:"price_fit_boost"`
	RatingBoost     float64 `mapstructure:"rating_boost"`
	SentimentBoost  float64 `mapstructure:"sentiment_boost"`
}

type HybridConfig struct {
	CollaborativeWeight float64 `mapstructure:"collaborative_weight"`
	ContentWeight       float64 `mapstructure:"content_weight"`
	PopularityWeight    float64 `mapstructure:"popularity_weight"`
}

type ExplanationConfig struct {
	TopN    int           `mapstructure:"top_n"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CachingConfig struct {
	InsightsTTL   time.Duration `mapstructure:"insights_ttl"`
	CandidatesTTL time.Duration `mapstructure:"candidates_ttl"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.hot.max_retries", 3)
	viper.SetDefault("redis.hot.pool_size", 10)
	viper.SetDefault("redis.hot.timeout", "5s")
	viper.SetDefault("redis.warm.max_retries", 3)
	viper.SetDefault("redis.warm.pool_size", 5)
	viper.SetDefault("redis.warm.timeout", "10s")

	// Kafka defaults
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topics.recommendations", "recommendation-events")
	viper.SetDefault("kafka.topics.feedback", "feedback-events")

	// Ollama defaults
	viper.SetDefault("ollama.base_url", "http://localhost:11434")
	viper.SetDefault("ollama.model", "llama3")
	viper.SetDefault("ollama.embedding_model", "llama3")
	viper.SetDefault("ollama.timeout", "30s")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "24h")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Recommendation defaults
	viper.SetDefault("recommendation.max_recommendations", 10)
	viper.SetDefault("recommendation.scoring.base_probability", 0.5)
	viper.SetDefault("recommendation.scoring.location_boost", 0.15)
	viper.SetDefault("recommendation.scoring.season_boost", 0.10)
	viper.SetDefault("recommendation.scoring.holiday_boost", 0.10)
	viper.SetDefault("recommendation.scoring.price_fit_boost", 0.10)
	viper.SetDefault("recommendation.scoring.rating_boost", 0.10)
	viper.SetDefault("recommendation.scoring.sentiment_boost", 0.05)
	viper.SetDefault("recommendation.hybrid.collaborative_weight", 0.4)
	viper.SetDefault("recommendation.hybrid.content_weight", 0.4)
	viper.SetDefault("recommendation.hybrid.popularity_weight", 0.2)
	viper.SetDefault("recommendation.explanation.top_n", 5)
	viper.SetDefault("recommendation.explanation.timeout", "10s")
	viper.SetDefault("recommendation.caching.insights_ttl", "1h")
	viper.SetDefault("recommendation.caching.candidates_ttl", "15m")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults
	viper.SetDefault("security.cors.allowed_origins", []string{"*"})
	viper.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"*"})
}
