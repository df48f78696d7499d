package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port    string `mapstructure:"port"`
		Env     string `mapstructure:"env"`
		Storage string `mapstructure:"storage"` // postgres | memory
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		GroupID string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Embedding struct {
		Host      string        `mapstructure:"host"`
		APIKey    string        `mapstructure:"api_key"`
		Model     string        `mapstructure:"model"`
		Dimension int           `mapstructure:"dimension"`
		Timeout   time.Duration `mapstructure:"timeout"`

		// Circuit breaker around the provider.
		BreakerFailures    uint32        `mapstructure:"breaker_failures"`
		BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout"`
	} `mapstructure:"embedding"`
	Matching struct {
		EmbeddingStore         string  `mapstructure:"embedding_store"` // postgres | redis | memory
		DefaultTopK            int     `mapstructure:"default_top_k"`
		MaxTopK                int     `mapstructure:"max_top_k"`
		DefaultMinScore        float64 `mapstructure:"default_min_score"`
		MinCompleteness        float64 `mapstructure:"min_completeness"`
		Workers                int     `mapstructure:"workers"`
		LazyCandidateEmbedding bool    `mapstructure:"lazy_candidate_embedding"`
	} `mapstructure:"matching"`
	Jaeger struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"jaeger"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.storage", "postgres")
	v.SetDefault("kafka.group_id", "neplaunch-reembed-group")
	v.SetDefault("auth.token_lifespan", 7*24*time.Hour)
	v.SetDefault("embedding.model", "nomic-embed-text")
	v.SetDefault("embedding.dimension", 768)
	v.SetDefault("embedding.timeout", 10*time.Second)
	v.SetDefault("embedding.breaker_failures", 5)
	v.SetDefault("embedding.breaker_open_timeout", 30*time.Second)
	v.SetDefault("matching.embedding_store", "postgres")
	v.SetDefault("matching.default_top_k", 20)
	v.SetDefault("matching.max_top_k", 100)
	v.SetDefault("matching.default_min_score", 0.0)
	v.SetDefault("matching.min_completeness", 0.0)
	v.SetDefault("matching.workers", 8)
	v.SetDefault("matching.lazy_candidate_embedding", false)
}

// LoadConfig reads .env, then config.yaml from the given paths (current
// directory when none), then environment variables.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	if err = godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	setDefaults(v)
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.storage", "APP_STORAGE")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.group_id", "KAFKA_GROUP_ID")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	v.BindEnv("embedding.host", "EMBEDDING_HOST")
	v.BindEnv("embedding.api_key", "EMBEDDING_API_KEY")
	v.BindEnv("embedding.model", "EMBEDDING_MODEL")
	v.BindEnv("embedding.dimension", "EMBEDDING_DIMENSION")
	v.BindEnv("embedding.timeout", "EMBEDDING_TIMEOUT")
	v.BindEnv("embedding.breaker_failures", "EMBEDDING_BREAKER_FAILURES")
	v.BindEnv("embedding.breaker_open_timeout", "EMBEDDING_BREAKER_OPEN_TIMEOUT")

	v.BindEnv("matching.embedding_store", "MATCHING_EMBEDDING_STORE")
	v.BindEnv("matching.default_top_k", "MATCHING_DEFAULT_TOP_K")
	v.BindEnv("matching.max_top_k", "MATCHING_MAX_TOP_K")
	v.BindEnv("matching.default_min_score", "MATCHING_DEFAULT_MIN_SCORE")
	v.BindEnv("matching.min_completeness", "MATCHING_MIN_COMPLETENESS")
	v.BindEnv("matching.workers", "MATCHING_WORKERS")
	v.BindEnv("matching.lazy_candidate_embedding", "MATCHING_LAZY_CANDIDATE_EMBEDDING")

	v.BindEnv("jaeger.otlp_endpoint", "JAEGER_OTLP_ENDPOINT")

	err = v.Unmarshal(&cfg)
	return
}
