package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Ecommerce  EcommerceConfig
	Klaviyo    KlaviyoConfig
	Webhook    WebhookConfig
	Similarity SimilarityConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	Kafka      KafkaConfig
	Observ     ObservabilityConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type EcommerceConfig struct {
	Platform      string
	URL           string
	APIKey        string
	CategoryLimit int
	Timeout       time.Duration
}

type KlaviyoConfig struct {
	APIKey   string
	Revision string
	Timeout  time.Duration
}

type WebhookConfig struct {
	Secret string
}

type SimilarityConfig struct {
	Limit              int
	K1                 float64
	B                  float64
	NameWeight         float64
	PriceWeight        float64
	ManufacturerWeight float64
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	CategoryTTL time.Duration
}

type DatabaseConfig struct {
	URL string
}

type KafkaConfig struct {
	Brokers         []string
	TopicEnrichment string
	TopicCatalog    string
	ConsumerGroup   string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Ecommerce: EcommerceConfig{
			Platform:      getEnv("ECOMMERCE_PLATFORM", "prestashop"),
			URL:           getEnv("ECOMMERCE_URL", ""),
			APIKey:        getEnv("ECOMMERCE_API_KEY", ""),
			CategoryLimit: getEnvInt("CATEGORY_FETCH_LIMIT", 100),
			Timeout:       getEnvSeconds("API_TIMEOUT", 10),
		},
		Klaviyo: KlaviyoConfig{
			APIKey:   getEnv("KLAVIYO_API_KEY", ""),
			Revision: getEnv("KLAVIYO_API_REVISION", "2024-10-15"),
			Timeout:  getEnvSeconds("API_TIMEOUT", 10),
		},
		Webhook: WebhookConfig{
			Secret: getEnv("WEBHOOK_SECRET", ""),
		},
		Similarity: SimilarityConfig{
			Limit:              getEnvInt("SIMILAR_PRODUCTS_LIMIT", 6),
			K1:                 getEnvFloat("BM25_K1", 1.5),
			B:                  getEnvFloat("BM25_B", 0.75),
			NameWeight:         getEnvFloat("WEIGHT_NAME", 0.6),
			PriceWeight:        getEnvFloat("WEIGHT_PRICE", 0.3),
			ManufacturerWeight: getEnvFloat("WEIGHT_MANUFACTURER", 0.1),
		},
		Redis: RedisConfig{
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvInt("REDIS_DB", 0),
			CategoryTTL: getEnvSeconds("CATEGORY_CACHE_TTL_SECONDS", 120),
		},
		Database: DatabaseConfig{
			// Empty disables the audit log; the service runs without it.
			URL: getEnv("DATABASE_URL", ""),
		},
		Kafka: KafkaConfig{
			Brokers:         strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicEnrichment: getEnv("KAFKA_TOPIC_ENRICHMENT_EVENTS", "enrichment-events"),
			TopicCatalog:    getEnv("KAFKA_TOPIC_CATALOG_EVENTS", "catalog-events"),
			ConsumerGroup:   getEnv("KAFKA_CONSUMER_GROUP", "similar-products-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, platform=%s",
		cfg.Server.Env, cfg.Server.Port, cfg.Ecommerce.Platform)
	return cfg
}

// Validate checks the variables the service cannot run without.
func (c *Config) Validate() error {
	var missing []string
	if c.Klaviyo.APIKey == "" {
		missing = append(missing, "KLAVIYO_API_KEY")
	}
	if c.Ecommerce.URL == "" {
		missing = append(missing, "ECOMMERCE_URL")
	}
	if c.Ecommerce.APIKey == "" {
		missing = append(missing, "ECOMMERCE_API_KEY")
	}
	if c.Webhook.Secret == "" {
		missing = append(missing, "WEBHOOK_SECRET")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvSeconds(key string, defaultVal int) time.Duration {
	return time.Duration(getEnvInt(key, defaultVal)) * time.Second
}
