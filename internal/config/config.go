package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	MongoDB  MongoDBConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Consul   ConsulConfig
	Auth     AuthConfig
	Invite   InviteConfig
	MinIO    MinIOConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	ServiceName    string
	ServiceAddress string
	ServiceID      string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	Environment    string
	CORSOrigins    []string
}

type LogConfig struct {
	Dir   string
	Level string
}

type StoreConfig struct {
	// Driver is "mongo" or "memory".
	Driver string
}

type MongoDBConfig struct {
	URI      string
	Database string
	PoolSize uint64
	Timeout  time.Duration
}

type RedisConfig struct {
	Address          string
	Password         string
	DB               int
	DocumentCacheTTL time.Duration
}

type RabbitMQConfig struct {
	URI               string
	Exchange          string
	NotificationQueue string
}

type ConsulConfig struct {
	Address string
	Enabled bool
}

type AuthConfig struct {
	JWTSecret           string
	TrustGatewayHeaders bool
	AdminEmails         []string
}

type InviteConfig struct {
	TTL           time.Duration
	PublicBaseURL string
}

type MinIOConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	UseSSL         bool
	Region         string
	DocumentBucket string
}

// Load reads the configuration from the environment, after loading envFile
// when it exists.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "9300"),
			Host:           getEnv("HOST", "0.0.0.0"),
			ServiceName:    getEnv("DATAROOM_SERVICE_NAME", "dataroom-service"),
			ServiceAddress: getEnv("DATAROOM_SERVICE_ADDRESS", "dataroom-service"),
			ServiceID:      getEnv("DATAROOM_SERVICE_NAME", "dataroom-service") + "-" + getEnv("HOSTNAME", "dataroom"),
			ReadTimeout:    getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			Environment:    getEnv("ENVIRONMENT", "development"),
			CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Dir:   getEnv("LOG_DIR", ""),
			Level: getEnv("LOG_LEVEL", ""),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("DATAROOM_MONGO_DB", "dataroom_service"),
			PoolSize: getEnvAsUint64("MONGODB_POOL_SIZE", 100),
			Timeout:  getEnvAsDuration("MONGODB_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Address:          getEnv("REDIS_ADDR", ""),
			Password:         getEnv("REDIS_PASSWORD", ""),
			DB:               getEnvAsInt("REDIS_DB", 0),
			DocumentCacheTTL: getEnvAsDuration("DOCUMENT_CACHE_TTL", 5*time.Minute),
		},
		RabbitMQ: RabbitMQConfig{
			URI:               getEnv("RABBITMQ_URI", ""),
			Exchange:          getEnv("RABBITMQ_EXCHANGE", "dataroom.events"),
			NotificationQueue: getEnv("RABBITMQ_NOTIFICATION_QUEUE", "dataroom.notifications"),
		},
		Consul: ConsulConfig{
			Address: getEnv("CONSUL_ADDR", "consul-server:8500"),
			Enabled: getEnvAsBool("CONSUL_ENABLED", false),
		},
		Auth: AuthConfig{
			JWTSecret:           getEnv("JWT_SECRET", ""),
			TrustGatewayHeaders: getEnvAsBool("TRUST_GATEWAY_HEADERS", false),
			AdminEmails:         getEnvAsList("ADMIN_EMAILS", nil),
		},
		Invite: InviteConfig{
			TTL:           getEnvAsDuration("INVITE_TTL", 7*24*time.Hour),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		},
		MinIO: MinIOConfig{
			Endpoint:       getEnv("MINIO_ENDPOINT", ""),
			AccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey:      getEnv("MINIO_SECRET_KEY", ""),
			UseSSL:         getEnvAsBool("MINIO_USE_SSL", false),
			Region:         getEnv("MINIO_REGION", "us-east-1"),
			DocumentBucket: getEnv("MINIO_DOCUMENT_BUCKET", "dataroom-documents"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	switch c.Store.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("STORE_DRIVER must be mongo or memory, got %q", c.Store.Driver)
	}
	if c.Invite.TTL <= 0 {
		return fmt.Errorf("INVITE_TTL must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return intVal
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value, exists := os.LookupEnv(key); exists {
		uintVal, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return defaultValue
		}
		return uintVal
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return boolVal
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("90s", "168h") or a plain number of seconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
