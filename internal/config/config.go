package config

import (
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	MinIO    MinIOConfig
	JWT      JWTConfig
}

var (
	configInstance *Config
	once           sync.Once
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	DSN string
}

type RedisConfig struct {
	URI string
}

type KafkaConfig struct {
	Brokers         []string
	EventsTopic     string
	UserEventsTopic string
	GroupID         string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

type JWTConfig struct {
	Secret string
}

func LoadConfig() (*Config, error) {
	once.Do(func() {
		viper.SetDefault("FRIENDSHIP_PORT", "8080")
		viper.SetDefault("FRIENDSHIP_READ_TIMEOUT", 30*time.Second)
		// Zero write timeout: the event-stream responses are long-lived and
		// must not be cut off by the server.
		viper.SetDefault("FRIENDSHIP_WRITE_TIMEOUT", time.Duration(0))
		viper.SetDefault("FRIENDSHIP_IDLE_TIMEOUT", 60*time.Second)
		viper.SetDefault("FRIENDSHIP_JWT_SECRET", "secret")
		viper.SetDefault("POSTGRES_DSN", "host=localhost user=postgres password=password dbname=friendship port=5432 sslmode=disable")
		viper.SetDefault("REDIS_URL", "redis://127.0.0.1:6379/0")
		viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
		viper.SetDefault("KAFKA_EVENTS_TOPIC", "friendship-events")
		viper.SetDefault("KAFKA_USER_EVENTS_TOPIC", "user-events")
		viper.SetDefault("KAFKA_GROUP_ID", "friendship-service")
		viper.SetDefault("MINIO_ENDPOINT", "localhost:9000")
		viper.SetDefault("MINIO_ACCESS_KEY", "minioadmin")
		viper.SetDefault("MINIO_SECRET_KEY", "minioadmin")
		viper.SetDefault("MINIO_BUCKET", "attachments")
		viper.AutomaticEnv()

		configInstance = &Config{
			Server: ServerConfig{
				Host:         viper.GetString("FRIENDSHIP_HOST"),
				Port:         viper.GetString("FRIENDSHIP_PORT"),
				ReadTimeout:  viper.GetDuration("FRIENDSHIP_READ_TIMEOUT"),
				WriteTimeout: viper.GetDuration("FRIENDSHIP_WRITE_TIMEOUT"),
				IdleTimeout:  viper.GetDuration("FRIENDSHIP_IDLE_TIMEOUT"),
			},
			Database: DatabaseConfig{
				DSN: viper.GetString("POSTGRES_DSN"),
			},
			Redis: RedisConfig{
				URI: viper.GetString("REDIS_URL"),
			},
			Kafka: KafkaConfig{
				Brokers:         strings.Split(viper.GetString("KAFKA_BROKERS"), ","),
				EventsTopic:     viper.GetString("KAFKA_EVENTS_TOPIC"),
				UserEventsTopic: viper.GetString("KAFKA_USER_EVENTS_TOPIC"),
				GroupID:         viper.GetString("KAFKA_GROUP_ID"),
			},
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
			},
			JWT: JWTConfig{
				Secret: viper.GetString("FRIENDSHIP_JWT_SECRET"),
			},
		}
	})

	return configInstance, nil
}
