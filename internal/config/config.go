package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	App      App      `yaml:"app"`
	HTTP     HTTP     `yaml:"http"`
	Log      Log      `yaml:"log"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
	Kafka    Kafka    `yaml:"kafka"`
	Auth     Auth     `yaml:"auth"`
	Worker   Worker   `yaml:"worker"`
}

type App struct {
	Name    string `yaml:"name" env:"APP_NAME" env-default:"enroll-api"`
	Version string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type HTTP struct {
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER" env-default:"user"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB" env-default:"enroll_db"`
}

type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
}

type Kafka struct {
	Brokers        []string      `yaml:"brokers" env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	Topic          string        `yaml:"topic" env:"KAFKA_TOPIC" env-default:"enrollments"`
	GroupID        string        `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"enrollment-worker"`
	User           string        `yaml:"user" env:"KAFKA_USER" env-default:"user"`
	Password       string        `yaml:"password" env:"KAFKA_PASSWORD" env-default:"password"`
	ConnectRetries int           `yaml:"connect_retries" env:"KAFKA_CONNECT_RETRIES" env-default:"10"`
	ConnectDelay   time.Duration `yaml:"connect_delay" env:"KAFKA_CONNECT_DELAY" env-default:"5s"`
	PublishRetries int           `yaml:"publish_retries" env:"KAFKA_PUBLISH_RETRIES" env-default:"3"`
	PublishDelay   time.Duration `yaml:"publish_delay" env:"KAFKA_PUBLISH_DELAY" env-default:"1s"`
}

type Auth struct {
	Realm string `yaml:"realm" env:"BASIC_AUTH_REALM" env-default:"enroll-api"`
	// Users holds credentials as comma separated "username:password:role"
	// entries. Role is either "admin" or "user".
	Users string `yaml:"users" env:"BASIC_AUTH_USERS" env-default:"admin:secret123:admin,operator:config123:user"`
}

type Worker struct {
	// ProcessingFloor is the minimum time spent on a single enrollment
	// before it may be marked processed.
	ProcessingFloor time.Duration `yaml:"processing_floor" env:"WORKER_PROCESSING_FLOOR" env-default:"2s"`
	MetricsPort     string        `yaml:"metrics_port" env:"WORKER_METRICS_PORT" env-default:"9091"`
}

func New() (*Config, error) {
	cfg := &Config{}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		// fallback to env vars if file not found
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("config error: %w", err)
		}
	} else {
		// Allow env vars to override config file
		cleanenv.ReadEnv(cfg)
	}

	return cfg, nil
}
