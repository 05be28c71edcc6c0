package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds the service settings read from the environment.
type Config struct {
	Port            string
	LogLevel        string
	LogFormat       string
	MongoURI        string
	MongoDB         string
	MongoCollection string
	MongoTimeout    time.Duration
	ShutdownTimeout time.Duration
	MQTT            MQTTConfig
}

// MQTTConfig configures the optional change event publisher. Publishing is
// disabled when BrokerURL is empty.
type MQTTConfig struct {
	BrokerURL   string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// Enabled reports whether a broker is configured.
func (c MQTTConfig) Enabled() bool {
	return c.BrokerURL != ""
}

// Load reads an optional .env file and then builds the Config from the
// environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found (using environment variables)")
	}
	return FromEnv()
}

// FromEnv builds the Config from the environment, falling back to defaults.
func FromEnv() Config {
	qos := getInt("MQTT_QOS", 1)
	if qos < 0 || qos > 2 {
		qos = 1
	}

	return Config{
		Port:            getEnv("PORT", "8000"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LOG_FORMAT", "text")),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017/"),
		MongoDB:         getEnv("MONGO_DB", "spatial_db"),
		MongoCollection: getEnv("MONGO_COLLECTION", "spatial_data"),
		MongoTimeout:    getDuration("MONGO_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MQTT: MQTTConfig{
			BrokerURL:   os.Getenv("MQTT_BROKER_URL"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "spatial-data"),
			Username:    os.Getenv("MQTT_USERNAME"),
			Password:    os.Getenv("MQTT_PASSWORD"),
			TopicPrefix: strings.TrimSuffix(getEnv("MQTT_TOPIC_PREFIX", "spatial_data"), "/"),
			QoS:         byte(qos),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
