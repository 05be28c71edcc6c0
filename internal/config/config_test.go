package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"PORT", "LOG_LEVEL", "LOG_FORMAT", "MONGO_URI", "MONGO_DB", "MONGO_COLLECTION",
		"MONGO_TIMEOUT", "SHUTDOWN_TIMEOUT", "MQTT_BROKER_URL", "MQTT_CLIENT_ID",
		"MQTT_TOPIC_PREFIX", "MQTT_QOS",
	} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "mongodb://localhost:27017/", cfg.MongoURI)
	assert.Equal(t, "spatial_db", cfg.MongoDB)
	assert.Equal(t, "spatial_data", cfg.MongoCollection)
	assert.Equal(t, 10*time.Second, cfg.MongoTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.MQTT.Enabled())
	assert.Equal(t, "spatial_data", cfg.MQTT.TopicPrefix)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("MONGO_DB", "geo")
	t.Setenv("MONGO_COLLECTION", "shapes")
	t.Setenv("MONGO_TIMEOUT", "3s")
	t.Setenv("MQTT_BROKER_URL", "tcp://broker:1883")
	t.Setenv("MQTT_TOPIC_PREFIX", "geo/events/")
	t.Setenv("MQTT_QOS", "0")

	cfg := FromEnv()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
	assert.Equal(t, "geo", cfg.MongoDB)
	assert.Equal(t, "shapes", cfg.MongoCollection)
	assert.Equal(t, 3*time.Second, cfg.MongoTimeout)
	assert.True(t, cfg.MQTT.Enabled())
	assert.Equal(t, "geo/events", cfg.MQTT.TopicPrefix)
	assert.Equal(t, byte(0), cfg.MQTT.QoS)
}

func TestFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MONGO_TIMEOUT", "soon")
	t.Setenv("SHUTDOWN_TIMEOUT", "-5s")
	t.Setenv("MQTT_QOS", "7")

	cfg := FromEnv()
	assert.Equal(t, 10*time.Second, cfg.MongoTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
}
