package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Model      ModelConfig
	Training   TrainingConfig
	Drift      DriftConfig
	MQTT       MQTTConfig
	Prometheus PrometheusConfig
	Telemetry  TelemetryConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type ModelConfig struct {
	ArtifactPath string
}

type TrainingConfig struct {
	DataPath string
	L2       float64
}

type DriftConfig struct {
	Interval         time.Duration
	Window           time.Duration
	PSIThreshold     float64
	ConceptThreshold float64
	MinSamples       int
}

type MQTTConfig struct {
	Enabled  bool
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      int
	Timeout  time.Duration
}

type PrometheusConfig struct {
	Enabled bool
	URL     string
	Timeout time.Duration
}

type TelemetryConfig struct {
	RuntimeInterval time.Duration
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 5000)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "inference")
	v.SetDefault("DB_PASSWORD", "inference")
	v.SetDefault("DB_NAME", "inference")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")

	v.SetDefault("MODEL_ARTIFACT_PATH", "model/pipeline.json")

	v.SetDefault("TRAINING_DATA_PATH", "data/diamonds.csv")
	v.SetDefault("TRAINING_L2", 1.0)

	v.SetDefault("DRIFT_INTERVAL", "1m")
	v.SetDefault("DRIFT_WINDOW", "15m")
	v.SetDefault("DRIFT_PSI_THRESHOLD", 0.2)
	v.SetDefault("DRIFT_CONCEPT_THRESHOLD", 0.25)
	v.SetDefault("DRIFT_MIN_SAMPLES", 30)

	v.SetDefault("MQTT_ENABLED", false)
	v.SetDefault("MQTT_BROKER", "tcp://localhost:1883")
	v.SetDefault("MQTT_TOPIC", "inference/drift-alerts")
	v.SetDefault("MQTT_CLIENT_ID", "model-inference-service")
	v.SetDefault("MQTT_USERNAME", "")
	v.SetDefault("MQTT_PASSWORD", "")
	v.SetDefault("MQTT_QOS", 1)
	v.SetDefault("MQTT_TIMEOUT", "10s")

	v.SetDefault("PROMETHEUS_ENABLED", false)
	v.SetDefault("PROMETHEUS_URL", "http://localhost:9090")
	v.SetDefault("PROMETHEUS_TIMEOUT", "30s")

	v.SetDefault("TELEMETRY_RUNTIME_INTERVAL", "15s")

	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Model: ModelConfig{
			ArtifactPath: v.GetString("MODEL_ARTIFACT_PATH"),
		},
		Training: TrainingConfig{
			DataPath: v.GetString("TRAINING_DATA_PATH"),
			L2:       v.GetFloat64("TRAINING_L2"),
		},
		Drift: DriftConfig{
			Interval:         v.GetDuration("DRIFT_INTERVAL"),
			Window:           v.GetDuration("DRIFT_WINDOW"),
			PSIThreshold:     v.GetFloat64("DRIFT_PSI_THRESHOLD"),
			ConceptThreshold: v.GetFloat64("DRIFT_CONCEPT_THRESHOLD"),
			MinSamples:       v.GetInt("DRIFT_MIN_SAMPLES"),
		},
		MQTT: MQTTConfig{
			Enabled:  v.GetBool("MQTT_ENABLED"),
			Broker:   v.GetString("MQTT_BROKER"),
			Topic:    v.GetString("MQTT_TOPIC"),
			ClientID: v.GetString("MQTT_CLIENT_ID"),
			Username: v.GetString("MQTT_USERNAME"),
			Password: v.GetString("MQTT_PASSWORD"),
			QoS:      v.GetInt("MQTT_QOS"),
			Timeout:  v.GetDuration("MQTT_TIMEOUT"),
		},
		Prometheus: PrometheusConfig{
			Enabled: v.GetBool("PROMETHEUS_ENABLED"),
			URL:     v.GetString("PROMETHEUS_URL"),
			Timeout: v.GetDuration("PROMETHEUS_TIMEOUT"),
		},
		Telemetry: TelemetryConfig{
			RuntimeInterval: v.GetDuration("TELEMETRY_RUNTIME_INTERVAL"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}
