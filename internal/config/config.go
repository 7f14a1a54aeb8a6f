package config

import (
	"strings"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxIdle     int    `mapstructure:"max_idle"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	EnableTLS   bool   `mapstructure:"enable_tls"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	PoolSize  int    `mapstructure:"pool_size"`
	EnableTLS bool   `mapstructure:"enable_tls"`
}

type RabbitMQConfig struct {
	URL           string `mapstructure:"url"`
	EnableTLS     bool   `mapstructure:"enable_tls"`
	EventExchange string `mapstructure:"event_exchange"`
}

type S3Config struct {
	Endpoint       string `mapstructure:"endpoint"`
	PublicEndpoint string `mapstructure:"public_endpoint"`
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	UsePathStyle   bool   `mapstructure:"use_path_style"`
}

type AuthConfig struct {
	SupabaseURL string `mapstructure:"supabase_url"`
	SupabaseKey string `mapstructure:"supabase_key"`
	CronSecret  string `mapstructure:"cron_secret"`
}

type SendGridConfig struct {
	APIKey    string `mapstructure:"api_key"`
	FromEmail string `mapstructure:"from_email"`
	FromName  string `mapstructure:"from_name"`
}

type TwilioConfig struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	FromPhone  string `mapstructure:"from_phone"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type NotifyConfig struct {
	// DetailsBaseURL is the public frontend origin used to build
	// capsule details-page links embedded in emails and SMS.
	DetailsBaseURL string `mapstructure:"details_base_url"`
}

type TelemetryConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	OtlpEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Log       LogConfig       `mapstructure:"log"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RabbitMQ  RabbitMQConfig  `mapstructure:"rabbitmq"`
	S3        S3Config        `mapstructure:"s3"`
	Auth      AuthConfig      `mapstructure:"auth"`
	SendGrid  SendGridConfig  `mapstructure:"sendgrid"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// Load reads configuration from config.yaml (if present) and the
// environment. Environment variables use the EM_ prefix with sections
// joined by underscores, e.g. EM_DATABASE_DSN, EM_SENDGRID_API_KEY.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("EM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "eternal-moments")
	v.SetDefault("app.env", "development")
	v.SetDefault("http.addr", ":5000")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.max_open", 20)
	v.SetDefault("database.max_idle", 10)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("rabbitmq.event_exchange", "eternal-moments.events")
	v.SetDefault("s3.bucket", "eternal-moment-uploads")
	v.SetDefault("openai.model", "gpt-4")
	v.SetDefault("telemetry.sample_ratio", 1.0)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
