package config

import (
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	OpenAI   OpenAIConfig
	Worker   WorkerConfig
	Media    MediaConfig
	Logger   Logger
}

type ServerConfig struct {
	AppVersion string
	Port       string
	Mode       string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
	SSLMode  string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	JobQueueKey   string
	JobKeyPrefix  string
}

type S3Config struct {
	Enabled   bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

type OpenAIConfig struct {
	APIKey          string
	BaseURL         string
	TranscribeModel string
	CaptionModel    string
	CaptionPrompt   string
	RequestTimeout  int
}

type WorkerConfig struct {
	WorkerCount    int
	MaxCPUUsage    float64
	SampleInterval int
	CaptionPolicy  string
	PersistRetries int
	PersistBackoff int
}

type MediaConfig struct {
	Dir string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Worker.SampleInterval <= 0 {
		c.Worker.SampleInterval = 30
	}
	if c.Worker.CaptionPolicy == "" {
		c.Worker.CaptionPolicy = "abort"
	}
	return &c, nil
}
