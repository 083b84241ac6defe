package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	RateLimit struct {
		Capacity   int `yaml:"capacity"`
		RefillRate int `yaml:"refillRate"`
	} `yaml:"rateLimit"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"` // postgres only
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Services struct {
		LLM struct {
			Provider       string `yaml:"provider"` // service | openai
			BaseURL        string `yaml:"baseURL"`
			TimeoutSeconds int    `yaml:"timeoutSeconds"`
			OpenAI         struct {
				APIKey string `yaml:"apiKey"`
				Model  string `yaml:"model"`
			} `yaml:"openai"`
		} `yaml:"llm"`

		Vision struct {
			BaseURL        string `yaml:"baseURL"`
			TimeoutSeconds int    `yaml:"timeoutSeconds"`
		} `yaml:"vision"`
	} `yaml:"services"`

	Crawler struct {
		Image string `yaml:"image"`
	} `yaml:"crawler"`
}

// Load baca file config.yaml
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "mysql"
	}
	if c.Services.LLM.Provider == "" {
		c.Services.LLM.Provider = "service"
	}
	if c.Services.LLM.TimeoutSeconds == 0 {
		c.Services.LLM.TimeoutSeconds = 30
	}
	if c.Services.Vision.TimeoutSeconds == 0 {
		c.Services.Vision.TimeoutSeconds = 30
	}
	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 60
	}
	if c.RateLimit.RefillRate == 0 {
		c.RateLimit.RefillRate = 1
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:4200"}
	}
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		sslMode,
	)
}

// LLMTimeout per-call timeout untuk client LLM
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.Services.LLM.TimeoutSeconds) * time.Second
}

// VisionTimeout per-call timeout untuk client vision
func (c *Config) VisionTimeout() time.Duration {
	return time.Duration(c.Services.Vision.TimeoutSeconds) * time.Second
}
