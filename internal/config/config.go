package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	Env       string `envconfig:"APP_ENV" default:"development"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	PublicURL string `envconfig:"PUBLIC_URL" default:"http://localhost:8080"`
	CORS      CORSConfig
	DB        DBConfig
	Redis     RedisConfig
	Storage   StorageConfig
	OpenAI    OpenAIConfig
	Process   ProcessingConfig
	Interview InterviewConfig
	Voice     VoiceAgentConfig
	Auth      AuthConfig
	Recording RecordingConfig
}

type CORSConfig struct {
	Origins string `envconfig:"CORS_ORIGINS" default:"*"`
}

// database configuration
type DBConfig struct {
	Host         string        `envconfig:"DB_HOST" default:"localhost"`
	Port         string        `envconfig:"DB_PORT" default:"5432"`
	User         string        `envconfig:"DB_USER" default:"postgres"`
	Password     string        `envconfig:"DB_PASS" default:"postgres"`
	Name         string        `envconfig:"DB_NAME" default:"hire_ai"`
	SSLMode      string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASS"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// blob storage; an empty bucket selects the local disk store
type StorageConfig struct {
	Region    string `envconfig:"AWS_REGION" default:"us-east-1"`
	Bucket    string `envconfig:"AWS_BUCKET"`
	Prefix    string `envconfig:"AWS_PREFIX" default:"uploads"`
	LocalRoot string `envconfig:"LOCAL_STORAGE_ROOT" default:"./data/uploads"`
}

// Azure OpenAI configuration
type OpenAIConfig struct {
	APIKey                string `envconfig:"AZURE_OPENAI_API_KEY"`
	Endpoint              string `envconfig:"AZURE_OPENAI_ENDPOINT"`
	Deployment            string `envconfig:"AZURE_OPENAI_DEPLOYMENT_NAME" default:"gpt-4"`
	VisionDeployment      string `envconfig:"AZURE_OPENAI_VISION_DEPLOYMENT" default:"gpt-4o"`
	EmbeddingDeployment   string `envconfig:"AZURE_OPENAI_EMBEDDING_DEPLOYMENT" default:"text-embedding-3-small"`
	APIVersion            string `envconfig:"AZURE_OPENAI_API_VERSION" default:"2024-02-01"`
	MaxTokens             int    `envconfig:"MAX_TOKENS" default:"2000"`
	MaxRetries            int    `envconfig:"MAX_RETRIES" default:"3"`
	MaxConcurrentRequests int    `envconfig:"MAX_CONCURRENT_REQUESTS" default:"10"`
}

type ProcessingConfig struct {
	BatchSize   int    `envconfig:"BATCH_SIZE" default:"50"`
	Workers     int    `envconfig:"WORKER_COUNT" default:"2"`
	QueueName   string `envconfig:"QUEUE_NAME" default:"resume_batches"`
	MaxAttempts int    `envconfig:"BATCH_MAX_ATTEMPTS" default:"3"`
}

type InterviewConfig struct {
	SessionTTL      time.Duration `envconfig:"INTERVIEW_SESSION_TTL" default:"24h"`
	GracePeriod     time.Duration `envconfig:"INTERVIEW_GRACE_PERIOD" default:"10s"`
	DefaultDuration time.Duration `envconfig:"INTERVIEW_DEFAULT_DURATION" default:"10m"`
}

// ElevenLabs conversational agent configuration
type VoiceAgentConfig struct {
	APIKey        string `envconfig:"ELEVENLABS_API_KEY"`
	WebhookSecret string `envconfig:"ELEVENLABS_WEBHOOK_SECRET"`
	BaseURL       string `envconfig:"ELEVENLABS_BASE_URL" default:"https://api.elevenlabs.io"`
}

type AuthConfig struct {
	JWTSecret      string        `envconfig:"JWT_SECRET"`
	AdminKeyHash   string        `envconfig:"ADMIN_API_KEY_HASH"`
	UploadTokenTTL time.Duration `envconfig:"UPLOAD_TOKEN_TTL" default:"2h"`
}

type RecordingConfig struct {
	BlockSize int64 `envconfig:"RECORDING_BLOCK_SIZE" default:"5242880"`
	MaxSize   int64 `envconfig:"RECORDING_MAX_SIZE" default:"2147483648"`
}

// S3 multipart limits: every part but the last needs 5 MiB, and an
// upload holds at most 10000 parts
const (
	minS3PartSize = 5 * 1024 * 1024
	maxS3Parts    = 10000
)

// MaxBlocks is the number of blocks a recording of MaxSize bytes needs
func (r RecordingConfig) MaxBlocks() int64 {
	if r.BlockSize < 1 {
		return 0
	}
	return (r.MaxSize + r.BlockSize - 1) / r.BlockSize
}

// Load reads .env (if present) and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Env] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Env)
	}
	if c.DB.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) cannot exceed DB_MAX_OPEN_CONNS (%d)",
			c.DB.MaxIdleConns, c.DB.MaxOpenConns)
	}
	if c.Process.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1")
	}
	if c.Process.Workers < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	if c.OpenAI.MaxConcurrentRequests < 1 {
		return fmt.Errorf("MAX_CONCURRENT_REQUESTS must be at least 1")
	}
	if c.Recording.BlockSize < 1 {
		return fmt.Errorf("RECORDING_BLOCK_SIZE must be positive")
	}
	if c.Storage.Bucket != "" {
		if c.Recording.BlockSize < minS3PartSize {
			return fmt.Errorf("RECORDING_BLOCK_SIZE must be at least %d bytes when using S3", minS3PartSize)
		}
		if blocks := c.Recording.MaxBlocks(); blocks > maxS3Parts {
			return fmt.Errorf("RECORDING_MAX_SIZE needs %d blocks of RECORDING_BLOCK_SIZE, S3 allows at most %d parts",
				blocks, maxS3Parts)
		}
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.Env == "production" && c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// CORSOrigins returns the comma separated origin list normalised for fiber
func (c *Config) CORSOrigins() string {
	parts := strings.Split(c.CORS.Origins, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}

// LLMConfigured reports whether Azure OpenAI credentials are present
func (c *Config) LLMConfigured() bool {
	return c.OpenAI.APIKey != "" && c.OpenAI.Endpoint != ""
}
