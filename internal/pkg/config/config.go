package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	// AppURL is the public address of the portal front end, used in sign-in links.
	AppURL string `env:"APP_URL, default=http://localhost:3000"`

	Auth    AuthConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	S3      S3Config
	Notify  NotifyConfig
	Uploads UploadConfig
	Seed    SeedConfig
}

type AuthConfig struct {
	JWTSecret      string        `env:"JWT_SECRET, required"`
	TokenTTL       time.Duration `env:"TOKEN_TTL,        default=24h"`
	OTPTTL         time.Duration `env:"OTP_TTL,          default=10m"`
	OTPMaxAttempts int           `env:"OTP_MAX_ATTEMPTS, default=5"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=seva_kendra"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type S3Config struct {
	Bucket        string `env:"S3_BUCKET,          default=citizenship-images"`
	Region        string `env:"S3_REGION,          default=ap-south-1"`
	Endpoint      string `env:"S3_ENDPOINT"`
	PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	UsePathStyle  bool   `env:"S3_USE_PATH_STYLE,  default=false"`
}

type NotifyConfig struct {
	// Driver selects the notification transport: "log" or "kafka".
	Driver       string   `env:"NOTIFY_DRIVER,  default=log"`
	KafkaBrokers []string `env:"KAFKA_BROKERS,  default=localhost:9092"`
	KafkaTopic   string   `env:"KAFKA_TOPIC,    default=seva.notifications"`
	Workers      int      `env:"NOTIFY_WORKERS, default=4"`
}

type UploadConfig struct {
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES, default=5242880"`
	SubmitLockTTL  time.Duration `env:"SUBMIT_LOCK_TTL,  default=2m"`
}

// SeedConfig describes the service provider created at startup when absent.
// Seeding is skipped when Email is empty.
type SeedConfig struct {
	Email    string `env:"SEED_PROVIDER_EMAIL"`
	Password string `env:"SEED_PROVIDER_PASSWORD"`
	Name     string `env:"SEED_PROVIDER_NAME, default=Seva Kendra Office"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads a .env file when present and then configuration from
// environment variables using go-envconfig.
func Load() *Config {
	_ = godotenv.Load()

	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom processes configuration from lookuper.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if cfg.Notify.Driver != "log" && cfg.Notify.Driver != "kafka" {
		return nil, fmt.Errorf("NOTIFY_DRIVER must be log or kafka, got %q", cfg.Notify.Driver)
	}
	return &cfg, nil
}
