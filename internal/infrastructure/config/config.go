package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config is the explicit configuration value threaded into every
// component at startup. Nothing reads the environment after Load.
type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	ProjectName string `env:"PROJECT_NAME, default=identity-api"`

	// FrontendHost prefixes the links rendered into outbound mail.
	FrontendHost string `env:"FRONTEND_HOST, default=http://localhost:3000"`

	Security SecurityConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
}

type SecurityConfig struct {
	// SecretKey signs every token kind. Fatal at startup when empty.
	SecretKey string `env:"SECRET_KEY"`

	SessionTTL          time.Duration `env:"SESSION_TTL,            default=192h"`
	ResetTokenTTL       time.Duration `env:"RESET_TOKEN_TTL,        default=48h"`
	EmailChangeTokenTTL time.Duration `env:"EMAIL_CHANGE_TOKEN_TTL, default=48h"`
	TempPasswordTTL     time.Duration `env:"TEMP_PASSWORD_TTL,      default=1h"`

	MinPasswordLength int `env:"MIN_PASSWORD_LENGTH, default=8"`
	BcryptCost        int `env:"BCRYPT_COST,         default=0"`

	// PasswordCharsetPattern, when set, is a regular expression every
	// password must match in full.
	PasswordCharsetPattern string `env:"PASSWORD_CHARSET_PATTERN"`

	BreachCheck      bool   `env:"PASSWORD_BREACH_CHECK, default=true"`
	BreachCorpusPath string `env:"BREACH_CORPUS_PATH,    default=data/pwned-passwords-v5.bin"`
	WordListPath     string `env:"WORD_LIST_PATH,        default=data/words.txt"`

	PasswordlessRegistration bool `env:"USERS_PASSWORDLESS_REGISTRATION, default=true"`
	OpenRegistration         bool `env:"USERS_OPEN_REGISTRATION,         default=false"`

	FirstSuperuser         string `env:"FIRST_SUPERUSER,          default=admin@localhost"`
	FirstSuperuserPassword string `env:"FIRST_SUPERUSER_PASSWORD"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
	// RecoveryThrottleTTL is the minimum spacing between recovery mails
	// for one address.
	RecoveryThrottleTTL time.Duration `env:"RECOVERY_THROTTLE_TTL, default=5m"`
}

type SMTPConfig struct {
	Enabled   bool   `env:"SMTP_ENABLED, default=false"`
	Host      string `env:"SMTP_HOST,    default=localhost"`
	Port      int    `env:"SMTP_PORT,    default=587"`
	User      string `env:"SMTP_USER"`
	Password  string `env:"SMTP_PASSWORD"`
	FromEmail string `env:"EMAILS_FROM_EMAIL, default=root@localhost"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Security.SecretKey == "" {
		return nil, fmt.Errorf("config: SECRET_KEY is required")
	}
	return &cfg, nil
}
