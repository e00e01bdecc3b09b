package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	DatabaseFile   string `env:"QA_DATABASE_FILE, default=qaboard.db"`
	PepperFile     string `env:"QA_PEPPER_FILE, default=pepper"`
	SigningKeyFile string `env:"QA_SIGNING_KEY_FILE, default=session.pem"`
	Issuer         string `env:"QA_ISSUER, default=qaboard"`

	Env       string `env:"ENV, default=dev"`         // dev, staging, prod
	LogLevel  string `env:"LOG_LEVEL, default=info"`  // debug, info, warn, error
	LogFormat string `env:"LOG_FORMAT, default=json"` // json, text

	Port                 int           `env:"PORT, default=8080"`
	ShutdownGracePeriod  time.Duration `env:"SHUTDOWN_GRACE_PERIOD, default=10s"`
	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL, default=1h"`
	SessionTTL           time.Duration `env:"SESSION_TTL, default=15m"`
	OTPDefaultTTLMinutes int           `env:"OTP_DEFAULT_TTL_MINUTES, default=30"`
}

// LoadConfig reads the process environment after merging in envFile, when
// that file exists. Variables already set win over the file.
func LoadConfig(ctx context.Context, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return LoadConfigFrom(ctx, envconfig.OsLookuper())
}

// LoadConfigFrom decodes a Config from l and checks it.
func LoadConfigFrom(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.ShutdownGracePeriod <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_GRACE_PERIOD must be positive"))
	}
	if c.OTPDefaultTTLMinutes <= 0 {
		errs = append(errs, errors.New("OTP_DEFAULT_TTL_MINUTES must be positive"))
	}
	for name, v := range map[string]string{
		"QA_DATABASE_FILE":    c.DatabaseFile,
		"QA_PEPPER_FILE":      c.PepperFile,
		"QA_SIGNING_KEY_FILE": c.SigningKeyFile,
	} {
		if v == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", name))
		}
	}
	return errors.Join(errs...)
}
