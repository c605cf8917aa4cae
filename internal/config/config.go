package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	DB        DBConfig        `mapstructure:"db"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Mail      MailConfig      `mapstructure:"mail"`
	OTP       OTPConfig       `mapstructure:"otp"`
	Checkout  CheckoutConfig  `mapstructure:"checkout"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DBConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type AuthConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

type PaymentConfig struct {
	Provider     string        `mapstructure:"provider"`
	KeyID        string        `mapstructure:"key_id"`
	KeySecret    string        `mapstructure:"key_secret"`
	KeySecretEnv string        `mapstructure:"key_secret_env"`
	Currency     string        `mapstructure:"currency"`
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type MailConfig struct {
	Provider     string        `mapstructure:"provider"`
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	PasswordEnv  string        `mapstructure:"password_env"`
	From         string        `mapstructure:"from"`
	Timeout      time.Duration `mapstructure:"timeout"`
	QueueSize    int           `mapstructure:"queue_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
}

type OTPConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	Length      int           `mapstructure:"length"`
	MaxAttempts int           `mapstructure:"max_attempts"`
}

type CheckoutConfig struct {
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

type RateLimitConfig struct {
	Window time.Duration `mapstructure:"window"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from config.yaml and environment variables.
// A missing config file is not an error; defaults and STOREFRONT_* variables
// are enough to run.
func LoadConfig() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./deploy/")
	v.AddConfigPath("./")
	v.AddConfigPath("$HOME/.storefront/")
	v.AddConfigPath("/etc/storefront/")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

// Default returns the configuration built from defaults only.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(err)
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	// Enable environment variable override with STOREFRONT_ prefix
	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.Payment.Currency = strings.ToUpper(config.Payment.Currency)
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("db.driver", "mysql")
	v.SetDefault("db.dsn", "storefront:storefront@tcp(127.0.0.1:3306)/storefront")
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetime", 30*time.Minute)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.issuer", "storefront")
	v.SetDefault("auth.access_ttl", 15*time.Minute)
	v.SetDefault("auth.refresh_ttl", 24*time.Hour)

	v.SetDefault("payment.provider", "mock")
	v.SetDefault("payment.key_id", "")
	v.SetDefault("payment.key_secret", "")
	v.SetDefault("payment.key_secret_env", "RAZORPAY_KEY_SECRET")
	v.SetDefault("payment.currency", "INR")
	v.SetDefault("payment.base_url", "https://api.razorpay.com")
	v.SetDefault("payment.timeout", 15*time.Second)

	v.SetDefault("mail.provider", "log")
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.password_env", "SMTP_PASSWORD")
	v.SetDefault("mail.from", "Pinobite <no-reply@pinobite.com>")
	v.SetDefault("mail.timeout", 20*time.Second)
	v.SetDefault("mail.queue_size", 256)
	v.SetDefault("mail.max_attempts", 3)
	v.SetDefault("mail.retry_backoff", 2*time.Second)

	v.SetDefault("otp.ttl", 5*time.Minute)
	v.SetDefault("otp.length", 6)
	v.SetDefault("otp.max_attempts", 5)

	v.SetDefault("checkout.stale_after", 24*time.Hour)

	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks the settings that would otherwise fail late, at first use.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.Secret == "" && c.Log.Level != "debug" {
		errs = append(errs, errors.New("auth.secret must be set (STOREFRONT_AUTH_SECRET)"))
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, errors.New("auth token ttls must be positive"))
	}
	switch c.DB.Driver {
	case "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported db driver: %s", c.DB.Driver))
	}
	switch c.Payment.Provider {
	case "razorpay", "mock":
	default:
		errs = append(errs, fmt.Errorf("unsupported payment provider: %s", c.Payment.Provider))
	}
	// The mock gateway signs with a published secret.
	if c.Payment.Provider == "mock" && c.Log.Level != "debug" {
		errs = append(errs, errors.New("payment.provider mock is only allowed with log.level debug"))
	}
	switch c.Mail.Provider {
	case "smtp", "log":
	default:
		errs = append(errs, fmt.Errorf("unsupported mail provider: %s", c.Mail.Provider))
	}
	if c.OTP.TTL <= 0 {
		errs = append(errs, errors.New("otp.ttl must be positive"))
	}
	if c.OTP.Length < 4 || c.OTP.Length > 10 {
		errs = append(errs, errors.New("otp.length must be between 4 and 10"))
	}
	if c.OTP.MaxAttempts <= 0 {
		errs = append(errs, errors.New("otp.max_attempts must be positive"))
	}

	return errors.Join(errs...)
}
