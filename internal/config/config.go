package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	CORS     CORSConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	OTP      OTPConfig
	Trial    TrialConfig
	Apps     AppsConfig
	Tracking TrackingConfig
	GeoIP    GeoIPConfig
	Mailer   MailerConfig
	Admin    AdminConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	TrustedProxies  []string
	ShutdownTimeout time.Duration
}

// CORSConfig lists the browser origins allowed on the console and admin APIs.
// Tracking routes accept any origin.
type CORSConfig struct {
	ConsoleOrigins []string
	AdminOrigins   []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// JWTConfig holds the RS256 key locations and cookie settings
type JWTConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	Issuer         string
	ExpiresIn      time.Duration
	CookieName     string
	CookieSecure   bool
}

// OTPConfig controls one-time code generation and verification
type OTPConfig struct {
	Length      int
	Expiry      time.Duration
	MaxAttempts int
}

// TrialConfig is stamped on an account when it is first verified
type TrialConfig struct {
	Duration    time.Duration
	TotalEvents int64
}

// AppsConfig holds App registry limits
type AppsConfig struct {
	MaxPerUser int64
}

// TrackingConfig holds event feed limits
type TrackingConfig struct {
	MaxPageSize int64
}

// GeoIPConfig locates the city database and its refresh source
type GeoIPConfig struct {
	DBPath          string
	DownloadURL     string
	LicenseKey      string
	RefreshInterval time.Duration
}

// MailerConfig holds SMTP settings. Mock sends nothing and logs the message.
type MailerConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	SenderName string
	Mock       bool
}

// AdminConfig guards the administrative routes
type AdminConfig struct {
	APIKey string
}

// LogConfig selects log level and output format
type LogConfig struct {
	Level  string
	Format string
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled bool
}

// Load loads configuration from a .env file, an optional config file and
// environment variables, in increasing order of precedence.
func Load(paths ...string) (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindEnvAliases(v); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if !v.IsSet("mailer.mock") {
		cfg.Mailer.Mock = cfg.Mailer.Host == ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the services cannot run with
func (c *Config) Validate() error {
	switch {
	case c.MongoDB.URI == "":
		return errors.New("config: MongoDB.URI is required")
	case c.OTP.Length <= 0:
		return errors.New("config: OTP.Length must be positive")
	case c.OTP.Expiry <= 0:
		return errors.New("config: OTP.Expiry must be positive")
	case c.OTP.MaxAttempts <= 0:
		return errors.New("config: OTP.MaxAttempts must be positive")
	case c.Apps.MaxPerUser <= 0:
		return errors.New("config: Apps.MaxPerUser must be positive")
	case c.Tracking.MaxPageSize <= 0:
		return errors.New("config: Tracking.MaxPageSize must be positive")
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("Server.Port", "4000")
	v.SetDefault("Server.TrustedProxies", []string{})
	v.SetDefault("Server.ShutdownTimeout", "10s")
	v.SetDefault("CORS.ConsoleOrigins", []string{"http://localhost:3000"})
	v.SetDefault("CORS.AdminOrigins", []string{})
	v.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	v.SetDefault("MongoDB.Database", "outline")
	v.SetDefault("MongoDB.Timeout", "10s")
	v.SetDefault("JWT.PrivateKeyPath", "jwtkeys/access/private.pem")
	v.SetDefault("JWT.PublicKeyPath", "jwtkeys/access/public.pem")
	v.SetDefault("JWT.Issuer", "outline-analytics")
	v.SetDefault("JWT.ExpiresIn", "2160h") // 90 days
	v.SetDefault("JWT.CookieName", "auth")
	v.SetDefault("JWT.CookieSecure", true)
	v.SetDefault("OTP.Length", 6)
	v.SetDefault("OTP.Expiry", "10m")
	v.SetDefault("OTP.MaxAttempts", 5)
	v.SetDefault("Trial.Duration", "336h")
	v.SetDefault("Trial.TotalEvents", 10000)
	v.SetDefault("Apps.MaxPerUser", 5)
	v.SetDefault("Tracking.MaxPageSize", 100)
	v.SetDefault("GeoIP.DBPath", "data/GeoLite2-City.mmdb")
	v.SetDefault("GeoIP.DownloadURL", "")
	v.SetDefault("GeoIP.LicenseKey", "")
	v.SetDefault("GeoIP.RefreshInterval", "84h")
	v.SetDefault("Mailer.Host", "")
	v.SetDefault("Mailer.Port", 587)
	v.SetDefault("Mailer.Username", "")
	v.SetDefault("Mailer.Password", "")
	v.SetDefault("Mailer.From", "")
	v.SetDefault("Mailer.SenderName", "Outline")
	v.SetDefault("Admin.APIKey", "")
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.Format", "json")
	v.SetDefault("Metrics.Enabled", true)
}
