package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// ROCKET_DATABASE_DRIVER or ROCKET_AUTH_SECRET.
const EnvPrefix = "ROCKET"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" validate:"gt=0,lte=65535"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	PoolSize int    `mapstructure:"pool_size" validate:"gte=0"`
	Path     string `mapstructure:"path"` // directory for SQLite database files
}

type AuthConfig struct {
	Secret        string        `mapstructure:"secret" validate:"required,min=16"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	CSRFTTL       time.Duration `mapstructure:"csrf_ttl" validate:"gt=0"`
	SecureCookies bool          `mapstructure:"secure_cookies"`
	SeedEmail     string        `mapstructure:"seed_email" validate:"omitempty,email"`
	SeedPassword  string        `mapstructure:"seed_password"`
}

type AdminConfig struct {
	Title        string        `mapstructure:"title"`
	BasePath     string        `mapstructure:"base_path"`
	PerPage      int           `mapstructure:"per_page" validate:"gt=0"`
	ResourcesDir string        `mapstructure:"resources_dir" validate:"required"`
	FlashTTL     time.Duration `mapstructure:"flash_ttl" validate:"gt=0"`
}

type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// DSN returns the driver-specific data source name.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		if d.Name == ":memory:" {
			return d.Name
		}
		return filepath.Join(d.Path, d.Name+".db")
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// NormalizedBasePath trims trailing slashes; "/" and "" both mount at the root.
func (a AdminConfig) NormalizedBasePath() string {
	p := strings.TrimRight(a.BasePath, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "admin")
	v.SetDefault("database.pool_size", 10)
	v.SetDefault("database.path", "./data")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.csrf_ttl", time.Hour)
	v.SetDefault("auth.secure_cookies", false)
	v.SetDefault("auth.seed_email", "")
	v.SetDefault("auth.seed_password", "")
	v.SetDefault("admin.title", "Admin")
	v.SetDefault("admin.base_path", "/admin")
	v.SetDefault("admin.per_page", 20)
	v.SetDefault("admin.resources_dir", "./resources")
	v.SetDefault("admin.flash_ttl", time.Minute)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "text")
}

// Load reads configuration from path, or from admin.yaml in the working
// directory when path is empty. A missing default file is not an error;
// environment variables and defaults still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("admin")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks struct constraints and returns one readable error listing
// every violated field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
