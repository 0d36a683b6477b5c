package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aussiebroadwan/readprogress/internal/progress/domain"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the YAML file to load, if any.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are tried in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Env      string         `koanf:"env" validate:"oneof=dev staging prod"`
	Server   ServerConfig   `koanf:"server"`
	Master   MasterConfig   `koanf:"master"`
	Session  SessionConfig  `koanf:"session"`
	Store    StoreConfig    `koanf:"store"`
	Security SecurityConfig `koanf:"security"`
	Log      LogConfig      `koanf:"log"`

	// Seed lists the identities registered at start. Empty means DefaultSeeds.
	Seed []domain.Seed `koanf:"seed" validate:"dive"`
}

type ServerConfig struct {
	Host                string        `koanf:"host"`
	Port                int           `koanf:"port" validate:"min=1,max=65535"`
	ReadHeaderTimeout   time.Duration `koanf:"read_header_timeout" validate:"gt=0"`
	BodyTimeout         time.Duration `koanf:"body_timeout" validate:"gt=0"`
	MaxBodyBytes        int64         `koanf:"max_body_bytes" validate:"gt=0"`
	ShutdownGracePeriod time.Duration `koanf:"shutdown_grace_period" validate:"gt=0"`
}

// MasterConfig holds the administrator credentials. There is deliberately no
// default password.
type MasterConfig struct {
	Login    string `koanf:"login" validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

type SessionConfig struct {
	Secret     string        `koanf:"secret" validate:"required,min=32"`
	CookieName string        `koanf:"cookie_name" validate:"required"`
	Secure     bool          `koanf:"secure"`
	MaxAge     time.Duration `koanf:"max_age" validate:"gt=0"`
}

type StoreConfig struct {
	Driver string `koanf:"driver" validate:"oneof=memory sqlite"`
	Path   string `koanf:"path" validate:"required_if=Driver sqlite"`
}

type SecurityConfig struct {
	PepperFile string `koanf:"pepper_file" validate:"required"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

func defaultConfig() *Config {
	return &Config{
		Env: "dev",
		Server: ServerConfig{
			Host:                "0.0.0.0",
			Port:                2345,
			ReadHeaderTimeout:   5 * time.Second,
			BodyTimeout:         10 * time.Second,
			MaxBodyBytes:        4096,
			ShutdownGracePeriod: 10 * time.Second,
		},
		Master: MasterConfig{Login: "admin"},
		Session: SessionConfig{
			CookieName: "progress-session",
			MaxAge:     30 * 24 * time.Hour,
		},
		Store:    StoreConfig{Driver: "memory", Path: "progress.db"},
		Security: SecurityConfig{PepperFile: "pepper"},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// DefaultSeeds is the fixed registry used when none is configured: users a
// through e, each with login and password equal to the id.
func DefaultSeeds() []domain.Seed {
	ids := []string{"a", "b", "c", "d", "e"}
	seeds := make([]domain.Seed, 0, len(ids))
	for _, id := range ids {
		seeds = append(seeds, domain.Seed{ID: id, Login: id, Password: id})
	}
	return seeds
}

// LoadConfig layers defaults, an optional YAML file and the environment, in
// that order of precedence, then validates the result.
func LoadConfig() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.Seed) == 0 {
		cfg.Seed = DefaultSeeds()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every missing or out-of-range setting at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings lists every environment variable read. Anything else in the
// environment is ignored.
var envMappings = map[string]string{
	"env": "env",

	"port":                  "server.port",
	"host":                  "server.host",
	"read_header_timeout":   "server.read_header_timeout",
	"body_timeout":          "server.body_timeout",
	"max_body_bytes":        "server.max_body_bytes",
	"shutdown_grace_period": "server.shutdown_grace_period",

	"master_login":    "master.login",
	"master_password": "master.password",

	"session_secret":      "session.secret",
	"session_cookie_name": "session.cookie_name",
	"session_secure":      "session.secure",
	"session_max_age":     "session.max_age",

	"store_driver": "store.driver",
	"store_path":   "store.path",

	"pepper_file": "security.pepper_file",

	"log_level":  "log.level",
	"log_format": "log.format",
}

func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
