package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"directline-bridge/pkg/validator"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App        `mapstructure:"app"`
	Postgres   `mapstructure:"postgres"`
	Line       `mapstructure:"line"`
	HTTP       `mapstructure:"http"`
	Identity   `mapstructure:"identity"`
	DirectLine `mapstructure:"directline"`
	WebChat    `mapstructure:"webchat"`
	Session    `mapstructure:"session"`
}

// App struct
type App struct {
	Debug bool   `mapstructure:"debug"`
	Env   string `mapstructure:"env"`
	Port  string `mapstructure:"port" validate:"required,numeric"`
}

// Postgres struct
type Postgres struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"database" validate:"required_if=Enabled true"`
	SSLMode  bool   `mapstructure:"sslmode"`
}

// Line struct
type Line struct {
	Enabled       bool   `mapstructure:"enabled"`
	ChannelSecret string `mapstructure:"channel_secret" validate:"required_if=Enabled true"`
	ChannelToken  string `mapstructure:"channel_token" validate:"required_if=Enabled true"`
	// Channel names the backend LINE users are relayed to
	Channel string `mapstructure:"channel" validate:"oneof=directline webchat"`
}

// HTTP struct - settings of the shared outbound client
type HTTP struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Identity struct - OAuth2 client-credentials identity provider
type Identity struct {
	Issuer        string        `mapstructure:"issuer" validate:"required,url"`
	ClientID      string        `mapstructure:"client_id" validate:"required"`
	ClientSecret  string        `mapstructure:"client_secret" validate:"required"`
	Scope         string        `mapstructure:"scope" validate:"required"`
	AuthMargin    time.Duration `mapstructure:"auth_margin" validate:"gte=0"`
	AuthFailSleep time.Duration `mapstructure:"auth_fail_sleep" validate:"gt=0"`
}

// DirectLine struct
type DirectLine struct {
	Secret        string `mapstructure:"secret" validate:"required"`
	BaseURL       string `mapstructure:"base_url" validate:"required,url"`
	MaintainToken bool   `mapstructure:"maintain_token"`
}

// WebChat struct
type WebChat struct {
	Secret          string        `mapstructure:"secret" validate:"required"`
	TokenURL        string        `mapstructure:"token_url" validate:"required,url"`
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval" validate:"gt=0"`
}

// Session struct
type Session struct {
	SweepInterval time.Duration `mapstructure:"sweep_interval" validate:"gte=0"`
	Retention     time.Duration `mapstructure:"retention" validate:"gte=0"`
}

var config Config

// InitViper func
func InitViper(path, env string) error {
	return getConfig(path, env)
}

// GetViper func
func GetViper() *Config {
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)
	v.SetDefault("app.env", "local")
	v.SetDefault("app.port", "9089")

	v.SetDefault("postgres.enabled", false)
	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.username", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "")
	v.SetDefault("postgres.sslmode", false)

	v.SetDefault("line.enabled", false)
	v.SetDefault("line.channel_secret", "")
	v.SetDefault("line.channel_token", "")
	v.SetDefault("line.channel", "directline")

	v.SetDefault("http.timeout", 5*time.Second)

	v.SetDefault("identity.issuer", "")
	v.SetDefault("identity.client_id", "")
	v.SetDefault("identity.client_secret", "")
	v.SetDefault("identity.scope", "https://api.botframework.com/.default")
	v.SetDefault("identity.auth_margin", 60*time.Second)
	v.SetDefault("identity.auth_fail_sleep", 60*time.Second)

	v.SetDefault("directline.secret", "")
	v.SetDefault("directline.base_url", "https://directline.botframework.com/")
	v.SetDefault("directline.maintain_token", false)

	v.SetDefault("webchat.secret", "")
	v.SetDefault("webchat.token_url", "https://webchat.botframework.com/api/tokens")
	v.SetDefault("webchat.base_url", "https://webchat.botframework.com/")
	v.SetDefault("webchat.refresh_interval", 15*time.Minute)

	v.SetDefault("session.sweep_interval", 5*time.Minute)
	v.SetDefault("session.retention", 30*time.Minute)
}

// Load reads config.<env>.yaml (or config.yaml when env is empty) from path,
// overlays environment variables and validates the result.
// A missing file is tolerated so deployments can be configured by env alone.
func Load(path, env string) (*viper.Viper, Config, error) {
	v := viper.New()
	name := "config"
	if env != "" {
		name = "config." + env
	}
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		logrus.Warnf("No %s.yaml found in %s, using defaults and environment", name, path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().ValidateStruct(cfg); err != nil {
		return nil, Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return v, cfg, nil
}

func getConfig(path, env string) error {
	v, cfg, err := Load(path, env)
	if err != nil {
		return err
	}
	config = cfg

	if v.ConfigFileUsed() != "" {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			logrus.Infof("Config file has changed: %s (restart to apply)", e.Name)
		})
	}
	return nil
}
