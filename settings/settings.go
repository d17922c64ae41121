// Package settings loads server settings from defaults, an optional JSON or
// YAML file and RUBER_* environment variables, in increasing precedence.
package settings

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RUBER_PORT or
// RUBER_NGROK_AUTHTOKEN.
const EnvPrefix = "RUBER"

// NgrokSettings configures the optional public tunnel
type NgrokSettings struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	AuthToken string `json:"authToken" mapstructure:"authToken"`
	Domain    string `json:"domain" mapstructure:"domain"`
}

// Settings holds everything the rubertaxi server reads at startup
type Settings struct {
	Host          string        `json:"host" mapstructure:"host"`
	Port          int           `json:"port" mapstructure:"port"`
	ConfigDir     string        `json:"configDir" mapstructure:"configDir"`
	SessionsDir   string        `json:"sessionsDir" mapstructure:"sessionsDir"`
	ScoresDSN     string        `json:"scoresDsn" mapstructure:"scoresDsn"`
	LogLevel      string        `json:"logLevel" mapstructure:"logLevel"`
	LogPretty     bool          `json:"logPretty" mapstructure:"logPretty"`
	TickRate      int           `json:"tickRate" mapstructure:"tickRate"`
	SessionMaxAge time.Duration `json:"sessionMaxAge" mapstructure:"sessionMaxAge"`
	Ngrok         NgrokSettings `json:"ngrok" mapstructure:"ngrok"`
}

// Addr returns host:port
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// New returns a viper instance with every default registered, so nested
// keys can be overridden from the environment.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("host", "localhost")
	v.SetDefault("port", 8080)
	v.SetDefault("configDir", "configs")
	v.SetDefault("sessionsDir", "sessions")
	v.SetDefault("scoresDsn", "scores.db")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logPretty", true)
	v.SetDefault("tickRate", 60)
	v.SetDefault("sessionMaxAge", 24*time.Hour)

	v.SetDefault("ngrok.enabled", false)
	v.SetDefault("ngrok.authToken", "")
	v.SetDefault("ngrok.domain", "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads settings. An empty file means defaults and environment only;
// a named file that does not exist is an error.
func Load(file string) (*Settings, error) {
	v := New()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading settings file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks ranges
func (s *Settings) Validate() error {
	var errs []error
	if s.Port < 0 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", s.Port))
	}
	if s.ConfigDir == "" {
		errs = append(errs, errors.New("configDir is required"))
	}
	if s.TickRate <= 0 || s.TickRate > 240 {
		errs = append(errs, fmt.Errorf("tickRate must be between 1 and 240, got %d", s.TickRate))
	}
	if len(errs) > 0 {
		return fmt.Errorf("settings validation: %w", errors.Join(errs...))
	}
	return nil
}

// TickInterval is the wall-clock period of the real-time driver
func (s *Settings) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}
