package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/assistant/internal/contacts"
	"github.com/starford/assistant/internal/finance"
	"github.com/starford/assistant/internal/notes"
	"github.com/starford/assistant/internal/tasks"
	"github.com/starford/assistant/internal/workspace"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Data    DataConfig        `yaml:"data"`
	Finance FinanceConfig     `yaml:"finance"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Data.Validate(); err != nil {
		return err
	}
	if err := c.Finance.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel  slog.Level `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"`
	HTTP      HTTPConfig   `yaml:"http"`
	Events    EventsConfig `yaml:"events"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.LogFormat == "" {
		c.LogFormat = LogFormatText
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
	); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return c.Events.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// EventsConfig tunes the /api/events stream.
type EventsConfig struct {
	// BalanceThrottle is the minimum gap between balance.updated events.
	BalanceThrottle time.Duration `yaml:"balance_throttle"`
	// KeepAlive is the comment interval on idle streams. Zero disables it.
	KeepAlive time.Duration `yaml:"keep_alive"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BalanceThrottle, validation.Required, validation.Min(10*time.Millisecond)),
		validation.Field(&c.KeepAlive, validation.Min(time.Duration(0))),
	)
}

// DataConfig locates the backing stores. File names are relative to Dir.
type DataConfig struct {
	Dir      string `yaml:"dir"`
	Notes    string `yaml:"notes"`
	Tasks    string `yaml:"tasks"`
	Contacts string `yaml:"contacts"`
	Finance  string `yaml:"finance"`
}

var plainFileName = validation.By(func(v any) error {
	s, _ := v.(string)
	if strings.ContainsAny(s, `/\`) || s == "." || s == ".." {
		return errors.New("must be a plain file name")
	}
	return nil
})

// Validate validates the data configuration.
func (c *DataConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Notes, validation.Required, plainFileName),
		validation.Field(&c.Tasks, validation.Required, plainFileName),
		validation.Field(&c.Contacts, validation.Required, plainFileName),
		validation.Field(&c.Finance, validation.Required, plainFileName),
	)
}

// Files converts the configuration into workspace file locations.
func (c *DataConfig) Files() workspace.Files {
	return workspace.Files{
		Dir:      c.Dir,
		Notes:    c.Notes,
		Tasks:    c.Tasks,
		Contacts: c.Contacts,
		Finance:  c.Finance,
	}
}

// FinanceConfig holds finance presentation settings.
type FinanceConfig struct {
	// Currency is an ISO 4217 code used when formatting amounts.
	Currency string `yaml:"currency"`
}

// Validate validates the finance configuration.
func (c *FinanceConfig) Validate() error {
	c.Currency = strings.ToUpper(c.Currency)
	return validation.ValidateStruct(c,
		validation.Field(&c.Currency, validation.Required, validation.By(func(v any) error {
			if !finance.KnownCurrency(v.(string)) {
				return errors.New("unknown currency code")
			}
			return nil
		})),
	)
}

// AuthConfig holds authentication configuration for the HTTP API.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel:  slog.LevelInfo,
			LogFormat: LogFormatText,
			HTTP: HTTPConfig{
				Port: 8080,
			},
			Events: EventsConfig{
				BalanceThrottle: 2 * time.Second,
				KeepAlive:       15 * time.Second,
			},
		},
		Data: DataConfig{
			Dir:      ".",
			Notes:    notes.DefaultStore,
			Tasks:    tasks.DefaultStore,
			Contacts: contacts.DefaultStore,
			Finance:  finance.DefaultStore,
		},
		Finance: FinanceConfig{
			Currency: "USD",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
