package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	DefaultServer = "imap.fastmail.com"
	DefaultFolder = "Netto"
	DefaultSender = "noreply@netto.dk"

	envPrefix = "NETTOU"
)

// Keys recognised in the config file, the environment (NETTOU_<KEY>) and
// as command line flags.
const (
	KeyServer   = "server"
	KeyUser     = "user"
	KeyPassword = "password"
	KeyFolder   = "folder"
	KeySender   = "sender"
)

// ConfigurationError reports a missing or invalid setting. It is returned
// before any connection to the mail server is attempted.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Field, e.Reason)
}

// Mailbox holds everything needed to open an IMAP session and find receipts.
type Mailbox struct {
	Server   string `yaml:"server"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Folder   string `yaml:"folder"`
	Sender   string `yaml:"sender"`
}

type Config struct {
	Mailbox Mailbox
}

// New returns a configuration holding the defaults and no credentials.
func New() *Config {
	return &Config{
		Mailbox: Mailbox{
			Server: DefaultServer,
			Folder: DefaultFolder,
			Sender: DefaultSender,
		},
	}
}

// Build resolves the configuration from, in increasing priority: defaults,
// the config file, a .env file, the environment and changed flags.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetDefault(KeyServer, DefaultServer)
	v.SetDefault(KeyFolder, DefaultFolder)
	v.SetDefault(KeySender, DefaultSender)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/nettou")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	return &Config{
		Mailbox: Mailbox{
			Server:   v.GetString(KeyServer),
			User:     v.GetString(KeyUser),
			Password: v.GetString(KeyPassword),
			Folder:   v.GetString(KeyFolder),
			Sender:   v.GetString(KeySender),
		},
	}, nil
}

// Validate checks the mailbox settings. Credentials are never defaulted.
func (c *Config) Validate() error {
	return c.Mailbox.Validate()
}

func (m Mailbox) Validate() error {
	switch {
	case m.User == "":
		return &ConfigurationError{Field: KeyUser, Reason: "must not be empty"}
	case m.Password == "":
		return &ConfigurationError{Field: KeyPassword, Reason: "must not be empty"}
	case m.Server == "":
		return &ConfigurationError{Field: KeyServer, Reason: "must not be empty"}
	case m.Folder == "":
		return &ConfigurationError{Field: KeyFolder, Reason: "must not be empty"}
	}
	return nil
}
