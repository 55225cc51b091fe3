// Package config manages the ~/.minish directory: the YAML configuration,
// the history database, and the session event log.
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	HistoryDBName     = "history.db"
	EventLogName      = "events.log"
	DefaultDirName    = ".minish"
)

type Configuration struct {
	configFs afero.Fs
	dir      string

	// Motd is printed once before the first prompt. Empty disables it.
	Motd string `json:"motd"`

	// MaxBackgroundJobs bounds how many unfinished background children the
	// shell tracks at once.
	MaxBackgroundJobs int `json:"max_background_jobs" validate:"gte=1"`

	// HistoryLimit is the default number of entries the history builtin
	// shows.
	HistoryLimit int `json:"history_limit" validate:"gte=0"`

	// LogCommands records session events to the event log when true.
	LogCommands bool `json:"log_commands"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	return c.configFs
}

// Dir returns the directory the configuration was loaded from.
func (c *Configuration) Dir() string {
	return c.dir
}

// HistoryDBPath returns the path of the SQLite history database.
func (c *Configuration) HistoryDBPath() string {
	return filepath.Join(c.dir, HistoryDBName)
}

// OpenEventLog opens the session event log in an append only state.
func (c *Configuration) OpenEventLog() (afero.File, error) {
	return c.fs().OpenFile(EventLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadEventLog opens the session event log for reading.
func (c *Configuration) ReadEventLog() (afero.File, error) {
	return c.fs().OpenFile(EventLogName, os.O_RDONLY, 0600)
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, DefaultDirName)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
