package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "MMDL10N"

// Loader merges defaults, the config file, environment and flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment bindings.
func NewLoader(userConfig string) *Loader {
	v := viper.New()

	v.SetDefault("koji_url", DefaultKojiURL)
	v.SetDefault("branch", DefaultBranch)
	v.SetDefault("debug", false)
	v.SetDefault("zanata.url", DefaultZanataURL)
	v.SetDefault("zanata.project", DefaultProject)
	v.SetDefault("zanata.document", DefaultDocument)
	v.SetDefault("zanata.user_config", userConfig)
	v.SetDefault("zanata.cli", DefaultZanataCLI)
	v.SetDefault("cache.url", "")
	v.SetDefault("cache.ttl", DefaultCacheTTL)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

// BindFlag lets an explicitly set flag override key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// FindConfigFile returns dir/.mmdl10n.yaml if it exists, or "".
func FindConfigFile(dir string) string {
	path := filepath.Join(dir, FileName)
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}

// Load reads configFile, or the project file in the working directory when
// configFile is empty. A missing project file is not an error; a missing
// explicit file is.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		if wd, err := os.Getwd(); err == nil {
			configFile = FindConfigFile(wd)
		}
	}

	if configFile != "" {
		l.v.SetConfigFile(configFile)
		l.v.SetConfigType("yaml")
		if err := l.v.ReadInConfig(); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s does not exist", configFile)
			}
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ConfigFileUsed returns the file Load read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}
