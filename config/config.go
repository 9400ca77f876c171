// Package config holds the settings shared by every mmdl10n command.
//
// Values come from, in increasing priority: built-in defaults, a
// .mmdl10n.yaml file, MMDL10N_* environment variables and command-line
// flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// FileName is the project configuration file looked up in the working
// directory.
const FileName = ".mmdl10n.yaml"

// Defaults for the Fedora infrastructure.
const (
	DefaultKojiURL   = "https://koji.fedoraproject.org/kojihub"
	DefaultBranch    = "rawhide"
	DefaultZanataURL = "https://fedora.zanata.org"
	DefaultProject   = "fedora-modularity-translations"
	DefaultDocument  = "fedora-modularity-translations"
	DefaultZanataCLI = "/usr/bin/zanata-cli"
	DefaultCacheTTL  = time.Hour
)

// Config is the resolved configuration.
type Config struct {
	KojiURL string `mapstructure:"koji_url"`
	// Branch is a release such as "f31", or "rawhide".
	Branch string `mapstructure:"branch"`
	Debug  bool   `mapstructure:"debug"`
	Zanata Zanata `mapstructure:"zanata"`
	Cache  Cache  `mapstructure:"cache"`
}

// Zanata configures the translation service.
type Zanata struct {
	URL        string `mapstructure:"url"`
	Project    string `mapstructure:"project"`
	Document   string `mapstructure:"document"`
	UserConfig string `mapstructure:"user_config"`
	CLI        string `mapstructure:"cli"`
}

// Cache configures the catalog cache shared between runs. An empty URL
// disables it; otherwise it is a redis:// or rediss:// URL.
type Cache struct {
	URL string        `mapstructure:"url"`
	TTL time.Duration `mapstructure:"ttl"`
}

// TemplateFile is the name of the extracted template, "<document>.pot".
func (c *Config) TemplateFile() string {
	return c.Zanata.Document + ".pot"
}

// TranslationsFile is the name of the generated translations YAML,
// "<document>-<branch>.yaml".
func (c *Config) TranslationsFile(branch string) string {
	return fmt.Sprintf("%s-%s.yaml", c.Zanata.Document, branch)
}

// Validate checks the values every command depends on.
func (c *Config) Validate() error {
	var errs []error
	for name, raw := range map[string]string{"koji_url": c.KojiURL, "zanata.url": c.Zanata.URL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s: invalid URL %q", name, raw))
		}
	}
	if c.Branch == "" {
		errs = append(errs, errors.New("branch must not be empty"))
	}
	if c.Zanata.Project == "" {
		errs = append(errs, errors.New("zanata.project must not be empty"))
	}
	if c.Zanata.Document == "" {
		errs = append(errs, errors.New("zanata.document must not be empty"))
	}
	if c.Cache.URL != "" {
		u, err := url.Parse(c.Cache.URL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			errs = append(errs, fmt.Errorf("cache.url: %q is not a redis:// URL", c.Cache.URL))
		}
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, errors.New("cache.ttl must not be negative"))
	}
	return errors.Join(errs...)
}
