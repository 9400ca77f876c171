package zanata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-ini/ini"
)

// Credentials identify a Zanata user.
type Credentials struct {
	Username string
	Key      string
}

// DefaultUserConfig returns ~/.config/zanata.ini.
func DefaultUserConfig() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "~"
	}
	return filepath.Join(home, ".config", "zanata.ini")
}

// LoadUserConfig reads the credentials for serverURL from a zanata-cli user
// config. Servers are listed in the [servers] section as
// <prefix>.url, <prefix>.username and <prefix>.key. A config without a
// matching server yields nil credentials.
func LoadUserConfig(path, serverURL string) (*Credentials, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("reading zanata user config: %w", err)
	}

	want := normalizeURL(serverURL)
	servers := cfg.Section("servers")
	for _, key := range servers.Keys() {
		prefix, ok := strings.CutSuffix(key.Name(), ".url")
		if !ok || normalizeURL(key.String()) != want {
			continue
		}
		return &Credentials{
			Username: servers.Key(prefix + ".username").String(),
			Key:      servers.Key(prefix + ".key").String(),
		}, nil
	}
	return nil, nil
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
