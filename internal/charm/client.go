// ABOUTME: Charm KV connection for mirroring the record store to the cloud
// ABOUTME: Auth is by SSH key through the charm client; no passwords involved
package charm

import (
	"fmt"
	"os"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
)

// DefaultHost is used when no host is configured
const DefaultHost = "cloud.charm.sh"

// KV is the subset of charm's key-value database the mirror needs
type KV interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Close() error
}

// Config holds charm connection settings
type Config struct {
	Host   string
	DBName string
}

// OpenKV opens the named charm KV database on cfg.Host
func OpenKV(cfg Config) (KV, error) {
	host := cfg.Host
	if host == "" {
		host = DefaultHost
	}
	// charm reads its host from the environment
	if err := os.Setenv("CHARM_HOST", host); err != nil {
		return nil, fmt.Errorf("failed to set CHARM_HOST: %w", err)
	}

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv %q: %w", cfg.DBName, err)
	}
	return db, nil
}

// UserID returns the charm account ID for this machine's key
func UserID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// AuthorizedKeys lists the keys linked to the charm account
func AuthorizedKeys() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.AuthorizedKeys()
}
