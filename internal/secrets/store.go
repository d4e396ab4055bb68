// Package secrets reads vault-rendered secret files from the local
// filesystem. It never talks to a vault server itself; the files are
// assumed to be kept current by an external agent.
package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrNotFound     = errors.New("secrets file not found")
	ErrInvalidJSON  = errors.New("secrets file is not valid json")
	ErrMissingField = errors.New("missing required field")
)

// Credentials is the contents of <name>.db-role.json.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Connection pairs a connection URL template with the credentials that
// fill its placeholders.
type Connection struct {
	URLTemplate string
	Credentials Credentials
}

// dbConfig is the shape of <name>.db.json.
type dbConfig struct {
	Data struct {
		DBURL string `json:"db_url"`
	} `json:"data"`
}

// Store loads connection secrets for named databases from a directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load reads <dir>/<name>.db.json and <dir>/<name>.db-role.json fresh from
// disk. Nothing is cached; every invocation sees the files as the vault
// agent last rendered them.
func (s *Store) Load(name string) (Connection, error) {
	configPath := filepath.Join(s.dir, name+".db.json")
	rolePath := filepath.Join(s.dir, name+".db-role.json")

	var config dbConfig
	if err := readJSONFile(configPath, &config); err != nil {
		return Connection{}, err
	}
	if config.Data.DBURL == "" {
		return Connection{}, fmt.Errorf("%w: %q in %q", ErrMissingField, "data.db_url", configPath)
	}

	var creds Credentials
	if err := readJSONFile(rolePath, &creds); err != nil {
		return Connection{}, err
	}
	if creds.Username == "" {
		return Connection{}, fmt.Errorf("%w: %q in %q", ErrMissingField, "username", rolePath)
	}
	if creds.Password == "" {
		return Connection{}, fmt.Errorf("%w: %q in %q", ErrMissingField, "password", rolePath)
	}

	return Connection{
		URLTemplate: config.Data.DBURL,
		Credentials: creds,
	}, nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %q: %v", ErrNotFound, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: parse %q: %v", ErrInvalidJSON, path, err)
	}
	return nil
}
