package auth

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// storeFile is the JSON file name for the credential store
const storeFile = "credentials.json"

//go:embed store.schema.json
var storeSchemaJSON []byte

var (
	storeSchemaOnce sync.Once
	storeSchema     *jsonschema.Schema
	storeSchemaErr  error
)

func compiledStoreSchema() (*jsonschema.Schema, error) {
	storeSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(storeSchemaJSON))
		if err != nil {
			storeSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("store.schema.json", doc); err != nil {
			storeSchemaErr = err
			return
		}
		storeSchema, storeSchemaErr = c.Compile("store.schema.json")
	})
	return storeSchema, storeSchemaErr
}

// Store is the on-disk credential store for one user: provider name to
// account label to record. It remembers the path it was loaded from so a
// single command invocation can load, mutate and save the same file.
type Store struct {
	Providers map[string]map[string]*Record `json:"providers"`

	path string
}

// DefaultStorePath returns ~/.skillauth/credentials.json, or the value of
// SKILLAUTH_STORE when set.
func DefaultStorePath() (string, error) {
	if p := os.Getenv("SKILLAUTH_STORE"); p != "" {
		return p, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".skillauth", storeFile), nil
}

// Load reads the store at path. A missing file yields an empty store; a file
// that exists but is malformed or fails schema validation yields
// ErrCorruptStore.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Store{Providers: map[string]map[string]*Record{}, path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store %s: %w", path, err)
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid JSON: %v (inspect or delete the file)", ErrCorruptStore, path, err)
	}
	schema, err := compiledStoreSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile store schema: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return nil, fmt.Errorf("%w: %s failed validation: %v (inspect or delete the file)", ErrCorruptStore, path, err)
	}

	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s: %v", ErrCorruptStore, path, err)
	}
	if store.Providers == nil {
		store.Providers = map[string]map[string]*Record{}
	}
	store.path = path
	return &store, nil
}

// Save writes the store back to the path it was loaded from. The write goes
// to a temporary file in the same directory followed by a rename, so a crash
// mid-save leaves the prior version intact. The file is owner read/write only.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}
	data = append(data, '\n')

	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write store %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		return fmt.Errorf("failed to restrict permissions on %s: %w", s.path, err)
	}
	return nil
}

// Path returns the file the store was loaded from.
func (s *Store) Path() string {
	return s.path
}
