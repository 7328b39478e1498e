package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/existflow/todoisland/internal/db"
	"github.com/existflow/todoisland/internal/model"
)

// Keys of the two persisted entries. They are written and erased together.
const (
	KeyToken = "auth_token"
	KeyUser  = "auth_user"
)

// Record is the persisted credential record
type Record struct {
	Token string
	User  *model.User
}

// CredentialStore persists the credential record. Only Store calls it.
type CredentialStore interface {
	// Load returns the record, or a zero Record when none is stored
	Load() (Record, error)
	Save(rec Record) error
	Clear() error
}

// decodeRecord builds a Record from the raw entries. A user entry that does
// not parse is dropped; the token stays authoritative.
func decodeRecord(token string, rawUser []byte) Record {
	rec := Record{Token: token}
	if token == "" {
		return Record{}
	}
	if len(rawUser) > 0 && string(rawUser) != "null" {
		var u model.User
		if err := json.Unmarshal(rawUser, &u); err == nil {
			rec.User = &u
		}
	}
	return rec
}

// FileStore keeps the record in a JSON file readable only by the owner
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileRecord struct {
	Token string          `json:"auth_token"`
	User  json.RawMessage `json:"auth_user,omitempty"`
}

// NewFileStore creates a store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultFilePath returns ~/.todoisland/session.json
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".todoisland", "session.json"), nil
}

// Path returns the file location
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Load() (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var fr fileRecord
	if err := json.Unmarshal(data, &fr); err != nil {
		return Record{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	return decodeRecord(fr.Token, fr.User), nil
}

// Save writes to a temporary file and renames it over the old one
func (f *FileStore) Save(rec Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	userJSON, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	data, err := json.MarshalIndent(fileRecord{Token: rec.Token, User: userJSON}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// SQLiteStore keeps the record in the key-value table of internal/db
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a store on an open database
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Load() (Record, error) {
	ctx := context.Background()
	token, ok, err := s.db.Get(ctx, KeyToken)
	if err != nil || !ok {
		return Record{}, err
	}
	rawUser, _, err := s.db.Get(ctx, KeyUser)
	if err != nil {
		return Record{}, err
	}
	return decodeRecord(token, []byte(rawUser)), nil
}

func (s *SQLiteStore) Save(rec Record) error {
	userJSON, err := json.Marshal(rec.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.db.SetAll(context.Background(), map[string]string{
		KeyToken: rec.Token,
		KeyUser:  string(userJSON),
	})
}

func (s *SQLiteStore) Clear() error {
	return s.db.DeleteAll(context.Background(), KeyToken, KeyUser)
}

// MemoryStore keeps the record in process memory
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]string

	// SaveErr and ClearErr, when set, are returned instead of writing
	SaveErr  error
	ClearErr error
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

func (m *MemoryStore) Load() (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeRecord(m.entries[KeyToken], []byte(m.entries[KeyUser])), nil
}

func (m *MemoryStore) Save(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	userJSON, err := json.Marshal(rec.User)
	if err != nil {
		return err
	}
	m.entries[KeyToken] = rec.Token
	m.entries[KeyUser] = string(userJSON)
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	delete(m.entries, KeyToken)
	delete(m.entries, KeyUser)
	return nil
}

// Entries returns a copy of the raw stored entries
func (m *MemoryStore) Entries() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.entries))
	for k, v := range m.entries {
		out[k] = v
	}
	return out
}
