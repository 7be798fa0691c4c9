package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/AlexZinkM/tron-wallet/internal/model"

	"github.com/rs/zerolog"
)

// DefaultPath is where accounts live, relative to the working directory
var DefaultPath = filepath.Join("config", "accounts.json")

// Store persists the ordered account list as one indented JSON document.
// A single operator process is assumed; there is no file locking.
type Store struct {
	path string
	log  zerolog.Logger
}

// NewStore creates a Store backed by the file at path
func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{
		path: path,
		log:  log.With().Str("module", "vault").Logger(),
	}
}

// Path returns the vault file location
func (s *Store) Path() string {
	return s.path
}

// Load returns all accounts in insertion order.
// It never fails: a missing file is a first run, and an unreadable or
// corrupt file is reported to the log and treated as an empty vault.
// The next Save keeps a corrupt file under a .corrupt-<time> name.
func (s *Store) Load() []model.Account {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.log.Debug().Str("path", s.path).Msg("vault file not found, starting empty")
		} else {
			s.log.Warn().Err(err).Str("path", s.path).Msg("vault file unreadable, treating as empty")
		}
		return []model.Account{}
	}

	accounts, err := decode(data)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Int("size", len(data)).Msg("vault file corrupt, treating as empty")
		return []model.Account{}
	}

	s.log.Debug().Str("path", s.path).Int("accounts", len(accounts)).Msg("vault loaded")
	return accounts
}

// Save overwrites the vault file with accounts.
// The document is written to a temporary file next to the target and renamed over it.
func (s *Store) Save(accounts []model.Account) error {
	if accounts == nil {
		accounts = []model.Account{}
	}

	data, err := Marshal(accounts)
	if err != nil {
		return err
	}

	if err := s.preserveCorrupt(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create vault directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".accounts-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write vault: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set vault permissions: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync vault: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close vault: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace vault file: %w", err)
	}

	s.log.Debug().Str("path", s.path).Int("accounts", len(accounts)).Msg("vault saved")
	return nil
}

// preserveCorrupt renames an undecodable vault file to <path>.corrupt-<time>
// before it is overwritten
func (s *Store) preserveCorrupt() error {
	data, err := os.ReadFile(s.path)
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if _, err := decode(data); err == nil {
		return nil
	}

	backup := fmt.Sprintf("%s.corrupt-%s", s.path, time.Now().UTC().Format("20060102T150405.000000000Z"))
	if err := os.Rename(s.path, backup); err != nil {
		return fmt.Errorf("failed to move corrupt vault aside: %w", err)
	}
	s.log.Warn().Str("path", s.path).Str("backup", backup).Msg("corrupt vault file moved aside")
	return nil
}

func decode(data []byte) ([]model.Account, error) {
	// Skip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var accounts []model.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, err
	}
	if accounts == nil {
		// literal "null"
		accounts = []model.Account{}
	}
	return accounts, nil
}

// Append adds account to the end of the vault and persists the whole vault
func (s *Store) Append(account model.Account) error {
	accounts := s.Load()
	accounts = append(accounts, account)
	return s.Save(accounts)
}

// Marshal renders accounts the way the vault file stores them:
// 4-space indentation, no HTML escaping, no trailing newline.
func Marshal(accounts []model.Account) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(accounts); err != nil {
		return nil, fmt.Errorf("failed to marshal vault: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
