package securestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Samuel-SouzaZz/devquest/internal/cryptox"
)

// FileStorage keeps secrets in a single JSON file whose values are sealed
// with AES-GCM. The sealing key is stretched (argon2id) from a random
// machine-local secret created 0600 on first use next to the store file.
// It stands in for platform secure storage on targets without one.
type FileStorage struct {
	path    string
	keyPath string

	mu sync.Mutex
}

type sealedValue struct {
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

type fileContents struct {
	Salt   []byte                 `json:"salt"`
	Values map[string]sealedValue `json:"values"`
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path, keyPath: path + ".key"}
}

func (s *FileStorage) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return nil, err
	}

	sealed, ok := contents.Values[key]
	if !ok {
		return nil, nil
	}

	aesKey, err := s.sealKey(contents.Salt)
	if err != nil {
		return nil, err
	}

	plain, err := cryptox.Open(sealed.Ciphertext, sealed.Nonce, aesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to open sealed value [%s]: %w", key, err)
	}
	return plain, nil
}

func (s *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return err
	}

	aesKey, err := s.sealKey(contents.Salt)
	if err != nil {
		return err
	}

	ciphertext, nonce, err := cryptox.Seal(value, aesKey)
	if err != nil {
		return fmt.Errorf("failed to seal value [%s]: %w", key, err)
	}

	contents.Values[key] = sealedValue{Nonce: nonce, Ciphertext: ciphertext}
	return s.save(contents)
}

func (s *FileStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := contents.Values[key]; !ok {
		return nil
	}

	delete(contents.Values, key)
	return s.save(contents)
}

func (s *FileStorage) load() (*fileContents, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &fileContents{Salt: cryptox.RandBytes(16), Values: map[string]sealedValue{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	var contents fileContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}
	if contents.Values == nil {
		contents.Values = map[string]sealedValue{}
	}
	return &contents, nil
}

func (s *FileStorage) save(contents *fileContents) error {
	data, err := json.Marshal(contents)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// sealKey loads (creating on first use) the machine-local secret and
// stretches it into the AES key for this store.
func (s *FileStorage) sealKey(salt []byte) ([]byte, error) {
	secret, err := os.ReadFile(s.keyPath)
	if os.IsNotExist(err) {
		secret = cryptox.RandBytes(32)
		if err := os.WriteFile(s.keyPath, secret, 0o600); err != nil {
			return nil, fmt.Errorf("failed to write key file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	return cryptox.DeriveKey(secret, salt), nil
}
