package vault

//go:generate mockgen -source=storage.go -destination=mock/storage_mock.go -package=mock

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// AccountsFileName is the file FileStorage keeps inside its directory.
const AccountsFileName = "accounts.csv"

// Storage persists the serialized vault as a whole.
type Storage interface {
	// Read returns the persisted text. A vault that was never written reads
	// as the empty string.
	Read(ctx context.Context) (string, error)

	// Write replaces the persisted text with text.
	Write(ctx context.Context, text string) error
}

// FileStorage keeps the vault in Dir/accounts.csv.
type FileStorage struct {
	Dir string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{Dir: dir}
}

func (s *FileStorage) Path() string {
	return filepath.Join(s.Dir, AccountsFileName)
}

func (s *FileStorage) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.Path(), err)
	}
	return string(data), nil
}

func (s *FileStorage) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	if err := atomicWriteFile(s.Path(), []byte(text), 0600); err != nil {
		return fmt.Errorf("write %s: %w", s.Path(), err)
	}
	return nil
}

func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmpPath := filepath.Join(dir, ".accounts-"+uuid.NewString()+".tmp")
	tmpFile, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	// The mode must be final before the rename; OpenFile applies the umask.
	if err := tmpFile.Chmod(perm); err != nil {
		return err
	}
	if _, err := tmpFile.Write(data); err != nil {
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	_ = syncDir(dir)
	return nil
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
