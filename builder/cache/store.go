package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// ErrNotFound is returned when a hash has no stored artifact
var ErrNotFound = errors.New("artifact not found")

const (
	extRaw = ".raw"
	extZst = ".zst"
)

// Store provides content-addressed file storage with two-tier sharding
type Store struct {
	basePath string
	encoder  *zstd.Encoder
	decoder  *zstd.Decoder
}

// NewStore creates a new content-addressed store
func NewStore(basePath string) (*Store, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	return &Store{
		basePath: basePath,
		encoder:  encoder,
		decoder:  decoder,
	}, nil
}

// Close releases resources
func (s *Store) Close() error {
	_ = s.encoder.Close()
	s.decoder.Close()
	return nil
}

// shardPath computes the two-tier shard path: hash[0:2]/hash[2:4]/hash
func (s *Store) shardPath(category string, hash string) string {
	if len(hash) < 4 {
		return filepath.Join(s.basePath, category, hash)
	}
	return filepath.Join(s.basePath, category, hash[0:2], hash[2:4], hash)
}

// Put stores content and returns its hash. Small artifacts are kept raw.
func (s *Store) Put(category string, content []byte) (string, error) {
	hash := HashContent(content)

	ext, data := extRaw, content
	if len(content) >= RawThreshold {
		ext, data = extZst, s.encoder.EncodeAll(content, nil)
	}
	path := s.shardPath(category, hash) + ext

	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// Atomic write: .tmp -> fsync -> rename
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to write content: %w", err)
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename file: %w", err)
	}

	return hash, nil
}

// Get retrieves content by hash and verifies it against the hash
func (s *Store) Get(category string, hash string) ([]byte, error) {
	base := s.shardPath(category, hash)

	data, err := os.ReadFile(base + extRaw)
	if errors.Is(err, os.ErrNotExist) {
		var compressed []byte
		compressed, err = os.ReadFile(base + extZst)
		if err == nil {
			data, err = s.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("failed to decompress %s: %w", hash, err)
			}
		}
	}
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", hash, err)
	}

	if got := HashContent(data); got != hash {
		return nil, fmt.Errorf("artifact %s is corrupt (hash %s)", hash, got)
	}
	return data, nil
}

// Exists checks if a hash exists in the store
func (s *Store) Exists(category string, hash string) bool {
	base := s.shardPath(category, hash)
	for _, ext := range []string{extRaw, extZst} {
		if _, err := os.Stat(base + ext); err == nil {
			return true
		}
	}
	return false
}

// Delete removes a hash from the store
func (s *Store) Delete(category string, hash string) error {
	base := s.shardPath(category, hash)
	for _, ext := range []string{extRaw, extZst} {
		if err := os.Remove(base + ext); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to delete artifact %s: %w", hash, err)
		}
	}
	return nil
}
