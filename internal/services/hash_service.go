package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// ContentHashReader computes the SHA-256 digest of everything readable from r
// and returns it hex-encoded. Streaming, so large uploads never need to be
// buffered in memory.
func ContentHashReader(r io.Reader) (string, error) {
	hash := sha256.New()
	if _, err := io.Copy(hash, r); err != nil {
		return "", fmt.Errorf("failed to hash content: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// ContentHashBytes computes the hex-encoded SHA-256 digest of data.
func ContentHashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashStoredFile re-reads a stored blob from disk and computes its content
// hash. Used by the download path to detect storage-side tampering.
func HashStoredFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open stored file: %w", err)
	}
	defer file.Close()

	return ContentHashReader(file)
}
