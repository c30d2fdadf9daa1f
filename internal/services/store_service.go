package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/shubham4653/aurahealth101-sub000/internal/config"
	"github.com/shubham4653/aurahealth101-sub000/internal/utils"

	"github.com/google/uuid"
	"github.com/kerimovok/go-pkg-utils/errors"
)

// StoreService handles the blob-store side of an upload: validation, writing
// the file to the upload directory and re-reading it for integrity checks.
// The storage pointer it returns is the on-disk path of the stored blob.
type StoreService struct {
	config config.RecordsConfig
}

// NewStoreService creates a new store service instance
func NewStoreService() *StoreService {
	return &StoreService{
		config: config.GetConfig().Records,
	}
}

// ValidateUpload validates the uploaded file and its declared record type
func (s *StoreService) ValidateUpload(file *multipart.FileHeader, recordType string) error {
	maxSize, err := utils.ParseSizeString(s.config.Upload.MaxFileSize)
	if err != nil {
		return errors.InternalError("INVALID_SIZE_LIMIT", fmt.Sprintf("Invalid configured size limit: %s", s.config.Upload.MaxFileSize))
	}
	if file.Size > maxSize {
		return errors.BadRequestError("FILE_TOO_LARGE", fmt.Sprintf("File size exceeds maximum allowed size of %d bytes", maxSize))
	}

	if recordType == "" {
		return errors.BadRequestError("MISSING_RECORD_TYPE", "Record type is required")
	}

	allowed := false
	for _, allowedType := range s.config.Upload.AllowedRecordTypes {
		if recordType == allowedType {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.BadRequestError("INVALID_RECORD_TYPE", fmt.Sprintf("Record type %q is not allowed", recordType))
	}

	return nil
}

// SaveUpload writes the uploaded file under the configured upload directory
// using a generated name, then computes its content hash from the stored
// bytes. Returns the storage pointer and the hex-encoded content hash.
func (s *StoreService) SaveUpload(file *multipart.FileHeader) (string, string, error) {
	storedName := uuid.New().String()
	if ext := utils.GetFileExtensionFromHeader(file); ext != "" {
		storedName += "." + ext
	}
	storagePointer := filepath.Join(s.config.Storage.UploadDir, storedName)

	if s.config.Storage.CreateDirs {
		if err := os.MkdirAll(s.config.Storage.UploadDir, 0755); err != nil {
			return "", "", errors.InternalError("DIR_CREATION_ERROR", fmt.Sprintf("Failed to create upload directory: %v", err))
		}
	}

	dst, err := os.Create(storagePointer)
	if err != nil {
		return "", "", errors.InternalError("FILE_CREATION_ERROR", fmt.Sprintf("Failed to create destination file: %v", err))
	}
	defer dst.Close()

	src, err := file.Open()
	if err != nil {
		return "", "", errors.InternalError("FILE_OPEN_ERROR", fmt.Sprintf("Failed to open source file: %v", err))
	}
	defer src.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", "", errors.InternalError("FILE_COPY_ERROR", fmt.Sprintf("Failed to copy file content: %v", err))
	}

	// Hash the bytes that actually landed on disk, not the request body.
	contentHash, err := HashStoredFile(storagePointer)
	if err != nil {
		return "", "", errors.InternalError("HASH_CALCULATION_ERROR", "Failed to calculate file hash")
	}

	return storagePointer, contentHash, nil
}

// HashStored re-hashes a stored blob by its storage pointer
func (s *StoreService) HashStored(storagePointer string) (string, error) {
	return HashStoredFile(storagePointer)
}

// Exists reports whether a stored blob is still present on disk
func (s *StoreService) Exists(storagePointer string) bool {
	_, err := os.Stat(storagePointer)
	return err == nil
}

// Remove deletes a stored blob. Used to clean up after an upload whose
// registration failed; a missing file is not an error.
func (s *StoreService) Remove(storagePointer string) error {
	if err := os.Remove(storagePointer); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
