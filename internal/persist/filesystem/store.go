// Package filesystem provides a JSON-file persistence backend.
package filesystem

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"drawboard/internal/document"
)

const boardFileName = "board.json"

type fsStore struct {
	basePath string
}

// NewStore creates a new filesystem-based store.
func NewStore(basePath string) *fsStore {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		log.Fatalf("failed to create base directory: %v", err)
	}
	return &fsStore{basePath: basePath}
}

func (s *fsStore) path() string {
	return filepath.Join(s.basePath, boardFileName)
}

func (s *fsStore) Load(ctx context.Context) (*document.BoardFile, error) {
	filePath := s.path()
	logEntry := logrus.WithField("file_path", filePath)

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			logEntry.Info("No board file yet, starting fresh")
			return document.Normalize(nil), nil
		}
		logEntry.WithError(err).Error("Failed to read board file")
		return nil, err
	}

	return document.Normalize(data), nil
}

func (s *fsStore) Save(ctx context.Context, bf *document.BoardFile) error {
	filePath := s.path()
	logEntry := logrus.WithField("file_path", filePath)

	data, err := json.Marshal(bf)
	if err != nil {
		logEntry.WithError(err).Error("Failed to encode board file")
		return err
	}

	// Write to a temp file and rename so a crash mid-write never truncates
	// the stored board.
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		logEntry.WithError(err).Error("Failed to write board file")
		return err
	}
	if err := os.Rename(tmp, filePath); err != nil {
		logEntry.WithError(err).Error("Failed to replace board file")
		return err
	}
	return nil
}
