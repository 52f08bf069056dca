// Package persist defines the persistence gateway for board files and the
// debounced saver that drives it. Backends live in subpackages and are
// selected through the STORAGE_TYPE environment variable.
package persist

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"drawboard/internal/document"
	"drawboard/internal/persist/filesystem"
	"drawboard/internal/persist/memory"
	"drawboard/internal/persist/sqlite"
)

// Gateway durably stores and retrieves the whole document set. Load always
// yields a usable board file: legacy and malformed payloads are coerced, not
// rejected.
type Gateway interface {
	Load(ctx context.Context) (*document.BoardFile, error)
	Save(ctx context.Context, bf *document.BoardFile) error
}

// GetGateway selects a backend from the environment.
func GetGateway() Gateway {
	storageType := os.Getenv("STORAGE_TYPE")
	var gw Gateway

	storageField := logrus.Fields{
		"storageType": storageType,
	}

	switch storageType {
	case "filesystem":
		basePath := os.Getenv("LOCAL_STORAGE_PATH")
		if basePath == "" {
			basePath = "./data"
		}
		storageField["basePath"] = basePath
		gw = filesystem.NewStore(basePath)
	case "sqlite":
		dataSourceName := os.Getenv("DATA_SOURCE_NAME")
		if dataSourceName == "" {
			dataSourceName = "drawboard.db"
		}
		storageField["dataSourceName"] = dataSourceName
		gw = sqlite.NewStore(dataSourceName)
	default:
		gw = memory.NewStore()
		storageField["storageType"] = "in-memory"
	}
	logrus.WithFields(storageField).Info("Use storage")
	return gw
}
