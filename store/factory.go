package store

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mezonai/powchain/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// BoltStoreType uses the bbolt implementation
	BoltStoreType StoreType = "bolt"

	// MemoryStoreType keeps LevelDB in memory, for tests and throwaway nodes
	MemoryStoreType StoreType = "memory"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	Type StoreType `json:"type" yaml:"type"`

	// Directory is the database directory path (ignored for memory)
	Directory string `json:"directory" yaml:"directory"`
}

func (sc *StoreConfig) Validate() error {
	if sc.Type == "" {
		return fmt.Errorf("store type cannot be empty")
	}

	switch sc.Type {
	case LevelDBStoreType, BoltStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty")
		}
		return nil
	case MemoryStoreType:
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// CreateProvider creates a database provider based on the configuration
func CreateProvider(config *StoreConfig) (db.DatabaseProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)
	case BoltStoreType:
		return db.NewBoltProvider(config.Directory)
	case MemoryStoreType:
		return db.NewMemLevelDBProvider()
	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}

// CreateBlockStore opens the configured backend and wraps it in a block store.
func CreateBlockStore(config *StoreConfig) (BlockStore, error) {
	provider, err := CreateProvider(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create provider")
	}
	bs, err := NewGenericBlockStore(provider)
	if err != nil {
		_ = provider.Close()
		return nil, errors.Wrap(err, "failed to create block store")
	}
	return bs, nil
}
