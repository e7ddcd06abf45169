package db

// DatabaseProvider abstracts the key-value backend under the block store so
// LevelDB and bbolt are interchangeable.
type DatabaseProvider interface {
	// Get retrieves a value by key. A missing key yields (nil, nil).
	Get(key []byte) ([]byte, error)

	Put(key, value []byte) error

	Delete(key []byte) error

	Has(key []byte) (bool, error)

	Close() error

	// Batch returns a new batch for atomic operations
	Batch() DatabaseBatch
}

// IterableProvider extends DatabaseProvider with iteration capabilities
type IterableProvider interface {
	DatabaseProvider

	// IteratePrefix visits every pair whose key starts with prefix in key
	// order. The callback returns false to stop.
	IteratePrefix(prefix []byte, callback func(key, value []byte) bool) error
}

// DatabaseBatch provides atomic batch operations
type DatabaseBatch interface {
	Put(key, value []byte)

	Delete(key []byte)

	// Write commits all operations in the batch
	Write() error

	Reset()

	Close()
}
