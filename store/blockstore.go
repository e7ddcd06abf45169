package store

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/db"
	"github.com/mezonai/powchain/interfaces"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/utils"
)

// BlockStore is the append-only block storage. Blocks are looked up by hash;
// nothing is ever updated or deleted once added.
type BlockStore interface {
	interfaces.BlockReader
	HasBlock(hash block.Hash) bool
	AddBlock(b *block.Block) error
	Frontier() *block.Block
	SetFrontier(hash block.Hash) error
	Count() uint64
	// ForEachBlock visits every stored block, side chains included, in key
	// order. fn returns false to stop.
	ForEachBlock(fn func(b *block.Block) bool) error
	MustClose()
}

// GenericBlockStore is a database-agnostic implementation that uses DatabaseProvider
// This allows it to work with any database backend (LevelDB, bbolt, ...)
type GenericBlockStore struct {
	provider db.DatabaseProvider
	mu       sync.RWMutex
	frontier block.Hash
	count    uint64
}

// NewGenericBlockStore creates a new generic block store with the given provider
func NewGenericBlockStore(provider db.DatabaseProvider) (*GenericBlockStore, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}

	s := &GenericBlockStore{provider: provider}
	if err := s.loadMeta(); err != nil {
		return nil, errors.Wrap(err, "failed to load metadata")
	}
	return s, nil
}

func (s *GenericBlockStore) loadMeta() error {
	value, err := s.provider.Get(metaKey(BlockMetaKeyFrontier))
	if err != nil {
		return errors.Wrap(err, "failed to get frontier")
	}
	s.frontier = block.Hash(value)

	value, err = s.provider.Get(metaKey(BlockMetaKeyCount))
	if err != nil {
		return errors.Wrap(err, "failed to get block count")
	}
	if value == nil {
		s.count = 0
		return nil
	}
	if len(value) != 8 {
		return fmt.Errorf("invalid block count value length: %d", len(value))
	}
	s.count = binary.BigEndian.Uint64(value)
	return nil
}

func blockKey(hash block.Hash) []byte {
	return []byte(PrefixBlock + string(hash))
}

func metaKey(name string) []byte {
	return []byte(PrefixBlockMeta + name)
}

// Block retrieves a block by hash, nil if absent or unreadable.
func (s *GenericBlockStore) Block(hash block.Hash) *block.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockLocked(hash)
}

func (s *GenericBlockStore) blockLocked(hash block.Hash) *block.Block {
	if hash == "" {
		return nil
	}
	value, err := s.provider.Get(blockKey(hash))
	if err != nil {
		logx.Error("BLOCKSTORE", "Failed to get block ", utils.ShortenLog(string(hash)), " error: ", err)
		return nil
	}
	if value == nil {
		return nil
	}

	blk, err := block.Decode(value)
	if err != nil {
		logx.Error("BLOCKSTORE", "Failed to decode block ", utils.ShortenLog(string(hash)), " error: ", err)
		return nil
	}
	return blk
}

func (s *GenericBlockStore) HasBlock(hash block.Hash) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exists, err := s.provider.Has(blockKey(hash))
	if err != nil {
		logx.Error("BLOCKSTORE", "Failed to check block existence ", utils.ShortenLog(string(hash)), " error: ", err)
		return false
	}
	return exists
}

// AddBlock stores b under its hash. Adding a hash twice is an error.
func (s *GenericBlockStore) AddBlock(b *block.Block) error {
	if b == nil {
		return fmt.Errorf("block cannot be nil")
	}
	if b.Hash == "" {
		return fmt.Errorf("block %d has no hash", b.Index)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := blockKey(b.Hash)
	exists, err := s.provider.Has(key)
	if err != nil {
		return errors.Wrap(err, "failed to check block existence")
	}
	if exists {
		return fmt.Errorf("block %s already exists", b.Hash)
	}

	value, err := block.Encode(b)
	if err != nil {
		return errors.Wrap(err, "failed to encode block")
	}
	countValue := make([]byte, 8)
	binary.BigEndian.PutUint64(countValue, s.count+1)

	batch := s.provider.Batch()
	defer batch.Close()
	batch.Put(key, value)
	batch.Put(metaKey(BlockMetaKeyCount), countValue)
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "failed to store block")
	}
	s.count++

	logx.Info("BLOCKSTORE", fmt.Sprintf("Added block index=%d hash=%s", b.Index, utils.ShortenLog(string(b.Hash))))
	return nil
}

// Frontier returns the head of the heaviest chain, nil before genesis.
func (s *GenericBlockStore) Frontier() *block.Block {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockLocked(s.frontier)
}

// SetFrontier moves the head pointer to an already stored block.
func (s *GenericBlockStore) SetFrontier(hash block.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.provider.Has(blockKey(hash))
	if err != nil {
		return errors.Wrap(err, "failed to check block existence")
	}
	if !exists {
		return fmt.Errorf("block %s does not exist", hash)
	}
	if err := s.provider.Put(metaKey(BlockMetaKeyFrontier), []byte(hash)); err != nil {
		return errors.Wrap(err, "failed to update frontier")
	}
	s.frontier = hash
	return nil
}

func (s *GenericBlockStore) Count() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

func (s *GenericBlockStore) ForEachBlock(fn func(b *block.Block) bool) error {
	iterable, ok := s.provider.(db.IterableProvider)
	if !ok {
		return fmt.Errorf("provider does not support iteration")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var decodeErr error
	err := iterable.IteratePrefix([]byte(PrefixBlock), func(key, value []byte) bool {
		blk, err := block.Decode(value)
		if err != nil {
			decodeErr = errors.Wrapf(err, "failed to decode %s", key)
			return false
		}
		return fn(blk)
	})
	if err != nil {
		return errors.Wrap(err, "failed to iterate blocks")
	}
	return decodeErr
}

// MustClose closes the underlying database provider
func (s *GenericBlockStore) MustClose() {
	if err := s.provider.Close(); err != nil {
		logx.Error("BLOCKSTORE", "Failed to close provider: ", err)
	}
}
