package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mezonai/powchain/block"
	"github.com/mezonai/powchain/jsonx"
	"github.com/mezonai/powchain/logx"
	"github.com/mezonai/powchain/store"
)

const (
	DefaultDirectory = "./snapshots"
	FileName         = "snapshot-latest.json"
)

type SnapshotMeta struct {
	Frontier   block.Hash `json:"frontier"`
	Height     uint32     `json:"height"`
	AccDiff    uint64     `json:"acc_diff"`
	BlockCount int        `json:"block_count"`
	CreatedAt  int64      `json:"created_at"`
}

// SnapshotFile holds every stored block, side chains included, ordered by
// index so it can be replayed front to back.
type SnapshotFile struct {
	Meta   SnapshotMeta   `json:"meta"`
	Blocks []*block.Block `json:"blocks"`
}

// Submitter accepts one block into a chain.
type Submitter func(b *block.Block) (*block.Block, error)

// Collect reads every block of bs into a snapshot.
func Collect(bs store.BlockStore) (*SnapshotFile, error) {
	var blocks []*block.Block
	if err := bs.ForEachBlock(func(b *block.Block) bool {
		blocks = append(blocks, b)
		return true
	}); err != nil {
		return nil, fmt.Errorf("iterate blocks: %w", err)
	}
	sort.Slice(blocks, func(i, j int) bool {
		if blocks[i].Index != blocks[j].Index {
			return blocks[i].Index < blocks[j].Index
		}
		return blocks[i].Hash < blocks[j].Hash
	})

	meta := SnapshotMeta{BlockCount: len(blocks), CreatedAt: time.Now().Unix()}
	if frontier := bs.Frontier(); frontier != nil {
		meta.Frontier = frontier.Hash
		meta.Height = frontier.Index
		meta.AccDiff = frontier.AccDiff
	}
	return &SnapshotFile{Meta: meta, Blocks: blocks}, nil
}

// WriteSnapshot writes a full snapshot of bs to dir/snapshot-latest.json and
// removes any older snapshot files there.
func WriteSnapshot(dir string, bs store.BlockStore) (string, error) {
	file, err := Collect(bs)
	if err != nil {
		return "", err
	}

	data, err := jsonx.MarshalIndent(file, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("mkdir snapshot dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot file: %w", err)
	}

	if err := cleanupOldSnapshots(dir, path); err != nil {
		logx.Error("SNAPSHOT", "Failed to cleanup old snapshots:", err)
	}
	logx.Info("SNAPSHOT", fmt.Sprintf("Wrote %d blocks to %s", file.Meta.BlockCount, path))
	return path, nil
}

// ReadSnapshot loads a snapshot file from disk
func ReadSnapshot(path string) (*SnapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s SnapshotFile
	if err := jsonx.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(s.Blocks) != s.Meta.BlockCount {
		return nil, fmt.Errorf("snapshot lists %d blocks, meta says %d", len(s.Blocks), s.Meta.BlockCount)
	}
	return &s, nil
}

// Restore replays the snapshot through submit in index order, so every block
// is validated and stamped again rather than trusted. Blocks submit reports
// as duplicates are skipped. It returns how many blocks were added.
func Restore(s *SnapshotFile, submit Submitter, isDuplicate func(error) bool) (int, error) {
	blocks := make([]*block.Block, len(s.Blocks))
	copy(blocks, s.Blocks)
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Index < blocks[j].Index })

	added := 0
	for _, b := range blocks {
		if _, err := submit(b); err != nil {
			if isDuplicate != nil && isDuplicate(err) {
				continue
			}
			return added, fmt.Errorf("restore block %d (%s): %w", b.Index, b.Hash, err)
		}
		added++
	}
	logx.Info("SNAPSHOT", fmt.Sprintf("Restored %d of %d blocks", added, len(blocks)))
	return added, nil
}

// RestoreTarget is a sanity check run after Restore: the restored chain must
// end where the snapshot's did.
func RestoreTarget(s *SnapshotFile, frontier *block.Block) error {
	if s.Meta.Frontier == "" {
		return nil
	}
	if frontier == nil {
		return errors.New("no frontier after restore")
	}
	if frontier.AccDiff < s.Meta.AccDiff {
		return fmt.Errorf("restored acc_diff %d below snapshot %d", frontier.AccDiff, s.Meta.AccDiff)
	}
	return nil
}

func cleanupOldSnapshots(dir, latestPath string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read snapshot dir: %w", err)
	}

	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, file.Name())
		if path == latestPath {
			continue
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}
