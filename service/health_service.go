package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mezonai/powchain/interfaces"
	"github.com/mezonai/powchain/store"
)

type HealthServiceImpl struct {
	blockStore store.BlockStore
	startedAt  time.Time
}

func NewHealthService(bs store.BlockStore) *HealthServiceImpl {
	return &HealthServiceImpl{blockStore: bs, startedAt: time.Now()}
}

// Check reports serving once the chain has a frontier.
func (hs *HealthServiceImpl) Check(ctx context.Context) (*interfaces.HealthStatus, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("health check: %w", ctx.Err())
	default:
	}

	status := &interfaces.HealthStatus{Uptime: time.Since(hs.startedAt)}
	if hs.blockStore == nil {
		return status, nil
	}

	status.BlockCount = hs.blockStore.Count()
	if frontier := hs.blockStore.Frontier(); frontier != nil {
		status.Serving = true
		status.Height = frontier.Index
		status.FrontierHash = string(frontier.Hash)
		status.AccDiff = frontier.AccDiff
	}
	return status, nil
}
