package interfaces

import (
	"context"
	"time"
)

// HealthStatus is a snapshot of the node's chain state.
type HealthStatus struct {
	Serving      bool          `json:"serving"`
	Height       uint32        `json:"height"`
	FrontierHash string        `json:"frontier_hash"`
	AccDiff      uint64        `json:"acc_diff"`
	BlockCount   uint64        `json:"block_count"`
	Uptime       time.Duration `json:"uptime_ns"`
}

type HealthService interface {
	Check(ctx context.Context) (*HealthStatus, error)
}
