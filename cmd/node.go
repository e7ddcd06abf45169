package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mezonai/powchain/config"
	"github.com/mezonai/powchain/events"
	"github.com/mezonai/powchain/jsonx"
	"github.com/mezonai/powchain/ledger"
	"github.com/mezonai/powchain/monitoring"
	"github.com/mezonai/powchain/pow"
	"github.com/mezonai/powchain/service"
	"github.com/mezonai/powchain/store"
	"github.com/mezonai/powchain/utils"
	"github.com/mezonai/powchain/validator"
)

// node is the wiring shared by every command.
type node struct {
	cfg     *config.NodeConfig
	powCfg  *config.PowConfig
	store   store.BlockStore
	bus     *events.EventBus
	service *service.BlockService
	health  *service.HealthServiceImpl
}

func openNode() (*node, error) {
	cfg, err := config.LoadNodeConfig(nodeConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load node config: %w", err)
	}
	powCfg, err := config.LoadPowConfig(powConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load pow config: %w", err)
	}

	monitoring.InitMetrics()

	if cfg.Store.Type != store.MemoryStoreType {
		if err := os.MkdirAll(cfg.Store.Directory, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}
	bs, err := store.CreateBlockStore(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open block store: %w", err)
	}

	clock := utils.SystemClock{}
	bus := events.NewEventBus()
	svc := service.NewBlockService(
		bs,
		validator.NewValidator(bs, clock, powCfg.ValidatorConfig()),
		ledger.NewDifficultyLedger(bs),
		pow.NewMiner(powCfg.Workers),
		clock,
		bus,
	)

	return &node{
		cfg:     cfg,
		powCfg:  powCfg,
		store:   bs,
		bus:     bus,
		service: svc,
		health:  service.NewHealthService(bs),
	}, nil
}

func (n *node) close() {
	n.store.MustClose()
}

// diffBits resolves an explicit difficulty, falling back to the configured
// default when none was given.
func (n *node) diffBits(explicit *uint32) uint32 {
	if explicit != nil {
		return *explicit
	}
	return n.powCfg.DefaultDiffBits
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := jsonx.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
