// Package npcflow provides a top-level convenience entry point that wires a
// conversation service, presentation coordinator, and optional augmentation
// client together from one config.
//
// Usage:
//
//	import "github.com/BaSui01/npcflow"
//
//	db, _ := content.Load("conversations.yaml")
//	rt, err := npcflow.New(config.DefaultConfig(), db, logger)
//	rt.Service.Start("npc_intro")
//	rt.Coordinator.Advance()
//
// Hosts with their own wiring needs can assemble the same pieces from the
// service, presenter, and augment packages directly; this package adds no
// behavior of its own.
package npcflow

import (
	"go.uber.org/zap"

	"github.com/BaSui01/npcflow/augment"
	"github.com/BaSui01/npcflow/config"
	"github.com/BaSui01/npcflow/presenter"
	"github.com/BaSui01/npcflow/service"
	"github.com/BaSui01/npcflow/types"
)

// Runtime bundles one assembled conversation stack.
type Runtime struct {
	Service     *service.Service
	Coordinator *presenter.Coordinator
	// Client is nil when augmentation is disabled.
	Client *augment.Client
}

// New builds a Runtime from cfg and an already loaded database.
func New(cfg *config.Config, db *types.Database, logger *zap.Logger, opts ...augment.Option) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	svc := service.NewService(logger)
	if err := svc.Reload(db); err != nil {
		return nil, err
	}

	var client *augment.Client
	var gen presenter.Generator
	if cfg.Augment.Enabled {
		client = augment.NewClient(augment.Config{
			BaseURL:     cfg.Augment.BaseURL,
			APIKey:      cfg.Augment.APIKey,
			Model:       cfg.Augment.Model,
			Temperature: cfg.Augment.Temperature,
			MaxTokens:   cfg.Augment.MaxTokens,
			Timeout:     cfg.Augment.Timeout,
		}, logger, opts...)
		gen = client
	}

	coord := presenter.NewCoordinator(presenter.Config{
		NPCSpeaker:      cfg.Presenter.NPCSpeaker,
		Placeholder:     cfg.Presenter.Placeholder,
		GenerateTimeout: cfg.Presenter.GenerateTimeout,
	}, gen, presenter.DriverFunc(func(i int) { svc.Choose(i) }), logger)
	coord.Attach(svc.Events())

	return &Runtime{
		Service:     svc,
		Coordinator: coord,
		Client:      client,
	}, nil
}

// Close detaches the coordinator and releases the service.
func (r *Runtime) Close() {
	r.Coordinator.Detach()
	r.Service.Close()
}
