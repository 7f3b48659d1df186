package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/immut/internal/adapters/cas"       //nolint:depguard // Wired in app layer
	"go.trai.ch/immut/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/immut/internal/adapters/fs"        //nolint:depguard // Wired in app layer
	"go.trai.ch/immut/internal/adapters/gosrc"     //nolint:depguard // Wired in app layer
	"go.trai.ch/immut/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/immut/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/immut/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/immut/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			cas.NodeID,
			fs.HasherNodeID,
			gosrc.NodeID,
			fs.WriterNodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.CacheStore](ctx)
	if err != nil {
		return nil, err
	}
	fingerprinter, err := graft.Dep[ports.Fingerprinter](ctx)
	if err != nil {
		return nil, err
	}
	renderer, err := graft.Dep[ports.SourceRenderer](ctx)
	if err != nil {
		return nil, err
	}
	writer, err := graft.Dep[ports.OutputWriter](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}
	w, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}
	return New(loader, store, fingerprinter, renderer, writer, log, tracer, w), nil
}
