// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/immut/internal/adapters/cas"
	_ "go.trai.ch/immut/internal/adapters/config"
	_ "go.trai.ch/immut/internal/adapters/fs"
	_ "go.trai.ch/immut/internal/adapters/gosrc"
	_ "go.trai.ch/immut/internal/adapters/logger"
	_ "go.trai.ch/immut/internal/adapters/telemetry"
	_ "go.trai.ch/immut/internal/adapters/watcher"
	// Register app nodes.
	_ "go.trai.ch/immut/internal/app"
)
