// Package main is the entry point for the immut generator.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/immut/cmd/immut/commands"
	"go.trai.ch/immut/internal/app"
	"go.trai.ch/immut/internal/core/domain"
	"go.trai.ch/immut/internal/core/ports"
	_ "go.trai.ch/immut/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
	opts ...func(*app.App),
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	for _, opt := range opts {
		opt(components.App)
	}

	cli := commands.New(components.App)
	if lc, ok := components.Logger.(commands.LogConfigurer); ok {
		cli.WithLogger(lc)
	}
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	return exitCode(cli.Execute(ctx), components.Logger)
}

// exitCode reports err unless its diagnostics were already logged one by one.
func exitCode(err error, logger ports.Logger) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, domain.ErrGenerationFailed):
		return 1
	default:
		logger.Error(err)
		return 1
	}
}
