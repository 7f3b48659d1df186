package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/immut/internal/core/ports"
)

const (
	WalkerNodeID graft.ID = "adapter.fs.walker"
	HasherNodeID graft.ID = "adapter.fs.hasher"
	WriterNodeID graft.ID = "adapter.fs.writer"
)

func init() {
	// Walker Node (Concrete implementation needed by the config loader)
	graft.Register(graft.Node[*Walker]{
		ID:        WalkerNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (*Walker, error) {
			return NewWalker(), nil
		},
	})

	// Hasher Node
	graft.Register(graft.Node[ports.Fingerprinter]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Fingerprinter, error) {
			return NewHasher(), nil
		},
	})

	// Writer Node
	graft.Register(graft.Node[ports.OutputWriter]{
		ID:        WriterNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.OutputWriter, error) {
			return NewWriter(), nil
		},
	})
}
