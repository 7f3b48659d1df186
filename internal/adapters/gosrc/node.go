package gosrc

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/immut/internal/core/ports"
)

const NodeID graft.ID = "adapter.source_renderer"

func init() {
	graft.Register(graft.Node[ports.SourceRenderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.SourceRenderer, error) {
			return NewRenderer(), nil
		},
	})
}
