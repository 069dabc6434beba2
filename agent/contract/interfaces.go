package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// Catalog is the registry of structured operations exposed to the dispatcher.
// Infos returns every entry (fallback included) as tool descriptors; the
// dispatcher must present all of them to the model without pre-filtering.
type Catalog interface {
	Infos() []*schema.ToolInfo
	Has(name string) bool
	// Invoke runs the named operation with raw model-supplied arguments.
	// Argument problems wrap ErrInvalidArgument; store failures are returned
	// as-is. A legitimate empty result is a value, not an error.
	Invoke(ctx context.Context, name string, args map[string]any) (any, error)
}

// Embedder turns texts into vectors. Implementations may call a remote
// service and fail; callers degrade rather than abort.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Dispatcher answers one user message given the prior turn history.
// Model failures are absorbed into a fixed apologetic reply; the returned
// error is reserved for caller mistakes (empty input, nil context).
type Dispatcher interface {
	Answer(ctx context.Context, history []Turn, text string) (string, error)
}
