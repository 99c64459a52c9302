package sim

import "context"

// Noop satisfies Client without an engine attached. Strategies fall back to
// their own closed-form estimates when the deterministic summary is absent.
type Noop struct{}

func (Noop) Project(ctx context.Context, req Request) (Response, error) {
	return Response{
		Success:    true,
		EngineMeta: EngineMeta{Version: "noop", SchemaVersion: "0"},
	}, nil
}
