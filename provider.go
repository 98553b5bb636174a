package mdflow

import (
	"context"
	"io"
)

// CallOptions are per-call overrides passed through to the provider.
// Zero values mean "use the provider's default".
type CallOptions struct {
	Model       string
	Temperature *float64
}

// ChunkStream is an explicit cursor over a streaming model response.
// Next blocks for the next text chunk and returns io.EOF when the
// stream is exhausted. Cancellation is "stop pulling" (or cancel the
// context); there is no interrupt.
type ChunkStream interface {
	Next(ctx context.Context) (string, error)
}

// Provider is the external model-calling collaborator. Deadlines and
// retry policy live behind this interface, not in the core.
type Provider interface {
	// Complete performs a non-streaming call and returns the full
	// response text.
	Complete(ctx context.Context, messages []Message, opts CallOptions) (string, error)

	// Stream starts a streaming call and returns a cursor over the
	// incremental response chunks.
	Stream(ctx context.Context, messages []Message, opts CallOptions) (ChunkStream, error)
}

// NoProvider is the null collaborator for prompt-only use. Every call
// fails with ErrNoProvider.
type NoProvider struct{}

func (NoProvider) Complete(context.Context, []Message, CallOptions) (string, error) {
	return "", ErrNoProvider
}

func (NoProvider) Stream(context.Context, []Message, CallOptions) (ChunkStream, error) {
	return nil, ErrNoProvider
}

// chunkSlice is a ChunkStream over pre-collected chunks, used where a
// one-shot result must be exposed through the streaming interface.
type chunkSlice struct {
	chunks []string
	pos    int
}

func (c *chunkSlice) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.pos >= len(c.chunks) {
		return "", io.EOF
	}
	chunk := c.chunks[c.pos]
	c.pos++
	return chunk, nil
}
