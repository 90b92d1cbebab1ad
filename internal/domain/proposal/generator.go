package proposal

import "context"

// GenerationParams is one call to the text-generation service.
type GenerationParams struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// GenerationResult is the final text of a generation plus its accounting.
type GenerationResult struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// CompletionFunc receives the accumulated text once a stream has ended.
type CompletionFunc func(result GenerationResult, err error)

// TextStream delivers generated text incrementally.
type TextStream interface {
	// Chunks is closed after the last chunk.
	Chunks() <-chan string
	// Detach stops delivery to the caller. The producer keeps reading upstream so
	// the completion callback still fires.
	Detach()
}

// Generator invokes the external text-generation capability.
type Generator interface {
	Complete(ctx context.Context, params GenerationParams) (GenerationResult, error)
	// Stream starts a streaming generation. onComplete fires exactly once when the
	// stream ends, whether or not the caller is still reading, and never fires when
	// Stream itself returns an error.
	Stream(ctx context.Context, params GenerationParams, onComplete CompletionFunc) (TextStream, error)
}
