package analysis

import "context"

// ModelClient sends a rendered prompt to the model and returns its raw text.
type ModelClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
