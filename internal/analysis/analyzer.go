// Package analysis builds instructions for the generative analysis service
// and extracts profile fields from its free-text answers.
package analysis

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned by an Analyzer when the service answered with no text.
var ErrEmptyResponse = errors.New("analysis service returned an empty response")

// Analyzer sends an instruction, optionally with a JPEG image, to the external
// service and returns its raw text. A single attempt; no retries.
type Analyzer interface {
	Generate(ctx context.Context, prompt string, image []byte) (string, error)
	// Name identifies the backend and model, e.g. "gemini:gemini-2.5-flash".
	Name() string
}
