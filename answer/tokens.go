package answer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter reports the number of tokens in a prompt.
type TokenCounter func(text string) (int, error)

// NewTiktokenCounter returns a TokenCounter using the BPE encoding of model.
// Counts are an estimate for models outside the OpenAI family.
func NewTiktokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("load encoding for %s: %w", model, err)
	}
	return func(text string) (int, error) {
		return len(enc.Encode(text, nil, nil)), nil
	}, nil
}
