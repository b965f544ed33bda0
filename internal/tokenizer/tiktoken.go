package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	EncodingCL100kBase = "cl100k_base"
	// EncodingP50kBase is the encoding name for Codex models.
	EncodingP50kBase = "p50k_base"
	// EncodingR50kBase is the encoding name for older GPT-3 models.
	EncodingR50kBase = "r50k_base"
)

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
//
// Special tokens are encoded as ordinary text, so every id stays below
// VocabSize.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
	vocab    int
}

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
//
// Supported encodings: "cl100k_base", "p50k_base", "r50k_base".
func NewTikToken(encodingName string) (*TikToken, error) {
	vocab, ok := vocabSizes[encodingName]
	if !ok {
		return nil, fmt.Errorf("unsupported tiktoken encoding %q", encodingName)
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
		vocab:    vocab,
	}, nil
}

// Ordinary (non-special) token counts per encoding.
var vocabSizes = map[string]int{
	EncodingCL100kBase: 100256,
	EncodingP50kBase:   50281,
	EncodingR50kBase:   50256,
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int64, error) {
	tokens := t.encoding.Encode(text, nil, nil)

	result := make([]int64, len(tokens))
	for i, tok := range tokens {
		result[i] = int64(tok)
	}

	return result, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int64) (string, error) {
	intTokens := make([]int, len(tokens))
	for i, tok := range tokens {
		if tok < 0 || tok >= int64(t.vocab) {
			return "", fmt.Errorf("token %d outside vocabulary of %d", tok, t.vocab)
		}
		intTokens[i] = int(tok)
	}

	return t.encoding.Decode(intTokens), nil
}

// VocabSize returns the number of ordinary tokens.
func (t *TikToken) VocabSize() int {
	return t.vocab
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
