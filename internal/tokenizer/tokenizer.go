package tokenizer

import (
	"fmt"

	"github.com/born-ml/ndindex/internal/tensor"
)

// Tokenizer maps text to token ids in [0, VocabSize()).
type Tokenizer interface {
	// Encode converts text to token IDs.
	Encode(text string) ([]int64, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int64) (string, error)

	// VocabSize returns the number of ordinary tokens.
	VocabSize() int
}

// Indices encodes text into an int64 index tensor of shape [n], ready
// for ScatterFlat (token histograms) or GatherFlat.
func Indices(tok Tokenizer, text string, device tensor.Device) (*tensor.RawTensor, error) {
	ids, err := tok.Encode(text)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		if id < 0 || id >= int64(tok.VocabSize()) {
			return nil, fmt.Errorf("token %d at position %d outside vocabulary of %d", id, i, tok.VocabSize())
		}
	}
	return tensor.FromSlice(ids, tensor.Shape{len(ids)}, device)
}
