// Package tokenizer turns text into token id tensors for the ndindex
// primitives.
//
// Example usage:
//
//	import "github.com/born-ml/ndindex/tokenizer"
//
//	tok, err := tokenizer.NewTikToken(tokenizer.EncodingCL100kBase)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// [n] int64 ids, every one below tok.VocabSize()
//	ids, err := tokenizer.Indices(tok, "Hello, world!", tensor.DefaultDevice)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Token histogram
//	ones, _ := tensor.Full(ids.Shape(), float32(1), tensor.DefaultDevice)
//	counts, err := ops.ScatterFlat(cpu.New(), ids, ones, tok.VocabSize(), ops.Sum)
package tokenizer

import (
	"github.com/born-ml/ndindex/internal/tokenizer"
	"github.com/born-ml/ndindex/tensor"
)

// Tokenizer maps text to token ids in [0, VocabSize()).
type Tokenizer = tokenizer.Tokenizer

// TikToken wraps the OpenAI BPE encodings.
type TikToken = tokenizer.TikToken

// Supported tiktoken encodings.
const (
	EncodingCL100kBase = tokenizer.EncodingCL100kBase
	EncodingP50kBase   = tokenizer.EncodingP50kBase
	EncodingR50kBase   = tokenizer.EncodingR50kBase
)

// NewTikToken loads a tiktoken encoding by name.
func NewTikToken(encoding string) (*TikToken, error) {
	return tokenizer.NewTikToken(encoding)
}

// Indices encodes text into an int64 index tensor of shape [n].
func Indices(tok Tokenizer, text string, dev tensor.Device) (*tensor.RawTensor, error) {
	return tokenizer.Indices(tok, text, dev)
}
