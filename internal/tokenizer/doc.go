// Package tokenizer turns text into token id tensors.
//
// Token ids feed the indexing primitives directly: a histogram of a text is a
// ScatterFlat of ones into a VocabSize vector, and its one-hot encoding is
// OneHot with depth VocabSize.
//
// Example usage:
//
//	tok, err := tokenizer.NewTikToken(tokenizer.EncodingCL100kBase)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := tokenizer.Indices(tok, "Hello, world!", tensor.DefaultDevice)
//	if err != nil {
//	    log.Fatal(err)
//	}
package tokenizer
