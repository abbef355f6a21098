// Package api holds the Tokenizer interface and the tokenizer_config.json schema, shared by the
// tokenizers package and its implementations without an import cycle.
package api

// Tokenizer converts text to token ids and back.
type Tokenizer interface {
	Encode(text string) []int
	Decode(ids []int) string
}
