// Package textaug holds the version of a set of text data-augmentation tools for Go.
//
// The main sub-packages are:
//
//   - augment: the augmenters (character noise, keyboard/OCR noise, easy data augmentation, synonym,
//     similar-word and contextual word replacement, back-translation, summarization and paraphrasing).
//   - noise: the character and word level perturbation primitives and confusion tables.
//   - inference: interfaces and clients for the models used by the model-backed augmenters.
//   - hub: to download files (tokenizer configs, word vectors) from HuggingFace Hub.
//   - dataset: reading and writing of text collections.
package textaug

// Version of the library.
// Manually kept in sync with project releases.
var Version = "v0.1.0"
