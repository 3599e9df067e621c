// Package tokenizer splits normalized text into word tokens, tracking
// per-term frequency and in-document positions, with threshold-gated
// stopword filtering.
package tokenizer
