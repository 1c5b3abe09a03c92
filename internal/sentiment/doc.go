// Package sentiment classifies text polarity with a deterministic
// lexicon-based scorer. It runs inline on the ingestion path: no I/O, no
// allocation beyond tokenization, bounded latency.
package sentiment
