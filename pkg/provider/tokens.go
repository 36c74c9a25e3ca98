package provider

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenizer lazily loads a tiktoken encoding. Loading can pull encoding
// data over the network, so it happens on first use, and estimation falls
// back to a character heuristic when the encoding is unavailable.
type tokenizer struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

var estimator tokenizer

func (t *tokenizer) count(text string) int {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			t.enc = enc
		}
	})
	if t.enc == nil {
		// ~4 characters per token for English prose.
		return (len(text) + 3) / 4
	}
	return len(t.enc.Encode(text, nil, nil))
}

func countTokens(text string) int {
	return estimator.count(text)
}
