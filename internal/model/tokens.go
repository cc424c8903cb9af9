// Copyright (c) 2025 a.d.
// SPDX-License-Identifier: WTFPL

package model

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// CountTokens counts BPE tokens in text using the cl100k_base encoding.
// Falls back to the ~4 characters per token approximation if the codec
// cannot be constructed or the text fails to encode.
func CountTokens(text string) int {
	if text == "" {
		return 0
	}

	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})

	if codec == nil {
		return approxTokens(text)
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return approxTokens(text)
	}
	return len(ids)
}

func approxTokens(text string) int {
	return (len(text) + 3) / 4
}
