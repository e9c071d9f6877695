// Package chunker converts menu documents into embedder-sized text chunks.
package chunker

import (
	"encoding/json"
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/akshaykn0797/menudex/internal/domain"
)

// encodingName is the subword tokenizer used for all length estimates. It is
// fixed: chunk bounds must be stable across runs regardless of the embedding
// model actually configured.
const encodingName = "cl100k_base"

// Chunker produces one base chunk per top-level menu category, splitting
// oversized categories into overlapping token windows.
type Chunker struct {
	maxTokens int
	overlap   int
	enc       *tiktoken.Tiktoken
}

// New creates a chunker with the given token bound and window overlap.
func New(maxTokens, overlap int) (*Chunker, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("max tokens must be positive, got %d", maxTokens)
	}
	if overlap < 0 || overlap >= maxTokens {
		return nil, fmt.Errorf("overlap must be in [0,%d), got %d", maxTokens, overlap)
	}

	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("load %s encoding: %w", encodingName, err)
	}

	return &Chunker{maxTokens: maxTokens, overlap: overlap, enc: enc}, nil
}

// Chunk serializes each category section and returns the ordered chunk
// sequence for one ingestion run. Ordinals are dense and zero-based.
func (c *Chunker) Chunk(doc *domain.MenuDocument) ([]domain.Chunk, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	var chunks []domain.Chunk
	ordinal := 0

	for i := range doc.Sections {
		text, err := json.Marshal(&doc.Sections[i])
		if err != nil {
			return nil, fmt.Errorf("serialize section %d: %w: %w", i, domain.ErrMalformedDocument, err)
		}

		for _, win := range c.split(string(text)) {
			chunks = append(chunks, domain.Chunk{
				Tenant:  doc.VenueName,
				Ordinal: ordinal,
				Text:    win.text,
				Tokens:  win.tokens,
			})
			ordinal++
		}
	}

	return chunks, nil
}

type window struct {
	text   string
	tokens int
}

// split returns the text unchanged when it fits the bound, otherwise a series
// of token windows stepping by maxTokens-overlap so neighbouring windows share
// overlap tokens.
func (c *Chunker) split(text string) []window {
	tokens := c.enc.Encode(text, nil, nil)
	if len(tokens) <= c.maxTokens {
		return []window{{text: text, tokens: len(tokens)}}
	}

	step := c.maxTokens - c.overlap
	var wins []window
	for start := 0; start < len(tokens); start += step {
		end := start + c.maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}
		wins = append(wins, window{
			text:   c.enc.Decode(tokens[start:end]),
			tokens: end - start,
		})
		if end == len(tokens) {
			break
		}
	}
	return wins
}
