// Package ingestion turns uploaded PDF résumés into plain text.
package ingestion

import (
	"encoding/hex"
	"hash"
	"time"
)

// Document is the text extracted from one PDF, plus a few facts for logging.
// It lives only as long as the request that produced it.
type Document struct {
	Text        string
	Pages       int
	Hash        string // SHA256 hex digest of the source bytes
	ExtractedAt time.Time
}

func newDocument(text string, pages int, sum hash.Hash) *Document {
	return &Document{
		Text:        text,
		Pages:       pages,
		Hash:        hex.EncodeToString(sum.Sum(nil)),
		ExtractedAt: time.Now().UTC(),
	}
}
