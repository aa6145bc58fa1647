// Package document assembles the chunks produced by one or more
// single-document planner passes into a single, validated ChunkedDocument,
// preserving document order and checking the contiguity invariants spec.md
// §3 requires of a ChunkedDocument.
package document

import (
	"github.com/kara-engine/kara/internal/domain"
	"github.com/kara-engine/kara/internal/errors"
	"github.com/kara-engine/kara/internal/planner"
)

// Build assembles results, one per document, into a single ChunkedDocument.
// results must be supplied in the order their documents were passed to the
// caller; Build checks that every chunk in a given result shares that
// result's document id and that document ids strictly increase across
// results, which is what guarantees contiguous, source-ordered per-document
// blocks (invariants iv and v).
func Build(results ...*planner.Result) (*domain.ChunkedDocument, error) {
	var allChunks []domain.Chunk
	lastDocID := -1
	seenAny := false

	for _, r := range results {
		if r == nil || len(r.Chunks) == 0 {
			continue
		}
		docID := r.Chunks[0].DocumentID
		if seenAny && docID <= lastDocID {
			return nil, errors.InternalError("planner results must be assembled in strictly increasing document-id order")
		}
		for _, c := range r.Chunks {
			if c.DocumentID != docID {
				return nil, errors.InternalError("a single planner result must not mix document ids")
			}
		}
		allChunks = append(allChunks, r.Chunks...)
		lastDocID = docID
		seenAny = true
	}

	return domain.NewChunkedDocument(allChunks), nil
}
