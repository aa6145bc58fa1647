// Package domain holds the value types shared by the splitting, hashing,
// planning, and update layers: segments, chunks, chunked documents, and the
// result of an update pass. All types here are immutable once constructed.
package domain

// Segment is a single atomic piece of text produced by a Splitter. Chunk
// boundaries only ever fall between segments, never inside one.
type Segment string

// Len reports the length of the segment in bytes, the same unit the
// planner uses for its max-chunk-size bound.
func (s Segment) Len() int {
	return len(s)
}

// Digest is a fixed-width content digest used to test chunk identity.
// Equal digests are treated as equal content.
type Digest [16]byte

// Chunk is an ordered, non-empty, contiguous run of segments drawn from a
// single document.
type Chunk struct {
	Segments   []Segment
	Digest     Digest
	DocumentID int
}

// Content returns the concatenation of the chunk's segments.
func (c Chunk) Content() string {
	var total int
	for _, s := range c.Segments {
		total += len(s)
	}
	buf := make([]byte, 0, total)
	for _, s := range c.Segments {
		buf = append(buf, s...)
	}
	return string(buf)
}

// Len returns the byte length of the chunk's content.
func (c Chunk) Len() int {
	var total int
	for _, s := range c.Segments {
		total += len(s)
	}
	return total
}

// ChunkedDocument is an ordered, immutable sequence of chunks drawn from one
// or more documents. Chunks belonging to the same document appear
// contiguously and in source order; documents appear in the order they were
// passed to the updater.
type ChunkedDocument struct {
	chunks []Chunk
}

// NewChunkedDocument builds a ChunkedDocument from an already-ordered chunk
// slice. Callers that assemble chunks across documents should use
// internal/document.Build instead, which also validates contiguity.
func NewChunkedDocument(chunks []Chunk) *ChunkedDocument {
	owned := make([]Chunk, len(chunks))
	copy(owned, chunks)
	return &ChunkedDocument{chunks: owned}
}

// Chunks returns the ordered chunk slice. Callers must not mutate it.
func (d *ChunkedDocument) Chunks() []Chunk {
	if d == nil {
		return nil
	}
	return d.chunks
}

// DigestSet returns the set of distinct chunk digests in the document.
func (d *ChunkedDocument) DigestSet() map[Digest]struct{} {
	set := make(map[Digest]struct{})
	if d == nil {
		return set
	}
	for _, c := range d.chunks {
		set[c.Digest] = struct{}{}
	}
	return set
}

// ChunksOf returns the chunks belonging to the given document id, in order.
func (d *ChunkedDocument) ChunksOf(documentID int) []Chunk {
	if d == nil {
		return nil
	}
	var result []Chunk
	for _, c := range d.chunks {
		if c.DocumentID == documentID {
			result = append(result, c)
		}
	}
	return result
}

// DocumentIDs returns the set of document ids present in the document.
func (d *ChunkedDocument) DocumentIDs() map[int]struct{} {
	set := make(map[int]struct{})
	if d == nil {
		return set
	}
	for _, c := range d.chunks {
		set[c.DocumentID] = struct{}{}
	}
	return set
}

// Contents returns the chunk content strings in order.
func (d *ChunkedDocument) Contents() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.chunks))
	for i, c := range d.chunks {
		out[i] = c.Content()
	}
	return out
}

// Len returns the number of chunks in the document.
func (d *ChunkedDocument) Len() int {
	if d == nil {
		return 0
	}
	return len(d.chunks)
}

// Equal reports whether two chunked documents have the same ordered chunk
// contents. Equality is by content, not by digest or document id layout.
func (d *ChunkedDocument) Equal(other *ChunkedDocument) bool {
	a, b := d.Chunks(), other.Chunks()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Content() != b[i].Content() {
			return false
		}
	}
	return true
}

// UpdateResult counts the outcome of a Create or Update call and carries
// the newly planned chunked document.
type UpdateResult struct {
	Document   *ChunkedDocument
	NumAdded   int
	NumReused  int
	NumDeleted int
}

// Efficiency is the fraction of planned-or-deleted chunks that were reused.
// It is 0 when there is nothing to account for.
func (r UpdateResult) Efficiency() float64 {
	total := r.NumAdded + r.NumReused + r.NumDeleted
	if total == 0 {
		return 0
	}
	return float64(r.NumReused) / float64(total)
}
