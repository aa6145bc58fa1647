package document

import (
	"testing"

	"github.com/kara-engine/kara/internal/domain"
	"github.com/kara-engine/kara/internal/hashing"
	"github.com/kara-engine/kara/internal/planner"
)

func chunk(docID int, content string) domain.Chunk {
	return domain.Chunk{
		Segments:   []domain.Segment{domain.Segment(content)},
		Digest:     hashing.SHA256Hasher{}.Hash([]byte(content)),
		DocumentID: docID,
	}
}

func TestBuildPreservesDocumentOrder(t *testing.T) {
	r0 := &planner.Result{Chunks: []domain.Chunk{chunk(0, "a"), chunk(0, "b")}, ReuseCandidate: []bool{false, false}}
	r1 := &planner.Result{Chunks: []domain.Chunk{chunk(1, "c")}, ReuseCandidate: []bool{false}}

	doc, err := Build(r0, r1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Len() != 3 {
		t.Fatalf("expected 3 chunks, got %d", doc.Len())
	}
	contents := doc.Contents()
	if contents[0] != "a" || contents[1] != "b" || contents[2] != "c" {
		t.Errorf("unexpected content order: %v", contents)
	}
	if len(doc.ChunksOf(0)) != 2 || len(doc.ChunksOf(1)) != 1 {
		t.Errorf("ChunksOf did not partition correctly")
	}
}

func TestBuildRejectsOutOfOrderDocumentIDs(t *testing.T) {
	r1 := &planner.Result{Chunks: []domain.Chunk{chunk(1, "a")}, ReuseCandidate: []bool{false}}
	r0 := &planner.Result{Chunks: []domain.Chunk{chunk(0, "b")}, ReuseCandidate: []bool{false}}

	_, err := Build(r1, r0)
	if err == nil {
		t.Fatal("expected error for out-of-order document ids, got nil")
	}
}

func TestBuildSkipsEmptyResults(t *testing.T) {
	r0 := &planner.Result{Chunks: []domain.Chunk{chunk(0, "a")}, ReuseCandidate: []bool{false}}
	empty := &planner.Result{}
	r2 := &planner.Result{Chunks: []domain.Chunk{chunk(2, "c")}, ReuseCandidate: []bool{false}}

	doc, err := Build(r0, empty, r2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Len() != 2 {
		t.Fatalf("expected 2 chunks, got %d", doc.Len())
	}
}

func TestBuildEmptyInputReturnsEmptyDocument(t *testing.T) {
	doc, err := Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if doc.Len() != 0 {
		t.Errorf("expected empty document, got %d chunks", doc.Len())
	}
}
