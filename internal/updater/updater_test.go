package updater

import (
	"context"
	"testing"

	"github.com/kara-engine/kara/internal/config"
	"github.com/kara-engine/kara/internal/hashing"
	"github.com/kara-engine/kara/internal/splitting"
)

func newlineOptions(maxChunkSize int, epsilon float64) config.Options {
	return config.Options{
		MaxChunkSize: maxChunkSize,
		Epsilon:      epsilon,
		Splitter:     splitting.NewSimpleSeparatorSplitter("\n"),
		Hasher:       hashing.SHA256Hasher{},
	}
}

func spaceOptions(maxChunkSize int, epsilon float64) config.Options {
	return config.Options{
		MaxChunkSize: maxChunkSize,
		Epsilon:      epsilon,
		Splitter:     splitting.NewSimpleSeparatorSplitter(" "),
		Hasher:       hashing.SHA256Hasher{},
	}
}

// TestCreateThenUpdateIdenticalInput is scenario S1: creating from
// "a\nb\nc\n" yields three chunks, and re-running update against the same
// document reuses all three with perfect efficiency.
func TestCreateThenUpdateIdenticalInput(t *testing.T) {
	u, err := New(newlineOptions(100, 0.1), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	created, err := u.Create(ctx, []string{"a\nb\nc\n"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Document.Len() != 3 || created.NumAdded != 3 || created.NumReused != 0 {
		t.Fatalf("Create: got %+v", created)
	}

	updated, err := u.Update(ctx, created.Document, []string{"a\nb\nc\n"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.NumAdded != 0 || updated.NumReused != 3 || updated.NumDeleted != 0 {
		t.Errorf("Update counts = %+v, want added=0 reused=3 deleted=0", updated)
	}
	if updated.Efficiency() != 1.0 {
		t.Errorf("Efficiency = %v, want 1.0", updated.Efficiency())
	}
}

// TestUpdateSingleSegmentEdit is scenario S2: editing the middle segment
// of three adds one, reuses two, deletes one.
func TestUpdateSingleSegmentEdit(t *testing.T) {
	u, err := New(newlineOptions(100, 0.1), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	created, err := u.Create(ctx, []string{"alpha\nbeta\ngamma\n"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := u.Update(ctx, created.Document, []string{"alpha\nBETA\ngamma\n"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.NumAdded != 1 || updated.NumReused != 2 || updated.NumDeleted != 1 {
		t.Errorf("Update counts = %+v, want added=1 reused=2 deleted=1", updated)
	}
}

// TestUpdateBoundaryShiftAbsorbed is scenario S3: a leading edit still
// lets the planner reuse at least two downstream space-separated chunks.
func TestUpdateBoundaryShiftAbsorbed(t *testing.T) {
	u, err := New(spaceOptions(10, 0.1), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	created, err := u.Create(ctx, []string{"one two three four"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := u.Update(ctx, created.Document, []string{"ONE two three four"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.NumReused < 2 {
		t.Errorf("NumReused = %d, want at least 2", updated.NumReused)
	}
}

// TestUpdateEmptyDocumentSet is scenario S5: updating with no documents at
// all deletes everything the previous set held.
func TestUpdateEmptyDocumentSet(t *testing.T) {
	u, err := New(newlineOptions(100, 0.1), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	created, err := u.Create(ctx, []string{"a\nb\nc\n"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := u.Update(ctx, created.Document, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Document.Len() != 0 {
		t.Errorf("expected empty document, got %d chunks", updated.Document.Len())
	}
	if updated.NumAdded != 0 || updated.NumReused != 0 {
		t.Errorf("expected added=0 reused=0, got added=%d reused=%d", updated.NumAdded, updated.NumReused)
	}
	if updated.NumDeleted != 3 {
		t.Errorf("NumDeleted = %d, want 3", updated.NumDeleted)
	}
}

// TestUpdateDocumentReorder is scenario S6: reordering two atomic
// documents reuses both chunks with zero additions or deletions, and the
// new document's per-document blocks follow the new order.
func TestUpdateDocumentReorder(t *testing.T) {
	opts := config.Options{
		MaxChunkSize: 10,
		Epsilon:      0.1,
		Splitter:     splitting.NewFixedSizeSplitter(10),
		Hasher:       hashing.SHA256Hasher{},
	}
	u, err := New(opts, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	created, err := u.Create(ctx, []string{"X", "Y"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := u.Update(ctx, created.Document, []string{"Y", "X"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.NumAdded != 0 || updated.NumReused != 2 || updated.NumDeleted != 0 {
		t.Errorf("Update counts = %+v, want added=0 reused=2 deleted=0", updated)
	}
	contents := updated.Document.Contents()
	if len(contents) != 2 || contents[0] != "Y" || contents[1] != "X" {
		t.Errorf("contents = %v, want [Y X] reflecting new order", contents)
	}
}

// TestFixedPoint is invariant 10: re-running update with the exact same
// document set the updater was just created from is a no-op.
func TestFixedPoint(t *testing.T) {
	u, err := New(newlineOptions(100, 0.1), false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	docs := []string{"one\ntwo\nthree\n"}

	created, err := u.Create(ctx, docs)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	updated, err := u.Update(ctx, created.Document, docs)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.NumAdded != 0 {
		t.Errorf("NumAdded = %d, want 0", updated.NumAdded)
	}
	if updated.NumDeleted != 0 {
		t.Errorf("NumDeleted = %d, want 0", updated.NumDeleted)
	}
}

// TestDuplicateContentAcrossDocumentsConsumedOnce verifies the global
// consume-once walk: the same previously-held chunk content appearing in
// two different documents in the new plan only counts as reused once.
func TestDuplicateContentAcrossDocumentsConsumedOnce(t *testing.T) {
	opts := config.Options{
		MaxChunkSize: 10,
		Epsilon:      0.1,
		Splitter:     splitting.NewFixedSizeSplitter(10),
		Hasher:       hashing.SHA256Hasher{},
	}
	u, err := New(opts, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	created, err := u.Create(ctx, []string{"dup"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := u.Update(ctx, created.Document, []string{"dup", "dup"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.NumReused != 1 {
		t.Errorf("NumReused = %d, want 1 (consume-once)", updated.NumReused)
	}
	if updated.NumAdded != 1 {
		t.Errorf("NumAdded = %d, want 1 (second duplicate counts as add)", updated.NumAdded)
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	opts := newlineOptions(100, 0.1)
	sequential, err := New(opts, false)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	parallel, err := New(opts, true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	docs := []string{"a\nb\n", "c\nd\n", "e\nf\n"}

	seqResult, err := sequential.Create(ctx, docs)
	if err != nil {
		t.Fatalf("sequential Create: %v", err)
	}
	parResult, err := parallel.Create(ctx, docs)
	if err != nil {
		t.Fatalf("parallel Create: %v", err)
	}

	if seqResult.Document.Len() != parResult.Document.Len() {
		t.Fatalf("chunk counts differ: %d vs %d", seqResult.Document.Len(), parResult.Document.Len())
	}
	seqContents, parContents := seqResult.Document.Contents(), parResult.Document.Contents()
	for i := range seqContents {
		if seqContents[i] != parContents[i] {
			t.Errorf("chunk %d differs: %q vs %q", i, seqContents[i], parContents[i])
		}
	}
}
