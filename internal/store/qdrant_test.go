package store

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kara-engine/kara/internal/domain"
	"github.com/kara-engine/kara/internal/hashing"
	"github.com/kara-engine/kara/internal/mocks"
)

func digest(content string) domain.Digest {
	return hashing.SHA256Hasher{}.Hash([]byte(content))
}

func TestParseHostPort(t *testing.T) {
	cases := []struct {
		url      string
		wantHost string
		wantPort int
	}{
		{"localhost:6334", "localhost", 6334},
		{"http://qdrant:6333", "qdrant", 6334},
		{"https://qdrant:6334", "qdrant", 6334},
		{"qdrant", "qdrant", 6334},
		{"", "localhost", 6334},
	}
	for _, tc := range cases {
		host, port := parseHostPort(tc.url)
		if host != tc.wantHost || port != tc.wantPort {
			t.Errorf("parseHostPort(%q) = (%q, %d), want (%q, %d)", tc.url, host, port, tc.wantHost, tc.wantPort)
		}
	}
}

func TestSyncUpsertsAddedChunks(t *testing.T) {
	var upserted []*qdrant.PointStruct
	client := &mocks.QdrantClient{
		UpsertFunc: func(ctx context.Context, in *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
			upserted = in.Points
			return &qdrant.UpdateResult{}, nil
		},
	}
	sync := &QdrantSync{client: client, collection: "corpus"}

	result := &domain.UpdateResult{
		Document: domain.NewChunkedDocument([]domain.Chunk{
			{Segments: []domain.Segment{"hello"}, Digest: digest("hello"), DocumentID: 0},
		}),
		NumAdded: 1,
	}

	if err := sync.Sync(context.Background(), result, nil, 4); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(upserted) != 1 {
		t.Fatalf("expected 1 upserted point, got %d", len(upserted))
	}
}

func TestSyncDeletesRemovedDigests(t *testing.T) {
	var deletedCount int
	client := &mocks.QdrantClient{
		DeleteFunc: func(ctx context.Context, in *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
			deletedCount++
			return &qdrant.UpdateResult{}, nil
		},
	}
	sync := &QdrantSync{client: client, collection: "corpus"}

	result := &domain.UpdateResult{Document: domain.NewChunkedDocument(nil)}
	err := sync.Sync(context.Background(), result, []domain.Digest{digest("gone")}, 4)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if deletedCount != 1 {
		t.Errorf("expected one Delete call, got %d", deletedCount)
	}
}

func TestSyncNoOpWhenNothingChanged(t *testing.T) {
	client := &mocks.QdrantClient{
		UpsertFunc: func(ctx context.Context, in *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
			t.Fatal("Upsert should not be called for an empty document")
			return nil, nil
		},
		DeleteFunc: func(ctx context.Context, in *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
			t.Fatal("Delete should not be called with no deleted digests")
			return nil, nil
		},
	}
	sync := &QdrantSync{client: client, collection: "corpus"}

	result := &domain.UpdateResult{Document: domain.NewChunkedDocument(nil)}
	if err := sync.Sync(context.Background(), result, nil, 4); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}

func TestEnsureCollectionSkipsExisting(t *testing.T) {
	created := false
	client := &mocks.QdrantClient{
		CollectionExistsFunc: func(ctx context.Context, name string) (bool, error) { return true, nil },
		CreateCollectionFunc: func(ctx context.Context, in *qdrant.CreateCollection) error {
			created = true
			return nil
		},
	}
	sync := &QdrantSync{client: client, collection: "corpus"}

	if err := sync.EnsureCollection(context.Background(), 384); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	if created {
		t.Error("expected CreateCollection not to be called for an existing collection")
	}
}

func TestEnsureCollectionCreatesMissing(t *testing.T) {
	var gotConfig *qdrant.VectorsConfig
	client := &mocks.QdrantClient{
		CollectionExistsFunc: func(ctx context.Context, name string) (bool, error) { return false, nil },
		CreateCollectionFunc: func(ctx context.Context, in *qdrant.CreateCollection) error {
			gotConfig = in.VectorsConfig
			return nil
		},
	}
	sync := &QdrantSync{client: client, collection: "corpus"}

	if err := sync.EnsureCollection(context.Background(), 384); err != nil {
		t.Fatalf("EnsureCollection: %v", err)
	}
	if gotConfig == nil {
		t.Error("expected CreateCollection to receive a non-nil VectorsConfig")
	}
}

func TestDigestUUIDIsStableAndFormatted(t *testing.T) {
	d := digest("same content")
	a := digestUUID(d)
	b := digestUUID(d)
	if a != b {
		t.Errorf("digestUUID not stable: %q vs %q", a, b)
	}
	if len(a) != 36 {
		t.Errorf("expected UUID-formatted string of length 36, got %d (%q)", len(a), a)
	}
}
