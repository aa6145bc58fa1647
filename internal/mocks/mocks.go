// Package mocks provides manual, func-field mocks for this module's
// external-facing interfaces, in the teacher's manual-mock-with-func-fields
// idiom rather than a generated mocking framework.
package mocks

import (
	"context"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kara-engine/kara/internal/domain"
)

// Splitter is a manual mock of splitting.Splitter.
type Splitter struct {
	SplitFunc func(text string) ([]domain.Segment, error)
}

// Split implements splitting.Splitter.
func (m *Splitter) Split(text string) ([]domain.Segment, error) {
	if m.SplitFunc != nil {
		return m.SplitFunc(text)
	}
	return nil, nil
}

// Hasher is a manual mock of hashing.Hasher.
type Hasher struct {
	HashFunc func(content []byte) domain.Digest
}

// Hash implements hashing.Hasher.
func (m *Hasher) Hash(content []byte) domain.Digest {
	if m.HashFunc != nil {
		return m.HashFunc(content)
	}
	return domain.Digest{}
}

// QdrantClient is a manual mock of store.Client.
type QdrantClient struct {
	UpsertFunc           func(ctx context.Context, in *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	DeleteFunc           func(ctx context.Context, in *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	CollectionExistsFunc func(ctx context.Context, collectionName string) (bool, error)
	CreateCollectionFunc func(ctx context.Context, in *qdrant.CreateCollection) error
}

func (m *QdrantClient) Upsert(ctx context.Context, in *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, in)
	}
	return &qdrant.UpdateResult{}, nil
}

func (m *QdrantClient) Delete(ctx context.Context, in *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, in)
	}
	return &qdrant.UpdateResult{}, nil
}

func (m *QdrantClient) CollectionExists(ctx context.Context, collectionName string) (bool, error) {
	if m.CollectionExistsFunc != nil {
		return m.CollectionExistsFunc(ctx, collectionName)
	}
	return true, nil
}

func (m *QdrantClient) CreateCollection(ctx context.Context, in *qdrant.CreateCollection) error {
	if m.CreateCollectionFunc != nil {
		return m.CreateCollectionFunc(ctx, in)
	}
	return nil
}
