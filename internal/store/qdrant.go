// Package store syncs an UpdateResult's added and deleted chunks into
// Qdrant so the downstream vector index tracks the chunk set a Updater
// pass just produced. Embedding itself is out of spec.md §1's scope — the
// vector left on each upserted point is the caller's to fill in later.
package store

import (
	"context"
	"net"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/kara-engine/kara/internal/domain"
	"github.com/kara-engine/kara/internal/errors"
	"github.com/kara-engine/kara/internal/logger"
)

// Client is the subset of *qdrant.Client this package depends on, so tests
// can substitute a manual mock instead of a live Qdrant instance.
type Client interface {
	Upsert(ctx context.Context, in *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Delete(ctx context.Context, in *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, in *qdrant.CreateCollection) error
}

// QdrantSync keeps a Qdrant collection's points aligned with the chunk set
// an Updater pass reports as added or deleted. A chunk's digest, hex
// encoded, is its point ID.
type QdrantSync struct {
	client     Client
	collection string
}

// NewQdrantSync dials Qdrant at url (either "host:port" or an "http(s)://"
// URL; 6333 the HTTP port is mapped to the gRPC port 6334 since the
// go-client is gRPC-based) and returns a QdrantSync bound to collection.
func NewQdrantSync(url, collection string) (*QdrantSync, error) {
	host, port := parseHostPort(url)

	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, errors.ExternalError("failed to create Qdrant client", err)
	}

	return &QdrantSync{client: client, collection: collection}, nil
}

func parseHostPort(url string) (string, int) {
	host := "localhost"
	port := 6334

	clean := strings.TrimPrefix(url, "http://")
	clean = strings.TrimPrefix(clean, "https://")

	if h, p, err := net.SplitHostPort(clean); err == nil {
		host = h
		if pi, err := strconv.Atoi(p); err == nil {
			if pi == 6333 {
				port = 6334
			} else {
				port = pi
			}
		}
	} else if clean != "" {
		host = clean
	}

	return host, port
}

// EnsureCollection creates the collection if it does not already exist,
// sized for vectorSize-dimensional cosine-distance vectors.
func (s *QdrantSync) EnsureCollection(ctx context.Context, vectorSize int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return errors.ExternalError("failed to check Qdrant collection existence", err)
	}
	if exists {
		return nil
	}

	logger.Info("creating Qdrant collection", "name", s.collection, "size", vectorSize)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return errors.ExternalError("failed to create Qdrant collection", err)
	}
	return nil
}

// Sync upserts every chunk currently in result.Document (reused chunks
// included — Qdrant upsert is idempotent, and re-sending them keeps the
// payload fresh even if it drifted) and deletes every point whose digest is
// in deletedDigests. vectorSize zero-fills the vector left for a later
// embedding pass to populate.
func (s *QdrantSync) Sync(ctx context.Context, result *domain.UpdateResult, deletedDigests []domain.Digest, vectorSize int) error {
	if err := s.upsertAdded(ctx, result, vectorSize); err != nil {
		return err
	}
	return s.deletePoints(ctx, deletedDigests)
}

func (s *QdrantSync) upsertAdded(ctx context.Context, result *domain.UpdateResult, vectorSize int) error {
	chunks := result.Document.Chunks()
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, c := range chunks {
		payload := qdrant.NewValueMap(map[string]any{
			"document_id": float64(c.DocumentID),
			"content":     c.Content(),
		})
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(digestUUID(c.Digest)),
			Vectors: qdrant.NewVectorsDense(make([]float32, vectorSize)),
			Payload: payload,
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
	})
	if err != nil {
		return errors.ExternalError("failed to upsert chunks to Qdrant", err)
	}

	logger.Debug("synced chunks to Qdrant", "count", len(points))
	return nil
}

func (s *QdrantSync) deletePoints(ctx context.Context, digests []domain.Digest) error {
	if len(digests) == 0 {
		return nil
	}

	ids := make([]*qdrant.PointId, len(digests))
	for i, d := range digests {
		ids[i] = qdrant.NewIDUUID(digestUUID(d))
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelector(ids...),
	})
	if err != nil {
		return errors.ExternalError("failed to delete chunks from Qdrant", err)
	}

	logger.Info("deleted chunks from Qdrant", "count", len(digests))
	return nil
}

// digestUUID formats a 16-byte digest as a UUID string (8-4-4-4-12 hex
// groups). Qdrant point IDs must be a UUID or an unsigned integer; a
// content digest is exactly 16 bytes, so this is a direct, lossless
// encoding rather than a derived hash of the digest.
func digestUUID(d domain.Digest) string {
	const hexDigits = "0123456789abcdef"
	hex := make([]byte, 32)
	for i, b := range d {
		hex[i*2] = hexDigits[b>>4]
		hex[i*2+1] = hexDigits[b&0x0f]
	}
	var buf strings.Builder
	buf.Grow(36)
	buf.Write(hex[0:8])
	buf.WriteByte('-')
	buf.Write(hex[8:12])
	buf.WriteByte('-')
	buf.Write(hex[12:16])
	buf.WriteByte('-')
	buf.Write(hex[16:20])
	buf.WriteByte('-')
	buf.Write(hex[20:32])
	return buf.String()
}
