// Package cache persists a ChunkedDocument across process runs, keyed by
// corpus id. spec.md §3 leaves chunked-document persistence entirely to
// the caller; this is that caller, built the same way the teacher's own
// Redis pipeline talks to Redis.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/kara-engine/kara/internal/domain"
	"github.com/kara-engine/kara/internal/errors"
)

// storedChunk is the JSON wire shape for one chunk. Segments are joined
// into content on save and the content comes back as a single segment on
// load; round-tripping the original segment boundaries is unnecessary
// since the next Update call re-splits anyway.
type storedChunk struct {
	Content    string `json:"content"`
	Digest     string `json:"digest"`
	DocumentID int    `json:"document_id"`
}

// RedisStore persists a ChunkedDocument as a single JSON blob per corpus.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore returns a RedisStore using client, namespacing every key
// under keyPrefix.
func NewRedisStore(client *redis.Client, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

// Save serializes doc and writes it under corpusID's key. A nil or empty
// doc still writes an empty-array blob, so a later Load distinguishes
// "corpus known but empty" from "corpus never seen" (redis.Nil).
func (s *RedisStore) Save(ctx context.Context, corpusID string, doc *domain.ChunkedDocument) error {
	chunks := doc.Chunks()
	stored := make([]storedChunk, len(chunks))
	for i, c := range chunks {
		stored[i] = storedChunk{
			Content:    c.Content(),
			Digest:     hex.EncodeToString(c.Digest[:]),
			DocumentID: c.DocumentID,
		}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return errors.InternalError("failed to marshal chunked document: " + err.Error())
	}

	if err := s.client.Set(ctx, s.corpusKey(corpusID), data, 0).Err(); err != nil {
		return errors.ExternalError("failed to write chunked document to Redis", err)
	}
	return nil
}

// Load reads the chunked document previously saved for corpusID. It
// returns (nil, nil) if no document has ever been saved under that id —
// the caller's signal to treat the next call as Updater.Create rather
// than Updater.Update.
func (s *RedisStore) Load(ctx context.Context, corpusID string) (*domain.ChunkedDocument, error) {
	data, err := s.client.Get(ctx, s.corpusKey(corpusID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.ExternalError("failed to read chunked document from Redis", err)
	}

	var stored []storedChunk
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errors.InternalError("failed to unmarshal chunked document: " + err.Error())
	}

	chunks := make([]domain.Chunk, len(stored))
	for i, sc := range stored {
		var digest domain.Digest
		if raw, err := hex.DecodeString(sc.Digest); err == nil {
			copy(digest[:], raw)
		}
		chunks[i] = domain.Chunk{
			Segments:   []domain.Segment{domain.Segment(sc.Content)},
			Digest:     digest,
			DocumentID: sc.DocumentID,
		}
	}

	return domain.NewChunkedDocument(chunks), nil
}

// Delete removes corpusID's stored document entirely.
func (s *RedisStore) Delete(ctx context.Context, corpusID string) error {
	if err := s.client.Del(ctx, s.corpusKey(corpusID)).Err(); err != nil {
		return errors.ExternalError("failed to delete chunked document from Redis", err)
	}
	return nil
}

func (s *RedisStore) corpusKey(corpusID string) string {
	return fmt.Sprintf("%scorpus:%s", s.keyPrefix, corpusID)
}
