// Package api exposes the Updater facade over HTTP, modeled on the
// teacher's own gin-based server: the same gin.New() + gin.Recovery() +
// structured request-logging middleware shape, rewritten from code-index/
// query/status routes to corpus create/update/stats routes.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kara-engine/kara/internal/domain"
	"github.com/kara-engine/kara/internal/errors"
	"github.com/kara-engine/kara/internal/logger"
)

// CorpusStore is the subset of cache.RedisStore the server depends on.
type CorpusStore interface {
	Load(ctx context.Context, corpusID string) (*domain.ChunkedDocument, error)
	Save(ctx context.Context, corpusID string, doc *domain.ChunkedDocument) error
}

// Syncer is the subset of store.QdrantSync the server depends on. It is
// optional: a nil Syncer simply skips downstream vector-index sync.
type Syncer interface {
	Sync(ctx context.Context, result *domain.UpdateResult, deletedDigests []domain.Digest, vectorSize int) error
}

// Updater is the subset of updater.Updater the server depends on.
type Updater interface {
	Create(ctx context.Context, documents []string) (*domain.UpdateResult, error)
	Update(ctx context.Context, previous *domain.ChunkedDocument, documents []string) (*domain.UpdateResult, error)
}

// Server handles HTTP requests for corpus re-chunking.
type Server struct {
	Router *gin.Engine

	updater Updater
	corpora CorpusStore
	sync    Syncer
	port    string

	statsMu sync.RWMutex
	stats   map[string]float64 // corpusID -> last update's efficiency
}

// NewServer builds a Server wired to updater, corpora, and an optional
// sync (pass nil to disable vector-index sync).
func NewServer(port string, u Updater, corpora CorpusStore, sync Syncer) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("inbound request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	})

	s := &Server{
		Router:  router,
		updater: u,
		corpora: corpora,
		sync:    sync,
		port:    port,
		stats:   make(map[string]float64),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/status", s.handleStatus)

	v1 := s.Router.Group("/v1/corpora")
	{
		v1.POST("/:id/documents", s.handleUpdateDocuments)
		v1.GET("/:id/stats", s.handleStats)
	}
}

// Start runs the HTTP server; it blocks until the server errors.
func (s *Server) Start() error {
	logger.Info("starting API server", "port", s.port)
	return s.Router.Run(":" + s.port)
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

type documentsRequest struct {
	Documents []string `json:"documents" binding:"required"`
}

type updateResponse struct {
	NumAdded   int     `json:"num_added"`
	NumReused  int     `json:"num_reused"`
	NumDeleted int     `json:"num_deleted"`
	Efficiency float64 `json:"efficiency"`
	ChunkCount int     `json:"chunk_count"`
}

// handleUpdateDocuments re-chunks a corpus. If no chunked document is yet
// cached for :id, it runs Create; otherwise it runs Update against the
// cached document. The new document is cached and, if a Syncer is
// configured, synced to the vector index.
//
// @Summary Re-chunk a corpus
// @Description Splits and re-plans the given documents against the
//
//	corpus's previous chunk set, maximizing reuse by content.
//
// @Tags corpora
// @Accept json
// @Produce json
// @Param id path string true "corpus id"
// @Param request body documentsRequest true "documents to chunk"
// @Success 200 {object} updateResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /v1/corpora/{id}/documents [post]
func (s *Server) handleUpdateDocuments(c *gin.Context) {
	corpusID := c.Param("id")

	var req documentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	previous, err := s.corpora.Load(ctx, corpusID)
	if err != nil {
		logger.Error("failed to load cached corpus", "corpus_id", corpusID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load corpus"})
		return
	}

	var result *domain.UpdateResult
	var deletedDigests []domain.Digest
	if previous == nil {
		result, err = s.updater.Create(ctx, req.Documents)
	} else {
		result, err = s.updater.Update(ctx, previous, req.Documents)
		deletedDigests = digestsNotIn(previous.DigestSet(), safeDigestSet(result))
	}
	if err != nil {
		if errors.Is(err, errors.ErrorTypeOversizedSegment) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		logger.Error("planning failed", "corpus_id", corpusID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to plan chunks"})
		return
	}

	if err := s.corpora.Save(ctx, corpusID, result.Document); err != nil {
		logger.Error("failed to persist corpus", "corpus_id", corpusID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist corpus"})
		return
	}

	if s.sync != nil {
		if err := s.sync.Sync(ctx, result, deletedDigests, 0); err != nil {
			logger.Error("vector index sync failed", "corpus_id", corpusID, "error", err)
		}
	}

	s.statsMu.Lock()
	s.stats[corpusID] = result.Efficiency()
	s.statsMu.Unlock()

	c.JSON(http.StatusOK, updateResponse{
		NumAdded:   result.NumAdded,
		NumReused:  result.NumReused,
		NumDeleted: result.NumDeleted,
		Efficiency: result.Efficiency(),
		ChunkCount: result.Document.Len(),
	})
}

type statsResponse struct {
	ChunkCount  int     `json:"chunk_count"`
	DigestCount int     `json:"digest_count"`
	Efficiency  float64 `json:"efficiency"`
}

// @Summary Corpus stats
// @Description Returns the cached document's chunk count, digest count,
//
//	and the last update's efficiency.
//
// @Tags corpora
// @Produce json
// @Param id path string true "corpus id"
// @Success 200 {object} statsResponse
// @Failure 404 {object} map[string]string
// @Router /v1/corpora/{id}/stats [get]
func (s *Server) handleStats(c *gin.Context) {
	corpusID := c.Param("id")

	doc, err := s.corpora.Load(c.Request.Context(), corpusID)
	if err != nil {
		logger.Error("failed to load cached corpus", "corpus_id", corpusID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load corpus"})
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown corpus"})
		return
	}

	s.statsMu.RLock()
	efficiency := s.stats[corpusID]
	s.statsMu.RUnlock()

	c.JSON(http.StatusOK, statsResponse{
		ChunkCount:  doc.Len(),
		DigestCount: len(doc.DigestSet()),
		Efficiency:  efficiency,
	})
}

// digestsNotIn returns the digests of `from` absent from `in` — used to
// compute the set deleted by an Update call: any digest the previous
// corpus held that the new document's digest set no longer contains was
// never reused, whether or not the updater's accounting happened to
// consume a different chosen edge with the same digest.
func digestsNotIn(from, in map[domain.Digest]struct{}) []domain.Digest {
	var out []domain.Digest
	for d := range from {
		if _, ok := in[d]; !ok {
			out = append(out, d)
		}
	}
	return out
}

func safeDigestSet(result *domain.UpdateResult) map[domain.Digest]struct{} {
	if result == nil || result.Document == nil {
		return map[domain.Digest]struct{}{}
	}
	return result.Document.DigestSet()
}
