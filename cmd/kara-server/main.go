// Command kara-server runs the demo HTTP service over the updater: a
// corpus re-chunking endpoint backed by Redis for chunked-document
// persistence and Qdrant for downstream vector-index sync, wired the same
// way the teacher wires its own Ollama/Qdrant/Redis services in
// cmd/rag-server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/kara-engine/kara/internal/api"
	"github.com/kara-engine/kara/internal/cache"
	"github.com/kara-engine/kara/internal/config"
	"github.com/kara-engine/kara/internal/domain"
	"github.com/kara-engine/kara/internal/hashing"
	"github.com/kara-engine/kara/internal/logger"
	"github.com/kara-engine/kara/internal/splitting"
	"github.com/kara-engine/kara/internal/store"
	"github.com/kara-engine/kara/internal/updater"
	"github.com/kara-engine/kara/internal/watch"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	loggerCfg := logger.Config{
		Level:  logger.Level(cfg.LogLevel),
		Format: cfg.LogFormat,
	}
	if err := logger.Init(loggerCfg); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	logger.Info("kara server starting",
		"redis_url", cfg.RedisURL,
		"qdrant_url", cfg.QdrantURL,
		"collection", cfg.QdrantCollection,
		"port", cfg.ServerPort,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	corpora := cache.NewRedisStore(redisClient, "kara:")

	qdrantSync, err := store.NewQdrantSync(cfg.QdrantURL, cfg.QdrantCollection)
	if err != nil {
		logger.Error("failed to initialize Qdrant sync", "error", err)
		os.Exit(1)
	}
	if err := qdrantSync.EnsureCollection(ctx, 0); err != nil {
		logger.Error("failed to ensure Qdrant collection", "error", err)
		os.Exit(1)
	}

	opts := config.Options{
		MaxChunkSize: cfg.MaxChunkSize,
		Epsilon:      cfg.Epsilon,
		Splitter:     splitting.NewRecursiveCharacterSplitter(),
		Hasher:       hashing.SHA256Hasher{},
	}
	u, err := updater.New(opts, true)
	if err != nil {
		logger.Error("failed to initialize updater", "error", err)
		os.Exit(1)
	}

	if cfg.CorpusDir != "" {
		dirWatcher, err := watchCorpusDir(cfg.CorpusDir, u, corpora, qdrantSync)
		if err != nil {
			logger.Error("failed to start corpus directory watcher", "error", err)
		} else {
			go func() {
				if err := dirWatcher.Start(ctx); err != nil {
					logger.Error("corpus directory watcher stopped", "error", err)
				}
			}()
			defer dirWatcher.Stop()
		}
	}

	server := api.NewServer(cfg.ServerPort, u, corpora, qdrantSync)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("server exited", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
}

// watchCorpusDir sets up a DirectoryWatcher over dir that treats the whole
// directory as a single corpus, keyed by its base name: whenever a file
// settles after a burst of edits, it re-reads every file in the directory
// and calls u.Update (or u.Create, the first time) against whatever is
// cached for that corpus, persisting and syncing the result exactly like
// the HTTP handler does.
func watchCorpusDir(dir string, u *updater.Updater, corpora *cache.RedisStore, sync *store.QdrantSync) (*watch.DirectoryWatcher, error) {
	corpusID := filepath.Base(dir)

	handler := func(ctx context.Context, path string, event watch.FileEvent) error {
		logger.Info("corpus file changed, re-chunking", "path", path, "event", event, "corpus_id", corpusID)

		documents, err := readCorpusDocuments(dir)
		if err != nil {
			return err
		}

		previous, err := corpora.Load(ctx, corpusID)
		if err != nil {
			return err
		}

		var result *domain.UpdateResult
		if previous == nil {
			result, err = u.Create(ctx, documents)
		} else {
			result, err = u.Update(ctx, previous, documents)
		}
		if err != nil {
			return err
		}

		if err := corpora.Save(ctx, corpusID, result.Document); err != nil {
			return err
		}
		if sync != nil {
			var deletedDigests []domain.Digest
			if previous != nil {
				current := result.Document.DigestSet()
				for d := range previous.DigestSet() {
					if _, ok := current[d]; !ok {
						deletedDigests = append(deletedDigests, d)
					}
				}
			}
			if err := sync.Sync(ctx, result, deletedDigests, 0); err != nil {
				logger.Error("vector index sync failed after watch re-chunk", "corpus_id", corpusID, "error", err)
			}
		}

		logger.Info("re-chunked corpus from directory watch",
			"corpus_id", corpusID, "added", result.NumAdded, "reused", result.NumReused, "deleted", result.NumDeleted)
		return nil
	}

	w, err := watch.NewDirectoryWatcher(handler, 0)
	if err != nil {
		return nil, err
	}
	if err := w.AddPath(dir); err != nil {
		return nil, err
	}
	return w, nil
}

// readCorpusDocuments reads every regular file directly inside dir (in a
// stable, sorted order) as one document string each.
func readCorpusDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	documents := make([]string, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		documents = append(documents, string(data))
	}
	return documents, nil
}
