// Package updater implements the Create/Update facade: it splits each
// document, runs the planner once per document, assembles the results into
// one ChunkedDocument, and performs the single global consume-once walk
// that turns per-document planner output into final add/reuse/delete
// counts (see internal/planner's doc comment and DESIGN.md for why that
// walk cannot live in the planner itself).
package updater

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kara-engine/kara/internal/config"
	"github.com/kara-engine/kara/internal/document"
	"github.com/kara-engine/kara/internal/domain"
	"github.com/kara-engine/kara/internal/hashing"
	"github.com/kara-engine/kara/internal/planner"
	"github.com/kara-engine/kara/internal/validator"
)

// Updater orchestrates splitting and planning for a fixed set of Options.
type Updater struct {
	opts     config.Options
	planner  *planner.Planner
	parallel bool
}

// New validates opts (after filling in defaults) and returns an Updater.
// parallel controls whether per-document planning passes are fanned out
// with errgroup; since passes are independent this is unobservable in the
// result, only in wall-clock time for multi-document calls.
func New(opts config.Options, parallel bool) (*Updater, error) {
	opts = opts.WithDefaults()
	if err := validator.ValidateOptions(opts); err != nil {
		return nil, err
	}
	return &Updater{opts: opts, planner: planner.New(), parallel: parallel}, nil
}

// Create plans documents with no real prior corpus to reuse from: every
// resulting chunk is reported as an addition. Internally, each document's
// planning pass still seeds its own previous-digest set from the hashes of
// its own splitter segments (see selfSeededDigests) so that the first plan
// a corpus ever gets lines up with the splitter's own boundaries rather
// than the degenerate single-chunk merge pure cost-minimization would
// otherwise pick when max_chunk_size comfortably exceeds the document. This
// is purely an internal partitioning aid: it never surfaces as a reported
// reuse, since there is genuinely nothing to reuse yet.
func (u *Updater) Create(ctx context.Context, documents []string) (*domain.UpdateResult, error) {
	if len(documents) == 0 {
		return &domain.UpdateResult{Document: domain.NewChunkedDocument(nil)}, nil
	}

	results, err := u.planAll(ctx, documents, func(segments []domain.Segment) map[domain.Digest]struct{} {
		return selfSeededDigests(segments, u.opts.Hasher)
	})
	if err != nil {
		return nil, err
	}

	newDoc, err := document.Build(results...)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		if r != nil {
			total += len(r.Chunks)
		}
	}

	return &domain.UpdateResult{Document: newDoc, NumAdded: total}, nil
}

// Update plans documents against previous.DigestSet(), then runs the global
// consume-once accounting walk to turn per-chunk reuse candidacy into final
// add/reuse/delete counts.
func (u *Updater) Update(ctx context.Context, previous *domain.ChunkedDocument, documents []string) (*domain.UpdateResult, error) {
	previousDigests := previous.DigestSet()

	if len(documents) == 0 {
		return &domain.UpdateResult{
			Document:   domain.NewChunkedDocument(nil),
			NumDeleted: len(previousDigests),
		}, nil
	}

	results, err := u.planAll(ctx, documents, func(segments []domain.Segment) map[domain.Digest]struct{} {
		return previousDigests
	})
	if err != nil {
		return nil, err
	}

	newDoc, err := document.Build(results...)
	if err != nil {
		return nil, err
	}

	numAdded, numReused, consumed := accountReuse(results)
	numDeleted := len(previousDigests) - len(consumed)

	return &domain.UpdateResult{
		Document:   newDoc,
		NumAdded:   numAdded,
		NumReused:  numReused,
		NumDeleted: numDeleted,
	}, nil
}

// planAll runs one planner pass per document. digestsFor computes the
// previous-digest set each document's pass should be scored against; Update
// passes the same real set to every document, while Create derives a
// per-document self-seeded set (see selfSeededDigests).
func (u *Updater) planAll(ctx context.Context, documents []string, digestsFor func([]domain.Segment) map[domain.Digest]struct{}) ([]*planner.Result, error) {
	results := make([]*planner.Result, len(documents))
	planOne := func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		segments, err := u.opts.Splitter.Split(documents[i])
		if err != nil {
			return err
		}
		cfg := planner.Config{
			MaxChunkSize:    u.opts.MaxChunkSize,
			Epsilon:         u.opts.Epsilon,
			PreviousDigests: digestsFor(segments),
			Hasher:          u.opts.Hasher,
		}
		result, err := u.planner.Plan(i, segments, cfg)
		if err != nil {
			return err
		}
		results[i] = result
		return nil
	}

	if u.parallel {
		g, _ := errgroup.WithContext(ctx)
		for i := range documents {
			g.Go(func() error { return planOne(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range documents {
			if err := planOne(i); err != nil {
				return nil, err
			}
		}
	}
	return results, nil
}

// selfSeededDigests hashes each segment on its own, giving the planner a
// previous-digest set under which keeping a document's natural segments
// separate costs Epsilon per segment while merging any two of them costs
// 1 for the merged span. Keeping m segments apart instead of merging them
// costs m*Epsilon rather than 1, so as long as Epsilon times the number of
// segments that fit in one chunk stays below 1 (with DefaultEpsilon: fewer
// than 100 segments per chunk), the splitter's own boundaries are the
// cost-minimal plan, instead of the single whole-document chunk pure
// cost-minimization would otherwise pick against an empty digest set. With
// a larger Epsilon, runs of more than 1/Epsilon segments are merged.
func selfSeededDigests(segments []domain.Segment, hasher hashing.Hasher) map[domain.Digest]struct{} {
	seeded := make(map[domain.Digest]struct{}, len(segments))
	for _, s := range segments {
		seeded[hasher.Hash([]byte(s))] = struct{}{}
	}
	return seeded
}

// accountReuse walks every document's chunks, in document order, exactly
// once. A chunk the planner tagged as a reuse candidate counts as reused
// only the first time its digest is seen in the walk; any later
// occurrence of the same digest -- whether a duplicate within one
// document or the same content reused across two documents -- counts as
// an add, because the previous digest set held only one copy of it.
func accountReuse(results []*planner.Result) (numAdded, numReused int, consumed map[domain.Digest]struct{}) {
	consumed = make(map[domain.Digest]struct{})
	for _, r := range results {
		if r == nil {
			continue
		}
		for i, chunk := range r.Chunks {
			if r.ReuseCandidate[i] {
				if _, already := consumed[chunk.Digest]; !already {
					consumed[chunk.Digest] = struct{}{}
					numReused++
					continue
				}
			}
			numAdded++
		}
	}
	return numAdded, numReused, consumed
}
