// Package planner implements the KARA update algorithm: given a sequence of
// segments and the digest set of a previously computed chunk set, it finds
// the partition into bounded-length chunks that minimizes a cost function
// favoring exact-content reuse. This is the hard part of the system — see
// SPEC_FULL.md §[MODULE] planner.
package planner

import (
	"math"

	"github.com/kara-engine/kara/internal/domain"
	"github.com/kara-engine/kara/internal/errors"
	"github.com/kara-engine/kara/internal/hashing"
)

// costTolerance absorbs floating-point rounding noise when comparing
// accumulated path costs for exact ties. Costs are sums of ε (0,1) and 1.0
// terms, so an absolute tolerance far below the smallest representable gap
// between any two realistic plans is safe.
const costTolerance = 1e-9

// Config bounds and parametrizes a single planning pass.
type Config struct {
	MaxChunkSize    int
	Epsilon         float64
	PreviousDigests map[domain.Digest]struct{}
	Hasher          hashing.Hasher
}

// Planner runs the KARA shortest-path algorithm over one document's
// segment sequence at a time.
type Planner struct{}

// New returns a Planner. The planner itself holds no state between calls.
func New() *Planner {
	return &Planner{}
}

// Result is the output of a single-document planning pass. ReuseCandidate
// parallels Chunks: ReuseCandidate[i] is true iff Chunks[i]'s digest was
// present in Config.PreviousDigests at plan time (its edge was costed at
// ε). It does NOT mean the chunk is ultimately counted as a reuse — a
// digest that appears in more than one chosen chunk, in this document or
// across documents, may only be counted once; see internal/updater, which
// performs that consume-once accounting globally once every document's
// pass has produced its chunks, per spec.md §4.3 and §4.5.
type Result struct {
	Chunks         []domain.Chunk
	ReuseCandidate []bool
}

// edge is a candidate chunk from split boundary `from` to `to`.
type edge struct {
	to     int
	cost   float64
	digest domain.Digest
	reused bool
}

// Plan computes the optimal partition of segments into chunks for one
// document. documentID is stamped onto every returned chunk.
func (p *Planner) Plan(documentID int, segments []domain.Segment, cfg Config) (*Result, error) {
	if cfg.MaxChunkSize <= 0 || cfg.Epsilon <= 0 || cfg.Epsilon >= 1 || cfg.Hasher == nil {
		return nil, errors.InvalidConfigurationError("planner requires max_chunk_size > 0, epsilon in (0,1), and a hasher")
	}

	n := len(segments)
	if n == 0 {
		return &Result{}, nil
	}

	edges, err := p.buildEdges(documentID, segments, cfg)
	if err != nil {
		return nil, err
	}

	dist, prev, prevEdge := p.shortestPath(n, edges)
	if math.IsInf(dist[n], 1) {
		// Unreachable only if some single segment exceeds the bound, which
		// buildEdges already rejects, so this should not happen.
		return nil, errors.InvalidConfigurationError("no feasible partition exists for this segment sequence")
	}

	return p.reconstruct(documentID, segments, prev, prevEdge), nil
}

// buildEdges enumerates, for every boundary i, all feasible chunks
// beginning right after i: j = i+1, i+2, ... while the running character
// sum stays within MaxChunkSize.
func (p *Planner) buildEdges(documentID int, segments []domain.Segment, cfg Config) ([][]edge, error) {
	n := len(segments)
	edges := make([][]edge, n)

	for i := 0; i < n; i++ {
		if segments[i].Len() > cfg.MaxChunkSize {
			return nil, errors.OversizedSegmentError(documentID, i, segments[i].Len())
		}

		running := 0
		var content []byte
		for j := i; j < n; j++ {
			running += segments[j].Len()
			if running > cfg.MaxChunkSize {
				break
			}
			content = append(content, segments[j]...)

			digest := cfg.Hasher.Hash(content)
			_, isReused := cfg.PreviousDigests[digest]
			cost := 1.0
			if isReused {
				cost = cfg.Epsilon
			}

			edges[i] = append(edges[i], edge{to: j + 1, cost: cost, digest: digest, reused: isReused})
		}
	}

	return edges, nil
}

// shortestPath relaxes every edge in left-to-right node order. Because
// every edge in this DAG runs from a lower-indexed node to a higher one,
// node i's dist/hops/prev are final by the time node i is used as a
// source, so a single forward pass suffices — no priority queue needed.
func (p *Planner) shortestPath(n int, edges [][]edge) (dist []float64, prev []int, prevEdge []edge) {
	dist = make([]float64, n+1)
	hops := make([]int, n+1)
	prev = make([]int, n+1)
	prevEdge = make([]edge, n+1)
	for i := range dist {
		dist[i] = math.Inf(1)
		prev[i] = -1
	}
	dist[0] = 0

	for i := 0; i < n; i++ {
		if math.IsInf(dist[i], 1) {
			continue
		}
		for _, e := range edges[i] {
			candidateCost := dist[i] + e.cost
			candidateHops := hops[i] + 1
			if p.better(candidateCost, candidateHops, i, dist[e.to], hops[e.to], prev, e.to) {
				dist[e.to] = candidateCost
				hops[e.to] = candidateHops
				prev[e.to] = i
				prevEdge[e.to] = e
			}
		}
	}

	return dist, prev, prevEdge
}

// better decides whether a candidate path arriving at node `to` through
// predecessor `from` beats the path currently recorded for `to`, applying
// the three-level tie-break from spec.md §4.3: lower cost first, then
// fewer hops (chunks), then — on a full tie — the path whose earliest
// differing chunk boundary ends later (a longer first divergent chunk).
func (p *Planner) better(candidateCost float64, candidateHops, from int, currentCost float64, currentHops int, prev []int, to int) bool {
	if math.IsInf(currentCost, 1) {
		return true
	}
	if candidateCost < currentCost-costTolerance {
		return true
	}
	if candidateCost > currentCost+costTolerance {
		return false
	}
	// Cost ties.
	if candidateHops < currentHops {
		return true
	}
	if candidateHops > currentHops {
		return false
	}
	// Cost and hop count both tie: compare full boundary sequences.
	candidateBoundaries := append(boundaryPath(prev, from), to)
	currentBoundaries := boundaryPath(prev, to)
	return firstDivergenceFavorsCandidate(currentBoundaries, candidateBoundaries)
}

// boundaryPath walks predecessor pointers from node back to 0 and returns
// the boundary positions in forward order, starting with 0 but not
// including node itself (the caller appends the final boundary).
func boundaryPath(prev []int, node int) []int {
	var reversed []int
	for n := node; n != 0; n = prev[n] {
		reversed = append(reversed, n)
	}
	reversed = append(reversed, 0)

	forward := make([]int, len(reversed))
	for i, v := range reversed {
		forward[len(reversed)-1-i] = v
	}
	return forward
}

// firstDivergenceFavorsCandidate compares two equal-length boundary
// sequences (both start at 0 and end at the same node) and reports whether
// the candidate sequence's value at the first index where they differ is
// larger — i.e. its first differing chunk ends later.
func firstDivergenceFavorsCandidate(current, candidate []int) bool {
	for i := 0; i < len(current) && i < len(candidate); i++ {
		if current[i] != candidate[i] {
			return candidate[i] > current[i]
		}
	}
	return false
}

// reconstruct walks back-pointers from N to 0, emitting chunks in document
// order along with whether each chunk's edge was costed as a reuse
// candidate.
func (p *Planner) reconstruct(documentID int, segments []domain.Segment, prev []int, prevEdge []edge) *Result {
	n := len(segments)

	var chunks []domain.Chunk
	var reuseCandidate []bool
	for node := n; node > 0; {
		e := prevEdge[node]
		start := prev[node]

		segs := make([]domain.Segment, node-start)
		copy(segs, segments[start:node])

		chunk := domain.Chunk{Segments: segs, Digest: e.digest, DocumentID: documentID}
		chunks = append([]domain.Chunk{chunk}, chunks...)
		reuseCandidate = append([]bool{e.reused}, reuseCandidate...)

		node = start
	}

	return &Result{Chunks: chunks, ReuseCandidate: reuseCandidate}
}
