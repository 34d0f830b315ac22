package repository

import (
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/okian/pulse/internal/domain/model"
	"github.com/okian/pulse/internal/domain/profile"
	"github.com/okian/pulse/pkg/metrics"
)

// Treap-based, in-memory risk index.
//
// Ordering: risk DESC, then student ID ASC (deterministic).
// "less" means ranks earlier, so in-order traversal yields the at-risk
// list from most to least concerning. Node priorities are a hash of the
// student ID, which keeps the tree balanced even though risk scores are
// coarse and heavily tied.

// record is the stored student plus the risk it was indexed under.
type record struct {
	student model.Student
	risk    float64
}

// treap node
type node struct {
	id    int64
	risk  float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aRisk, aID) should appear before (bRisk, bID).
func less(aRisk float64, aID int64, bRisk float64, bID int64) bool {
	if aRisk != bRisk {
		return aRisk > bRisk
	}
	return aID < bID
}

// priority is splitmix64 of the student ID.
func priority(id int64) uint64 {
	z := uint64(id) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func sanitize(risk float64) float64 {
	if math.IsNaN(risk) {
		return 0
	}
	return risk
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

func insert(n *node, id int64, risk float64) *node {
	if n == nil {
		return &node{id: id, risk: risk, prio: priority(id), size: 1}
	}
	if less(risk, id, n.risk, n.id) {
		n.left = insert(n.left, id, risk)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, id, risk)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, id int64, risk float64) *node {
	if n == nil {
		return nil
	}
	if risk == n.risk && id == n.id {
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, id, risk)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, id, risk)
		}
	} else if less(risk, id, n.risk, n.id) {
		n.left = deleteNode(n.left, id, risk)
	} else {
		n.right = deleteNode(n.right, id, risk)
	}
	fix(n)
	return n
}

// countAbove returns how many nodes carry a strictly higher risk.
func countAbove(n *node, risk float64) int {
	count := 0
	for n != nil {
		if n.risk > risk {
			count += 1 + nsize(n.left)
			n = n.right
		} else {
			n = n.left
		}
	}
	return count
}

// collectTopN appends up to limit nodes in rank order.
func collectTopN(n *node, limit int, out *[]*node) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTopN(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n)
	}
	if len(*out) < limit {
		collectTopN(n.right, limit, out)
	}
}

// TreapStore is a concurrency-safe Store with an O(log n) risk index.
type TreapStore struct {
	mu    sync.RWMutex
	root  *node
	byID  map[int64]record
	score func(*model.Student) float64

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
}

var _ Store = (*TreapStore)(nil)

// NewTreapStore constructs a treap store with configuration options.
// The background metrics updater stops when ctx ends or Close is called.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:                  make(map[int64]record),
		score:                 profile.RiskScore,
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	metrics.UpdateStudentsTotal(0)
	metrics.UpdateRiskIndexSize(0)
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// Upsert implements Store.Upsert with O(log n) expected time.
func (s *TreapStore) Upsert(ctx context.Context, st model.Student) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpsertLatency(float64(time.Since(start).Milliseconds()))
	}()
	if err := ctx.Err(); err != nil {
		return err
	}

	risk := sanitize(s.score(&st))

	s.mu.Lock()
	old, existed := s.byID[st.ID]
	if existed {
		s.root = deleteNode(s.root, st.ID, old.risk)
	}
	s.byID[st.ID] = record{student: st, risk: risk}
	s.root = insert(s.root, st.ID, risk)
	count := len(s.byID)
	s.mu.Unlock()

	if !existed {
		metrics.UpdateStudentsTotal(count)
		metrics.UpdateRiskIndexSize(count)
	}
	return nil
}

// Get implements Store.Get.
func (s *TreapStore) Get(ctx context.Context, id int64) (model.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Student{}, ErrNotFound
	}
	return rec.student, nil
}

// All implements Store.All.
func (s *TreapStore) All(ctx context.Context) []model.Student {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	out := make([]model.Student, 0, len(s.byID))
	for _, rec := range s.byID {
		out = append(out, rec.student)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b model.Student) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}

// Count returns the total number of students.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// AssignClusters implements Store.AssignClusters. Risk does not depend on
// the cluster label so the index is left untouched.
func (s *TreapStore) AssignClusters(ctx context.Context, labels map[int64]int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for id, cluster := range labels {
		rec, ok := s.byID[id]
		if !ok {
			continue
		}
		rec.student.ClusterID = cluster
		s.byID[id] = rec
		updated++
	}
	return updated
}

// TopRisk implements Store.TopRisk. Equal risks share a rank and the next
// distinct risk skips past them (1, 1, 3).
func (s *TreapStore) TopRisk(ctx context.Context, n int) ([]model.RiskEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*node, 0, min(n, len(s.byID)))
	collectTopN(s.root, n, &nodes)

	out := make([]model.RiskEntry, len(nodes))
	for i, nd := range nodes {
		rank := i + 1
		if i > 0 && nd.risk == nodes[i-1].risk {
			rank = out[i-1].Rank
		}
		out[i] = entry(rank, nd.id, nd.risk)
	}
	return out, nil
}

// RiskRank implements Store.RiskRank in O(log n).
func (s *TreapStore) RiskRank(ctx context.Context, id int64) (model.RiskEntry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.RiskEntry{}, ErrNotFound
	}
	return entry(countAbove(s.root, rec.risk)+1, id, rec.risk), nil
}

func entry(rank int, id int64, risk float64) model.RiskEntry {
	return model.RiskEntry{Rank: rank, StudentID: id, Score: risk, Level: profile.Level(risk)}
}

// startMetricsUpdater starts a background goroutine that refreshes repository gauges.
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *TreapStore) updateMetrics() {
	s.mu.RLock()
	students := len(s.byID)
	indexed := nsize(s.root)
	s.mu.RUnlock()

	metrics.UpdateStudentsTotal(students)
	metrics.UpdateRiskIndexSize(indexed)
}
