package stats

import (
	"sync"
	"time"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/sadopc/tempo/internal/domain"
)

// defaultMemoEntries bounds a Memo; reaching it clears the cache.
const defaultMemoEntries = 256

type memoKey struct {
	hash        uint64
	nowBucket   string
	granularity Granularity
	domain      Domain
}

// Memo caches series and rolling results for its owner. Keys combine a hash
// of the collections, now truncated to the minute, the granularity and the
// domain. A zero Memo is not usable; call NewMemo.
type Memo struct {
	mu         sync.RWMutex
	maxEntries int
	series     map[memoKey][]SeriesPoint
	rolling    map[memoKey]RollingSummary
	hits       int
	misses     int
}

func NewMemo(maxEntries int) *Memo {
	if maxEntries <= 0 {
		maxEntries = defaultMemoEntries
	}
	return &Memo{
		maxEntries: maxEntries,
		series:     make(map[memoKey][]SeriesPoint),
		rolling:    make(map[memoKey]RollingSummary),
	}
}

// HashCollections fingerprints a snapshot by value.
func HashCollections(c domain.Collections) (uint64, error) {
	return hashstructure.Hash(c, hashstructure.FormatV2, nil)
}

// NowBucket is now truncated to the minute in its own location.
func NowBucket(now time.Time) string {
	return now.Format("2006-01-02T15:04 MST")
}

func (m *Memo) Series(c domain.Collections, now time.Time, g Granularity, d Domain) []SeriesPoint {
	h, err := HashCollections(c)
	if err != nil {
		return BuildSeries(g, c, now, d)
	}
	k := memoKey{hash: h, nowBucket: NowBucket(now), granularity: g, domain: d}

	m.mu.RLock()
	pts, ok := m.series[k]
	m.mu.RUnlock()
	if ok {
		m.hit()
		return pts
	}

	pts = BuildSeries(g, c, now, d)
	m.mu.Lock()
	m.evictLocked()
	m.series[k] = pts
	m.misses++
	m.mu.Unlock()
	return pts
}

func (m *Memo) Rolling(c domain.Collections, now time.Time, g Granularity) RollingSummary {
	h, err := HashCollections(c)
	if err != nil {
		return ComputeRolling(g, c, now)
	}
	k := memoKey{hash: h, nowBucket: NowBucket(now), granularity: g}

	m.mu.RLock()
	r, ok := m.rolling[k]
	m.mu.RUnlock()
	if ok {
		m.hit()
		return r
	}

	r = ComputeRolling(g, c, now)
	m.mu.Lock()
	m.evictLocked()
	m.rolling[k] = r
	m.misses++
	m.mu.Unlock()
	return r
}

func (m *Memo) hit() {
	m.mu.Lock()
	m.hits++
	m.mu.Unlock()
}

func (m *Memo) evictLocked() {
	if len(m.series)+len(m.rolling) < m.maxEntries {
		return
	}
	m.series = make(map[memoKey][]SeriesPoint)
	m.rolling = make(map[memoKey]RollingSummary)
}

// Len is the number of cached results.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.series) + len(m.rolling)
}

// Stats returns cache hits and misses since creation or the last Reset.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hits, m.misses
}

func (m *Memo) Reset() {
	m.mu.Lock()
	m.series = make(map[memoKey][]SeriesPoint)
	m.rolling = make(map[memoKey]RollingSummary)
	m.hits, m.misses = 0, 0
	m.mu.Unlock()
}
