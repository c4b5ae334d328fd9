package monitoring

import (
	"runtime"
	"sync"
	"time"
)

// Stats 进程内计数器
type Stats struct {
	mu          sync.Mutex
	startTime   time.Time
	predictions map[string]int64
	cacheHits   int64
	trainings   map[string]int64
	failures    map[string]int64
}

// Snapshot 某一时刻的计数快照
type Snapshot struct {
	Uptime      string           `json:"uptime"`
	Predictions map[string]int64 `json:"predictions"`
	CacheHits   int64            `json:"cache_hits"`
	Trainings   map[string]int64 `json:"trainings"`
	Failures    map[string]int64 `json:"training_failures"`
	Goroutines  int              `json:"goroutines"`
	HeapAlloc   uint64           `json:"heap_alloc"`
}

func NewStats() *Stats {
	return &Stats{
		startTime:   time.Now(),
		predictions: make(map[string]int64),
		trainings:   make(map[string]int64),
		failures:    make(map[string]int64),
	}
}

func (s *Stats) RecordPrediction(disease string, cached bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.predictions[disease]++
	if cached {
		s.cacheHits++
	}
}

func (s *Stats) RecordTraining(disease string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.trainings[disease]++
	} else {
		s.failures[disease]++
	}
}

func (s *Stats) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Uptime:      time.Since(s.startTime).Round(time.Second).String(),
		Predictions: copyCounts(s.predictions),
		CacheHits:   s.cacheHits,
		Trainings:   copyCounts(s.trainings),
		Failures:    copyCounts(s.failures),
		Goroutines:  runtime.NumGoroutine(),
		HeapAlloc:   mem.HeapAlloc,
	}
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
