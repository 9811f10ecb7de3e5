package utils

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// StepAggregate holds aggregate timing information for a named step.
type StepAggregate struct {
	StepName string
	Count    int
	Total    time.Duration
	Average  time.Duration
	Min      time.Duration
	Max      time.Duration
}

// PerformanceTracker records how long the scraper's steps take (login,
// date selection, per-day extraction) across a run.
type PerformanceTracker struct {
	aggregates map[string]*StepAggregate
	mu         sync.Mutex
}

func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{
		aggregates: make(map[string]*StepAggregate),
	}
}

// Track starts timing a step and returns a function that records the
// elapsed duration when called.
func (pt *PerformanceTracker) Track(name string) func() {
	start := time.Now()
	return func() {
		pt.record(name, time.Since(start))
	}
}

func (pt *PerformanceTracker) record(name string, d time.Duration) {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	agg, exists := pt.aggregates[name]
	if !exists {
		agg = &StepAggregate{
			StepName: name,
			Min:      d,
			Max:      d,
		}
		pt.aggregates[name] = agg
	}

	agg.Count++
	agg.Total += d
	agg.Average = agg.Total / time.Duration(agg.Count)

	if d < agg.Min {
		agg.Min = d
	}
	if d > agg.Max {
		agg.Max = d
	}
}

// GenerateAggregateReport generates an aggregate performance report, the
// slowest steps first.
func (pt *PerformanceTracker) GenerateAggregateReport() string {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("\n=== Aggregate Performance Report ===\n")

	var steps []*StepAggregate
	for _, agg := range pt.aggregates {
		steps = append(steps, agg)
	}
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].Total > steps[j].Total
	})

	for _, agg := range steps {
		sb.WriteString(fmt.Sprintf(
			"Step: %s\n"+
				"  Count:   %d\n"+
				"  Total:   %v\n"+
				"  Average: %v\n"+
				"  Min:     %v\n"+
				"  Max:     %v\n",
			agg.StepName,
			agg.Count,
			agg.Total.Round(time.Millisecond),
			agg.Average.Round(time.Millisecond),
			agg.Min.Round(time.Millisecond),
			agg.Max.Round(time.Millisecond),
		))
	}

	return sb.String()
}
