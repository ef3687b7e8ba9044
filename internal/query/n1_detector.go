package query

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"
)

// N1Detector watches executed statements and flags shapes that repeat
// many times in a short window, which usually means a caller is loading
// related rows one parent at a time instead of using Include.
type N1Detector struct {
	mu         sync.Mutex
	patterns   map[string]*PatternInfo
	maxSize    int
	threshold  int
	timeWindow time.Duration
}

// PatternInfo holds counters for one normalized statement shape
type PatternInfo struct {
	Pattern   string
	Count     int
	FirstSeen time.Time
	LastSeen  time.Time
	Tables    []string
}

const (
	// MaxTablesPerPattern caps the table names kept per pattern
	MaxTablesPerPattern = 10
	// DefaultMaxPatterns caps the number of tracked patterns
	DefaultMaxPatterns = 1000
)

// NewN1Detector creates a detector that alerts once a pattern is seen
// threshold times within timeWindow
func NewN1Detector(threshold int, timeWindow time.Duration) *N1Detector {
	return NewN1DetectorWithMaxSize(threshold, timeWindow, DefaultMaxPatterns)
}

// NewN1DetectorWithMaxSize is NewN1Detector with a custom pattern cap
func NewN1DetectorWithMaxSize(threshold int, timeWindow time.Duration, maxSize int) *N1Detector {
	return &N1Detector{
		patterns:   make(map[string]*PatternInfo),
		maxSize:    maxSize,
		threshold:  threshold,
		timeWindow: timeWindow,
	}
}

// DefaultN1Detector returns a detector with default settings
func DefaultN1Detector() *N1Detector {
	return NewN1Detector(5, time.Second)
}

// Record records an executed statement against table
func (d *N1Detector) Record(statement string, table string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pattern := NormalizeStatement(statement)
	now := time.Now()

	info, ok := d.patterns[pattern]
	if ok && now.Sub(info.FirstSeen) > d.timeWindow {
		delete(d.patterns, pattern)
		ok = false
	}
	if !ok {
		if len(d.patterns) >= d.maxSize {
			d.evictOldest()
		}
		info = &PatternInfo{Pattern: pattern, FirstSeen: now}
		d.patterns[pattern] = info
	}

	info.Count++
	info.LastSeen = now

	for _, tn := range info.Tables {
		if tn == table {
			return
		}
	}
	if len(info.Tables) < MaxTablesPerPattern {
		info.Tables = append(info.Tables, table)
	}
}

// Check returns alerts for patterns over the threshold and forgets
// patterns whose window has passed
func (d *N1Detector) Check() []N1Alert {
	d.mu.Lock()
	defer d.mu.Unlock()

	var alerts []N1Alert
	now := time.Now()

	for pattern, info := range d.patterns {
		if now.Sub(info.FirstSeen) > d.timeWindow {
			delete(d.patterns, pattern)
			continue
		}
		if info.Count >= d.threshold {
			alerts = append(alerts, N1Alert{
				Pattern: pattern,
				Count:   info.Count,
				Tables:  append([]string(nil), info.Tables...),
				Elapsed: now.Sub(info.FirstSeen),
			})
		}
	}

	return alerts
}

// N1Alert describes a repeated statement pattern
type N1Alert struct {
	Pattern string
	Count   int
	Tables  []string
	Elapsed time.Duration
}

// String returns a string representation of the alert
func (a N1Alert) String() string {
	return fmt.Sprintf("possible N+1: %q executed %d times in %v on %v",
		a.Pattern, a.Count, a.Elapsed, a.Tables)
}

func (d *N1Detector) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, info := range d.patterns {
		if first || info.FirstSeen.Before(oldestTime) {
			oldestKey = key
			oldestTime = info.FirstSeen
			first = false
		}
	}

	if !first {
		delete(d.patterns, oldestKey)
	}
}

var (
	positionalParam = regexp.MustCompile(`\$\d+`)
	inList          = regexp.MustCompile(`IN \((\?(, )?)+\)`)
	whitespace      = regexp.MustCompile(`\s+`)
)

// NormalizeStatement collapses placeholders and IN lists so statements
// that differ only in bound values share a pattern
func NormalizeStatement(statement string) string {
	s := whitespace.ReplaceAllString(strings.TrimSpace(statement), " ")
	s = positionalParam.ReplaceAllString(s, "?")
	s = inList.ReplaceAllString(s, "IN (...)")
	return s
}

// StartMonitoring calls callback with pending alerts every interval until
// ctx is done
func (d *N1Detector) StartMonitoring(ctx context.Context, interval time.Duration, callback func([]N1Alert)) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if alerts := d.Check(); len(alerts) > 0 && callback != nil {
					callback(alerts)
				}
			}
		}
	}()
}
