// Package metrics provides application-level metrics collection using atomic
// counters. All methods are safe on a nil *Metrics.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Search cycles
	searchesTotal   atomic.Int64
	txSearches      atomic.Int64
	addressSearches atomic.Int64
	nameSearches    atomic.Int64
	invalidSearches atomic.Int64
	navigations     atomic.Int64
	alreadyAtTarget atomic.Int64
	invalidOutcomes atomic.Int64

	// Name service lookups
	lookupsTotal      atomic.Int64
	lookupErrorsTotal atomic.Int64
	lookupLatencyNano atomic.Int64

	// RPC metrics
	rpcCallsTotal   atomic.Int64
	rpcErrorsTotal  atomic.Int64
	rpcLatencyNanos atomic.Int64

	// Cache metrics
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// Global is the global metrics instance.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordSearch records the start of a search cycle for an input kind.
func (m *Metrics) RecordSearch(kind string) {
	if m == nil {
		return
	}
	m.searchesTotal.Add(1)
	switch kind {
	case "transaction":
		m.txSearches.Add(1)
	case "address":
		m.addressSearches.Add(1)
	case "name":
		m.nameSearches.Add(1)
	default:
		m.invalidSearches.Add(1)
	}
}

// RecordOutcome records how a search cycle ended.
func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	switch outcome {
	case "navigated":
		m.navigations.Add(1)
	case "already_at_target":
		m.alreadyAtTarget.Add(1)
	case "invalid":
		m.invalidOutcomes.Add(1)
	}
}

// RecordLookup records a name service lookup.
func (m *Metrics) RecordLookup(_ string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.lookupsTotal.Add(1)
	m.lookupLatencyNano.Add(duration.Nanoseconds())
	if err != nil {
		m.lookupErrorsTotal.Add(1)
	}
}

// RecordRPCCall records a JSON-RPC round trip.
func (m *Metrics) RecordRPCCall(_ string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.rpcCallsTotal.Add(1)
	m.rpcLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.rpcErrorsTotal.Add(1)
	}
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Add(1)
}

// Snapshot is a point-in-time copy of all metrics.
type Snapshot struct {
	SearchesTotal       int64   `json:"searches_total"`
	TransactionSearches int64   `json:"transaction_searches"`
	AddressSearches     int64   `json:"address_searches"`
	NameSearches        int64   `json:"name_searches"`
	InvalidSearches     int64   `json:"invalid_searches"`
	Navigations         int64   `json:"navigations"`
	AlreadyAtTarget     int64   `json:"already_at_target"`
	InvalidOutcomes     int64   `json:"invalid_outcomes"`
	LookupsTotal        int64   `json:"lookups_total"`
	LookupErrorsTotal   int64   `json:"lookup_errors_total"`
	LookupLatencyAvgMs  float64 `json:"lookup_latency_avg_ms"`
	RPCCallsTotal       int64   `json:"rpc_calls_total"`
	RPCErrorsTotal      int64   `json:"rpc_errors_total"`
	RPCLatencyAvgMs     float64 `json:"rpc_latency_avg_ms"`
	CacheHits           int64   `json:"cache_hits"`
	CacheMisses         int64   `json:"cache_misses"`
	CacheHitRatePercent float64 `json:"cache_hit_rate_percent"`
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	return Snapshot{
		SearchesTotal:       m.searchesTotal.Load(),
		TransactionSearches: m.txSearches.Load(),
		AddressSearches:     m.addressSearches.Load(),
		NameSearches:        m.nameSearches.Load(),
		InvalidSearches:     m.invalidSearches.Load(),
		Navigations:         m.navigations.Load(),
		AlreadyAtTarget:     m.alreadyAtTarget.Load(),
		InvalidOutcomes:     m.invalidOutcomes.Load(),
		LookupsTotal:        m.lookupsTotal.Load(),
		LookupErrorsTotal:   m.lookupErrorsTotal.Load(),
		LookupLatencyAvgMs:  averageMs(m.lookupLatencyNano.Load(), m.lookupsTotal.Load()),
		RPCCallsTotal:       m.rpcCallsTotal.Load(),
		RPCErrorsTotal:      m.rpcErrorsTotal.Load(),
		RPCLatencyAvgMs:     m.RPCLatencyAvgMs(),
		CacheHits:           m.cacheHits.Load(),
		CacheMisses:         m.cacheMisses.Load(),
		CacheHitRatePercent: m.CacheHitRate(),
	}
}

// RPCLatencyAvgMs returns the average RPC latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) RPCLatencyAvgMs() float64 {
	if m == nil {
		return 0
	}
	return averageMs(m.rpcLatencyNanos.Load(), m.rpcCallsTotal.Load())
}

// CacheHitRate returns the cache hit rate as a percentage (0-100).
// Returns 0 if no cache operations have occurred.
func (m *Metrics) CacheHitRate() float64 {
	if m == nil {
		return 0
	}
	hits := m.cacheHits.Load()
	total := hits + m.cacheMisses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Reset resets all metrics to zero.
func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	for _, c := range []*atomic.Int64{
		&m.searchesTotal, &m.txSearches, &m.addressSearches, &m.nameSearches, &m.invalidSearches,
		&m.navigations, &m.alreadyAtTarget, &m.invalidOutcomes,
		&m.lookupsTotal, &m.lookupErrorsTotal, &m.lookupLatencyNano,
		&m.rpcCallsTotal, &m.rpcErrorsTotal, &m.rpcLatencyNanos,
		&m.cacheHits, &m.cacheMisses,
	} {
		c.Store(0)
	}
}

func averageMs(totalNanos, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNanos) / float64(count) / 1e6
}
