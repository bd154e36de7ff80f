package reconcile

import (
	"context"
	"strconv"
	"sync"
	"time"

	"site-janitor/core/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle state of a Scanner.
type State string

const (
	StateIdle     State = "idle"
	StateScanning State = "scanning"
	StateReady    State = "ready"
	StateFailed   State = "failed"
)

// ScanFunc produces a fresh report.
type ScanFunc func(ctx context.Context) (*Report, error)

// Snapshot is a point-in-time view of a Scanner.
type Snapshot struct {
	Policy Policy  `json:"policy"`
	State  State   `json:"state"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Scanner tracks the latest report of one policy.
//
// A refresh moves the scanner to Scanning and then to Ready or Failed.
// Entering Failed drops the previous report so an error is never shown
// next to stale results. Concurrent refreshes share one run. Reset abandons
// any run in flight: its result is discarded when it completes.
type Scanner struct {
	policy  Policy
	scan    ScanFunc
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu         sync.RWMutex
	state      State
	report     *Report
	err        error
	generation uint64
	epoch      uint64

	sf singleflight.Group
}

// NewScanner creates an idle Scanner.
func NewScanner(policy Policy, scan ScanFunc, logger *zap.Logger, m *metrics.Metrics) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		policy:  policy,
		scan:    scan,
		logger:  logger,
		metrics: m,
		state:   StateIdle,
	}
}

// Policy returns the policy this scanner runs.
func (s *Scanner) Policy() Policy {
	return s.policy
}

// Snapshot returns the current state and report.
func (s *Scanner) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Policy: s.policy, State: s.state, Report: s.report}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}

// Ready returns the current report when the scanner is Ready.
func (s *Scanner) Ready() (*Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, false
	}
	return s.report, true
}

// Refresh runs a scan and returns its report. Callers arriving while a scan
// is running receive that scan's result. The scan itself is detached from
// ctx: one caller going away does not fail the others.
func (s *Scanner) Refresh(ctx context.Context) (*Report, error) {
	s.mu.RLock()
	key := strconv.FormatUint(s.epoch, 10)
	s.mu.RUnlock()

	v, err, shared := s.sf.Do(key, func() (any, error) {
		gen := s.begin()

		start := time.Now()
		report, err := s.scan(context.WithoutCancel(ctx))
		elapsed := time.Since(start)

		scanned := 0
		if report != nil {
			scanned = report.Stats.Scanned
		}
		s.metrics.ObserveScan(string(s.policy), elapsed.Seconds(), scanned, err)

		if !s.finish(gen, report, err) {
			s.logger.Warn("Discarding result of abandoned scan",
				zap.String("policy", string(s.policy)),
				zap.Duration("elapsed", elapsed))
		}
		return report, err
	})
	if shared {
		s.logger.Debug("Joined running scan", zap.String("policy", string(s.policy)))
	}
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// Reset returns the scanner to Idle and abandons any scan in flight.
func (s *Scanner) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.epoch++
	s.state = StateIdle
	s.report = nil
	s.err = nil
}

func (s *Scanner) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	if s.state == StateFailed {
		s.report = nil
	}
	s.state = StateScanning
	s.err = nil
	return s.generation
}

// finish applies a result unless a newer run or a reset superseded it.
func (s *Scanner) finish(gen uint64, report *Report, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return false
	}
	if err != nil {
		s.state = StateFailed
		s.report = nil
		s.err = err
		s.logger.Error("Scan failed", zap.String("policy", string(s.policy)), zap.Error(err))
		return true
	}
	s.state = StateReady
	s.report = report
	s.err = nil
	return true
}
