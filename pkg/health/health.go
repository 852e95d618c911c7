// Package health exposes liveness and readiness probes for the storefront
// services. Registered checks run on a shared background ticker; probe
// handlers serve the last observed state and never execute checks inline.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Kind separates process-level liveness checks from traffic-readiness checks.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

// CheckFunc reports nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	kind    Kind
	timeout time.Duration
	fn      CheckFunc

	// err holds the result of the latest run. Written by the scheduler
	// goroutine, read by probe handlers.
	err atomic.Pointer[error]
}

func (c *check) lastErr() error {
	if p := c.err.Load(); p != nil {
		return *p
	}
	return nil
}

// Service tracks check state for one process.
type Service struct {
	ready atomic.Bool

	mu     sync.RWMutex
	checks []*check
	cancel context.CancelFunc
}

// NewService returns a Service in the not-ready state. Call SetReady(true)
// once startup has finished.
func NewService() *Service {
	return &Service{}
}

// Register adds a check. Checks registered after Start are picked up on the
// next tick.
func (s *Service) Register(name string, kind Kind, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, &check{name: name, kind: kind, timeout: timeout, fn: fn})
}

// Start runs every registered check once, then again each interval, until
// Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.runAll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runAll(ctx)
			}
		}
	}()
}

// Stop halts the scheduler. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Set false during graceful
// shutdown so load balancers drain the instance before the listener closes.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness check
// passed on its last run.
func (s *Service) IsReady() bool {
	if !s.ready.Load() {
		return false
	}
	return len(s.failures(Readiness)) == 0
}

func (s *Service) runAll(ctx context.Context) {
	s.mu.RLock()
	checks := make([]*check, len(s.checks))
	copy(checks, s.checks)
	s.mu.RUnlock()

	for _, c := range checks {
		runCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(runCtx)
		cancel()
		c.err.Store(&err)
	}
}

func (s *Service) failures(kind Kind) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	failed := make(map[string]string)
	for _, c := range s.checks {
		if c.kind != kind {
			continue
		}
		if err := c.lastErr(); err != nil {
			failed[c.name] = err.Error()
		}
	}
	return failed
}

type probeResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveHandler serves the /livez probe.
func (s *Service) LiveHandler(w http.ResponseWriter, _ *http.Request) {
	writeProbe(w, s.failures(Liveness))
}

// ReadyHandler serves the /readyz probe.
func (s *Service) ReadyHandler(w http.ResponseWriter, _ *http.Request) {
	failed := s.failures(Readiness)
	if !s.ready.Load() {
		failed["startup"] = "service is not ready"
	}
	writeProbe(w, failed)
}

func writeProbe(w http.ResponseWriter, failed map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := probeResponse{Status: "ok"}
	code := http.StatusOK
	if len(failed) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failed
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
