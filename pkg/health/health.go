// Package health implements Kubernetes-style liveness and readiness probes.
//
// Every registered probe runs on its own ticker goroutine. Probes carry
// consecutive failure and success thresholds so a single slow database ping
// does not flip the service out of rotation: a probe must fail
// failThreshold times in a row to go unhealthy and pass okThreshold times
// in a row to come back.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// CheckFunc probes one component. Nil means healthy.
type CheckFunc func(ctx context.Context) error

// Default thresholds, matching common Kubernetes probe settings.
const (
	defaultFailThreshold = 3
	defaultOKThreshold   = 1
)

// probe is a single registered check plus its runtime state.
//
// tick() runs on exactly one goroutine per probe, so the streak counters
// need no synchronization. healthy and lastErr are read from HTTP handler
// goroutines and therefore use atomics.
type probe struct {
	name    string
	timeout time.Duration
	check   CheckFunc

	failThreshold int
	okThreshold   int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	failStreak int
	okStreak   int
}

func newProbe(name string, timeout time.Duration, check CheckFunc) *probe {
	p := &probe{
		name:          name,
		timeout:       timeout,
		check:         check,
		failThreshold: defaultFailThreshold,
		okThreshold:   defaultOKThreshold,
	}
	// Start healthy so a service is not marked down before the first tick.
	p.healthy.Store(true)
	return p
}

// tick runs the check once and advances the streak counters. Single
// goroutine only.
func (p *probe) tick(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.check(checkCtx)
	p.lastErr.Store(&err)

	if err != nil {
		p.okStreak = 0
		p.failStreak++
		if p.failStreak >= p.failThreshold {
			p.healthy.Store(false)
		}
		return
	}

	p.failStreak = 0
	p.okStreak++
	if p.okStreak >= p.okThreshold {
		p.healthy.Store(true)
	}
}

func (p *probe) isHealthy() bool {
	return p.healthy.Load()
}

func (p *probe) failure() error {
	if ptr := p.lastErr.Load(); ptr != nil {
		return *ptr
	}
	return nil
}

// Health aggregates liveness and readiness probes for a service.
type Health struct {
	ready atomic.Bool

	// mu guards the probe slices and cancel. Registration happens before
	// Start; handlers only snapshot the slices under RLock.
	mu        sync.RWMutex
	liveness  []*probe
	readiness []*probe
	cancel    context.CancelFunc
}

// New returns an empty Health in the not-ready state. Call SetReady(true)
// once startup finishes.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a probe answering "is this process stuck".
// Goroutine counts and GC pauses belong here.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newProbe(name, timeout, check))
}

// AddReadinessCheck registers a probe answering "can this process serve
// traffic". Database connectivity belongs here.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newProbe(name, timeout, check))
}

// Start launches one ticker goroutine per registered probe. Register all
// probes before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	probes := make([]*probe, 0, len(h.liveness)+len(h.readiness))
	probes = append(probes, h.liveness...)
	probes = append(probes, h.readiness...)
	h.mu.Unlock()

	for _, p := range probes {
		go func(p *probe) {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			p.tick(ctx)
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					p.tick(ctx)
				}
			}
		}(p)
	}
}

// Stop cancels all probe goroutines. Safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Set true after initialization
// and false at the start of graceful shutdown to drain traffic.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the manual gate is open and every readiness probe
// currently passes.
func (h *Health) IsReady() bool {
	if !h.ready.Load() {
		return false
	}

	h.mu.RLock()
	probes := h.readiness
	h.mu.RUnlock()

	for _, p := range probes {
		if !p.isHealthy() {
			return false
		}
	}
	return true
}

type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 {"status":"ok"} while every liveness
// probe passes, otherwise 503 with the failing probes listed.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	probes := make([]*probe, len(h.liveness))
	copy(probes, h.liveness)
	h.mu.RUnlock()

	writeStatus(w, failures(probes))
}

// ReadyEndpoint serves /readyz: 200 only when the manual gate is open and
// every readiness probe passes.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	ready := h.ready.Load()

	h.mu.RLock()
	probes := make([]*probe, len(h.readiness))
	copy(probes, h.readiness)
	h.mu.RUnlock()

	failed := failures(probes)
	if !ready {
		failed["_readiness"] = "service is not ready"
	}
	writeStatus(w, failed)
}

// failures maps each unhealthy probe to its last recorded error. Probes are
// never re-executed on the request path.
func failures(probes []*probe) map[string]string {
	failed := make(map[string]string)
	for _, p := range probes {
		if p.isHealthy() {
			continue
		}
		if err := p.failure(); err != nil {
			failed[p.name] = err.Error()
		} else {
			failed[p.name] = "check is unhealthy"
		}
	}
	return failed
}

func writeStatus(w http.ResponseWriter, failed map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failed) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failed
		code = http.StatusServiceUnavailable
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
