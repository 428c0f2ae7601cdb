package browser

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// slot is one P-sized browser instance paired with a K-sized page semaphore
// (spec §4.4).
type slot struct {
	instance  *Instance
	sem       chan struct{}
	healthy   bool
}

// Pool owns P browser instances, each gated by a K-deep page semaphore, and
// assigns pages to instances round-robin by URL index (spec §4.4).
type Pool struct {
	mu     sync.RWMutex
	slots  []*slot
	logger *zap.Logger
	opts   LaunchOptions
}

// NewPool constructs a Pool without starting any browsers; call Start to
// launch all P instances.
func NewPool(opts LaunchOptions, logger *zap.Logger) *Pool {
	return &Pool{logger: logger, opts: opts}
}

// Start launches all P browsers, each with a page semaphore of depth K.
// Start/stop are serial; once started, Acquire takes only the read lock.
func (p *Pool) Start(ctx context.Context, browserCount, pagesPerBrowser int) error {
	if browserCount < 1 || browserCount > 10 {
		return fmt.Errorf("browser pool: browserCount %d out of bounds [1,10]", browserCount)
	}
	if pagesPerBrowser < 1 || pagesPerBrowser > 50 {
		return fmt.Errorf("browser pool: pagesPerBrowser %d out of bounds [1,50]", pagesPerBrowser)
	}

	slots := make([]*slot, 0, browserCount)
	for i := 0; i < browserCount; i++ {
		inst, err := Launch(ctx, p.opts)
		if err != nil {
			for _, s := range slots {
				s.instance.Close()
			}
			return fmt.Errorf("browser pool: launch instance %d: %w", i, err)
		}
		slots = append(slots, &slot{
			instance: inst,
			sem:      make(chan struct{}, pagesPerBrowser),
			healthy:  true,
		})
	}

	p.mu.Lock()
	p.slots = slots
	p.mu.Unlock()
	return nil
}

// Stop closes all contexts and browsers. Idempotent.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if s.healthy {
			s.instance.Close()
		}
	}
	p.slots = nil
}

// Size returns the configured P (including any now-unhealthy slots).
func (p *Pool) Size() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.slots)
}

// HealthyCount returns the number of slots not yet marked unhealthy.
func (p *Pool) HealthyCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, s := range p.slots {
		if s.healthy {
			n++
		}
	}
	return n
}

// ErrPoolExhausted is returned when fewer than half the configured browsers
// remain healthy (spec §4.4, §7 PoolExhausted).
var ErrPoolExhausted = fmt.Errorf("browser pool: healthy browser count below P/2")

// Acquire reserves one page slot on the browser assigned to urlIndex by
// round-robin (browserIndex = urlIndex mod P), skipping unhealthy slots.
// The returned release func must be called exactly once.
func (p *Pool) Acquire(ctx context.Context, urlIndex int) (*Instance, func(), error) {
	p.mu.RLock()
	total := len(p.slots)
	healthy := 0
	for _, s := range p.slots {
		if s.healthy {
			healthy++
		}
	}
	p.mu.RUnlock()

	if total == 0 {
		return nil, nil, fmt.Errorf("browser pool: not started")
	}
	if healthy*2 < total {
		return nil, nil, ErrPoolExhausted
	}

	start := urlIndex % total
	for attempt := 0; attempt < total; attempt++ {
		idx := (start + attempt) % total

		p.mu.RLock()
		s := p.slots[idx]
		p.mu.RUnlock()

		if !s.healthy {
			continue
		}

		select {
		case s.sem <- struct{}{}:
			return s.instance, func() { <-s.sem }, nil
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
	return nil, nil, ErrPoolExhausted
}

// MarkUnhealthy flags the slot that owns instance as unhealthy so future
// round-robin acquisitions skip it (spec §4.4 Failure).
func (p *Pool) MarkUnhealthy(instance *Instance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.slots {
		if s.instance == instance {
			if s.healthy {
				s.healthy = false
				s.instance.Close()
				if p.logger != nil {
					p.logger.Warn("browser pool slot marked unhealthy")
				}
			}
			return
		}
	}
}
