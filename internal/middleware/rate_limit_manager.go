package middleware

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	OperationUpload = "upload"
	OperationRender = "render"
)

// RateLimitManager owns every per-IP limiter and evicts idle ones until its
// context is cancelled.
type RateLimitManager struct {
	visitors   map[string]*visitor
	visitorsMu sync.RWMutex

	operations   map[string]map[string]*criticalOperationVisitor
	operationsMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRateLimitManager(ctx context.Context) *RateLimitManager {
	managerCtx, cancel := context.WithCancel(ctx)

	m := &RateLimitManager{
		visitors: make(map[string]*visitor),
		operations: map[string]map[string]*criticalOperationVisitor{
			OperationUpload: make(map[string]*criticalOperationVisitor),
			OperationRender: make(map[string]*criticalOperationVisitor),
		},
		ctx:    managerCtx,
		cancel: cancel,
	}

	m.wg.Add(1)
	go m.cleanupLoop()

	return m
}

// GetVisitor retrieves or creates the general limiter for ip.
func (m *RateLimitManager) GetVisitor(ip string, requestsPerWindow int, windowSeconds int, burst int) *rate.Limiter {
	m.visitorsMu.Lock()
	defer m.visitorsMu.Unlock()

	if requestsPerWindow <= 0 {
		return nil
	}

	v, exists := m.visitors[ip]
	if !exists {
		if burst < requestsPerWindow {
			burst = requestsPerWindow
		}
		limiter := rate.NewLimiter(windowLimit(requestsPerWindow, windowSeconds), burst)
		m.visitors[ip] = &visitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

// GetCriticalOperationLimiter retrieves or creates the limiter for an
// expensive operation. Unknown operations are not limited.
func (m *RateLimitManager) GetCriticalOperationLimiter(ip string, operationType string, requestsPerWindow int, windowSeconds int) *rate.Limiter {
	m.operationsMu.Lock()
	defer m.operationsMu.Unlock()

	limiters, ok := m.operations[operationType]
	if !ok || requestsPerWindow <= 0 {
		return nil
	}

	v, exists := limiters[ip]
	if !exists {
		limiter := rate.NewLimiter(windowLimit(requestsPerWindow, windowSeconds), requestsPerWindow)
		limiters[ip] = &criticalOperationVisitor{limiter, time.Now()}
		return limiter
	}

	v.lastSeen = time.Now()
	return v.limiter
}

func windowLimit(requestsPerWindow, windowSeconds int) rate.Limit {
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	limitPerSecond := float64(requestsPerWindow) / float64(windowSeconds)
	if limitPerSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(limitPerSecond)
}

func (m *RateLimitManager) cleanupLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.cleanup(time.Now())
		}
	}
}

func (m *RateLimitManager) cleanup(now time.Time) {
	m.visitorsMu.Lock()
	for ip, v := range m.visitors {
		if now.Sub(v.lastSeen) > 3*time.Minute {
			delete(m.visitors, ip)
		}
	}
	m.visitorsMu.Unlock()

	m.operationsMu.Lock()
	for _, limiters := range m.operations {
		for ip, v := range limiters {
			if now.Sub(v.lastSeen) > 10*time.Minute {
				delete(limiters, ip)
			}
		}
	}
	m.operationsMu.Unlock()
}

// Shutdown stops the cleanup goroutine and waits for it to finish.
func (m *RateLimitManager) Shutdown() error {
	m.cancel()
	m.wg.Wait()
	return nil
}
