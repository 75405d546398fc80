package sessionclient

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var ErrNotActive = errors.New("session monitor is not active")

type EndReason string

const (
	EndExpired       EndReason = "expired"
	EndRefreshFailed EndReason = "refresh_failed"
	EndLoggedOut     EndReason = "logged_out"
	EndStopped       EndReason = "stopped"
)

// SessionAPI is the part of Client the monitor needs.
type SessionAPI interface {
	Refresh(ctx context.Context, token string) (*RefreshResult, error)
	Logout(ctx context.Context, token string) error
}

type MonitorConfig struct {
	API              SessionAPI
	TickInterval     time.Duration
	RefreshThreshold time.Duration
	RefreshTimeout   time.Duration
	// RefreshRetry delays the next automatic refresh after the server kept
	// the token, which happens when the local clock runs ahead of the server.
	RefreshRetry     time.Duration

	// Callbacks run on the monitor goroutine and must not call Stop or
	// Logout synchronously.
	OnTick    func(remaining time.Duration)
	OnRefresh func(result RefreshResult)
	OnEnd     func(reason EndReason, err error)

	Logger *slog.Logger
	Now    func() time.Time
}

// Monitor follows one client session. A single scheduler goroutine derives
// both the countdown and the refresh trigger from the session's expiresAt.
type Monitor struct {
	api            SessionAPI
	tickInterval   time.Duration
	threshold      time.Duration
	refreshTimeout time.Duration
	refreshRetry   time.Duration
	onTick         func(time.Duration)
	onRefresh      func(RefreshResult)
	onEnd          func(EndReason, error)
	logger         *slog.Logger
	now            func() time.Time

	group singleflight.Group

	mu         sync.Mutex
	run        *monitorRun
	token      string
	expiresAt  time.Time
	refreshing bool
	retryAt    time.Time
}

type monitorRun struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMonitor(cfg MonitorConfig) *Monitor {
	m := &Monitor{
		api:            cfg.API,
		tickInterval:   cfg.TickInterval,
		threshold:      cfg.RefreshThreshold,
		refreshTimeout: cfg.RefreshTimeout,
		refreshRetry:   cfg.RefreshRetry,
		onTick:         cfg.OnTick,
		onRefresh:      cfg.OnRefresh,
		onEnd:          cfg.OnEnd,
		logger:         cfg.Logger,
		now:            cfg.Now,
	}
	if m.tickInterval <= 0 {
		m.tickInterval = DefaultTickInterval
	}
	if m.threshold <= 0 {
		m.threshold = DefaultRefreshThreshold
	}
	if m.refreshTimeout <= 0 {
		m.refreshTimeout = DefaultRefreshTimeout
	}
	if m.refreshRetry <= 0 {
		m.refreshRetry = DefaultRefreshRetry
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.now == nil {
		m.now = time.Now
	}
	m.logger = m.logger.With("component", "session_monitor")
	return m
}

// Start begins following grant, ending any session already being followed.
// Cancelling ctx ends the session with EndStopped.
func (m *Monitor) Start(ctx context.Context, grant Grant) error {
	if grant.Token == "" {
		return ErrNoToken
	}

	m.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	r := &monitorRun{ctx: runCtx, cancel: cancel}

	m.mu.Lock()
	m.run = r
	m.token = grant.Token
	m.expiresAt = m.expiryOf(grant)
	m.refreshing = false
	m.retryAt = time.Time{}
	r.wg.Add(1)
	m.mu.Unlock()

	go m.loop(r)
	return nil
}

// Stop ends the session locally without contacting the server and waits
// for the scheduler and any refresh in flight to finish.
func (m *Monitor) Stop() {
	m.end(nil, EndStopped, nil, true)
}

// Logout stops the scheduler first, then revokes the last token on the
// server. It is a no-op when no session is active.
func (m *Monitor) Logout(ctx context.Context) error {
	token := m.end(nil, EndLoggedOut, nil, true)
	if token == "" {
		return nil
	}
	if err := m.api.Logout(ctx, token); err != nil {
		m.logger.Warn("Server logout failed", "error", err)
		return err
	}
	return nil
}

// RefreshNow forces a refresh. Concurrent callers share a single request.
func (m *Monitor) RefreshNow(ctx context.Context) (*RefreshResult, error) {
	m.mu.Lock()
	r := m.run
	token := m.token
	m.mu.Unlock()
	if r == nil {
		return nil, ErrNotActive
	}

	ch := m.group.DoChan(token, func() (interface{}, error) {
		return m.refreshOnce(r, token)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*RefreshResult), nil
	}
}

func (m *Monitor) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.run != nil
}

func (m *Monitor) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Monitor) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}

func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.run == nil {
		return 0
	}
	remaining := m.expiresAt.Sub(m.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *Monitor) loop(r *monitorRun) {
	defer r.wg.Done()

	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for {
		if !m.tick(r) {
			return
		}
		select {
		case <-r.ctx.Done():
			m.end(r, EndStopped, r.ctx.Err(), false)
			return
		case <-ticker.C:
		}
	}
}

func (m *Monitor) tick(r *monitorRun) bool {
	m.mu.Lock()
	if m.run != r {
		m.mu.Unlock()
		return false
	}

	now := m.now()
	remaining := m.expiresAt.Sub(now)
	if remaining <= 0 {
		m.mu.Unlock()
		m.end(r, EndExpired, nil, false)
		return false
	}

	var refreshToken string
	if remaining <= m.threshold && !m.refreshing && !now.Before(m.retryAt) {
		m.refreshing = true
		refreshToken = m.token
		r.wg.Add(1)
	}
	m.mu.Unlock()

	if m.onTick != nil {
		m.onTick(remaining)
	}
	if refreshToken != "" {
		go m.autoRefresh(r, refreshToken)
	}
	return true
}

func (m *Monitor) autoRefresh(r *monitorRun, token string) {
	defer r.wg.Done()

	_, _, _ = m.group.Do(token, func() (interface{}, error) {
		return m.refreshOnce(r, token)
	})

	m.mu.Lock()
	if m.run == r {
		m.refreshing = false
	}
	m.mu.Unlock()
}

// refreshOnce calls the server and applies the result, unless the run it
// was started for has ended meanwhile.
func (m *Monitor) refreshOnce(r *monitorRun, token string) (*RefreshResult, error) {
	m.mu.Lock()
	if m.run != r {
		m.mu.Unlock()
		return nil, ErrNotActive
	}
	r.wg.Add(1)
	m.mu.Unlock()
	defer r.wg.Done()

	ctx, cancel := context.WithTimeout(r.ctx, m.refreshTimeout)
	defer cancel()

	result, err := m.api.Refresh(ctx, token)
	if err != nil {
		if r.ctx.Err() == nil {
			m.logger.Warn("Session refresh failed, ending session", "error", err)
			m.end(r, EndRefreshFailed, err, false)
		}
		return nil, err
	}

	m.mu.Lock()
	if m.run != r {
		m.mu.Unlock()
		return nil, ErrNotActive
	}
	if result.Rotated && result.Token != "" {
		m.token = result.Token
	} else {
		m.retryAt = m.now().Add(m.refreshRetry)
	}
	if !result.ExpiresAt.IsZero() {
		m.expiresAt = result.ExpiresAt
	}
	m.mu.Unlock()

	if m.onRefresh != nil {
		m.onRefresh(*result)
	}
	return result, nil
}

// end detaches r (or the current run when r is nil) and reports reason
// exactly once. It returns the token that was active, or "" when there was
// nothing to end.
func (m *Monitor) end(r *monitorRun, reason EndReason, cause error, wait bool) string {
	m.mu.Lock()
	if r == nil {
		r = m.run
	}
	if r == nil || m.run != r {
		m.mu.Unlock()
		return ""
	}
	token := m.token
	m.run = nil
	m.token = ""
	m.expiresAt = time.Time{}
	m.refreshing = false
	m.mu.Unlock()

	r.cancel()
	if wait {
		r.wg.Wait()
	}

	m.logger.Debug("Session ended", "reason", reason)
	if m.onEnd != nil {
		m.onEnd(reason, cause)
	}
	return token
}

func (m *Monitor) expiryOf(grant Grant) time.Time {
	if !grant.ExpiresAt.IsZero() {
		return grant.ExpiresAt
	}
	return m.now().Add(time.Duration(grant.ExpiresIn) * time.Millisecond)
}
