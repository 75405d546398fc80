package events

import (
	"context"
	"time"
)

const DefaultTickInterval = time.Second

type FollowOptions struct {
	UserID    string
	SessionID string
	ExpiresAt time.Time
	Interval  time.Duration
	Now       func() time.Time
}

// Follow streams the life of one session: a tick every interval with the
// remaining time, refreshed events when the session is rotated, and a
// terminal event when it expires, is revoked or is replaced by a new login.
// The returned channel is closed after the terminal event or when ctx ends.
func Follow(ctx context.Context, hub *Hub, opts FollowOptions) <-chan SessionEvent {
	if opts.Interval <= 0 {
		opts.Interval = DefaultTickInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	out := make(chan SessionEvent, subscriberBufferSize)
	subID, in := hub.Subscribe(opts.UserID)

	go func() {
		defer close(out)
		defer hub.Unsubscribe(opts.UserID, subID)

		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()

		expiresAt := opts.ExpiresAt

		emit := func(ev SessionEvent) bool {
			ev.UserID = opts.UserID
			ev.SessionID = opts.SessionID
			if ev.ExpiresAt.IsZero() {
				ev.ExpiresAt = expiresAt
			}
			ev.RemainingSeconds = remainingSeconds(expiresAt, opts.Now())
			if ev.Timestamp.IsZero() {
				ev.Timestamp = opts.Now().UTC()
			}
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(SessionEvent{Type: TypeTick}) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !opts.Now().Before(expiresAt) {
					emit(SessionEvent{Type: TypeExpired})
					return
				}
				if !emit(SessionEvent{Type: TypeTick}) {
					return
				}
			case ev, ok := <-in:
				if !ok {
					return
				}
				if ev.SessionID != opts.SessionID {
					continue
				}
				if ev.Type == TypeRefreshed && !ev.ExpiresAt.IsZero() {
					expiresAt = ev.ExpiresAt
				}
				if !emit(ev) || ev.Terminal() {
					return
				}
			}
		}
	}()

	return out
}

func remainingSeconds(expiresAt, now time.Time) int64 {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int64(remaining.Round(time.Second) / time.Second)
}
