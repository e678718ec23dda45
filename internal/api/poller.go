package api

import (
	"context"
	"sync"
	"time"

	"github.com/stagechat/stagechat/internal/logger"
)

// PollSession is the cancellable handle for one recurring status check.
// At most one session exists per Client; starting a new one replaces the
// previous session.
type PollSession struct {
	MessageID int64

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	err      error // written once, before done closes
}

// Cancel stops the session's timer. Safe to call multiple times. A status
// request already in flight may still deliver one tick after Cancel
// returns; consumers must drop ticks for ids they no longer track.
func (s *PollSession) Cancel() {
	s.stopOnce.Do(s.cancel)
}

// Done is closed once the session's loop has fully exited.
func (s *PollSession) Done() <-chan struct{} {
	return s.done
}

// Err reports the request failure that killed the session, or nil when it
// was cancelled normally. Only valid after Done is closed.
func (s *PollSession) Err() error {
	return s.err
}

// StartPolling begins fetching the status of messageID on the client's poll
// interval, forwarding each result to onTick. A request failure is fatal to
// the session: it is logged and the session cancels itself, no retry.
func (c *Client) StartPolling(messageID int64, onTick func(StatusResponse)) *PollSession {
	ctx, cancel := context.WithCancel(context.Background())
	session := &PollSession{
		MessageID: messageID,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	c.mu.Lock()
	prev := c.session
	c.session = session
	c.mu.Unlock()
	if prev != nil {
		prev.Cancel()
	}

	go c.pollLoop(ctx, session, onTick)
	return session
}

// StopPolling cancels the active session if any; a no-op otherwise.
func (c *Client) StopPolling() {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()
	if session != nil {
		session.Cancel()
	}
}

// ActiveSession returns the current session, or nil when none is live.
func (c *Client) ActiveSession() *PollSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// clearSession drops the client's reference once a session has wound down,
// unless a replacement is already installed.
func (c *Client) clearSession(session *PollSession) {
	c.mu.Lock()
	if c.session == session {
		c.session = nil
	}
	c.mu.Unlock()
}

func (c *Client) pollLoop(ctx context.Context, session *PollSession, onTick func(StatusResponse)) {
	defer close(session.done)
	defer c.clearSession(session)

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := c.MessageStatus(ctx, session.MessageID)
			if err != nil {
				if ctx.Err() == nil {
					logger.Errorf("poll for message %d failed, cancelling session: %v", session.MessageID, err)
					session.err = err
					session.Cancel()
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
			onTick(*status)
		}
	}
}
