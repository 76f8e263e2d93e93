package services

import (
	"context"
	"sync"
	"time"

	"droneview/internal/core/domain"
	"droneview/internal/core/ports"
	"droneview/internal/infrastructure/monitoring"
	"droneview/pkg/frameres"
	"droneview/pkg/sched"

	"go.uber.org/zap"
)

// DefaultStreamInterval approximates live video over a polling endpoint.
// At this rate the per-tick handle release is load-bearing: without it
// the client accumulates one live resource per frame for the whole session.
const DefaultStreamInterval = 50 * time.Millisecond

const (
	discardStale   = "stale"
	discardStopped = "stopped"
)

// StreamService polls the latest-image endpoint on a fixed interval and
// maintains at most one active stream session. Ticks overlap freely; a
// generation counter plus per-tick sequence numbers ensure that late or
// out-of-order responses never clobber newer frames and that a response
// arriving after Stop cannot resurrect the stream.
type StreamService struct {
	backend ports.Backend
	frames  *frameres.Registry
	metrics *monitoring.PrometheusCollector
	view    ports.ViewState
	logger  *zap.Logger

	mu          sync.Mutex
	streaming   bool
	generation  uint64
	lastApplied uint64
	startedAt   time.Time
	lastDelay   time.Duration
	current     *frameres.Handle
	ticker      *sched.Ticker
}

func NewStreamService(
	backend ports.Backend,
	frames *frameres.Registry,
	metrics *monitoring.PrometheusCollector,
	view ports.ViewState,
	logger *zap.Logger,
) *StreamService {
	frames.OnChange(metrics.SetLiveHandles)

	return &StreamService{
		backend: backend,
		frames:  frames,
		metrics: metrics,
		view:    view,
		logger:  logger,
	}
}

// Start begins polling for userID. A second Start while streaming is a
// no-op: there is never more than one active timer.
func (s *StreamService) Start(userID domain.UserID, onFrame ports.FrameCallback, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultStreamInterval
	}

	s.mu.Lock()
	if s.streaming {
		s.mu.Unlock()
		return
	}
	s.streaming = true
	s.generation++
	s.lastApplied = 0
	s.startedAt = time.Now()
	s.lastDelay = 0
	gen := s.generation

	ticker := sched.NewTicker(interval, func(ctx context.Context, seq uint64) {
		s.tick(ctx, gen, seq, userID, onFrame)
	})
	s.ticker = ticker
	s.mu.Unlock()

	ticker.Start()
	s.logger.Info("stream started",
		zap.String("user_id", string(userID)),
		zap.Duration("interval", interval),
	)
}

func (s *StreamService) tick(ctx context.Context, gen, seq uint64, userID domain.UserID, onFrame ports.FrameCallback) {
	data, err := s.backend.LatestImage(ctx, userID)
	if err != nil {
		if ctx.Err() != nil {
			return // stream stopped while the request was in flight
		}
		// A failed tick never stops the stream.
		s.metrics.RecordTickFailure()
		s.logger.Debug("stream tick failed", zap.Uint64("seq", seq), zap.Error(err))
		return
	}

	handle := s.frames.Acquire(data, "image/jpeg")
	s.apply(gen, seq, handle, onFrame)
}

// apply installs a fetched frame unless it belongs to a stopped stream
// generation or has been overtaken by a later tick. Last write wins by
// sequence number, not by scheduling order.
func (s *StreamService) apply(gen, seq uint64, handle *frameres.Handle, onFrame ports.FrameCallback) {
	s.mu.Lock()
	if !s.streaming || gen != s.generation {
		s.mu.Unlock()
		handle.Release()
		s.metrics.RecordFrameDiscarded(discardStopped)
		return
	}
	if seq <= s.lastApplied {
		s.mu.Unlock()
		handle.Release()
		s.metrics.RecordFrameDiscarded(discardStale)
		return
	}

	s.lastApplied = seq
	prev := s.current
	s.current = handle
	s.lastDelay = time.Since(s.startedAt)
	delay := s.lastDelay
	s.mu.Unlock()

	if prev != nil {
		prev.Release()
	}
	s.metrics.RecordFrameApplied(delay)

	if onFrame != nil {
		onFrame(handle.URI())
	}
}

// Stop cancels the timer, releases the current frame and clears the
// image reference. Safe to call repeatedly; responses still in flight
// are discarded by the generation bump.
func (s *StreamService) Stop() {
	s.mu.Lock()
	ticker := s.ticker
	s.ticker = nil
	wasStreaming := s.streaming
	s.streaming = false
	s.generation++
	current := s.current
	s.current = nil
	s.lastDelay = 0
	s.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
	}
	if current != nil {
		current.Release()
	}
	if wasStreaming {
		s.logger.Info("stream stopped")
	}
}

// Reset clears the cached drone/box/image view state and stops the
// stream; used when navigating away from the live view.
func (s *StreamService) Reset() {
	if s.view != nil {
		s.view.Clear()
	}
	s.Stop()
}

func (s *StreamService) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// LastDelay is the elapsed time between stream start and the most
// recently applied frame.
func (s *StreamService) LastDelay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastDelay
}

// CurrentFrame returns the URI of the live frame, or "" when idle. The
// handle stays owned by the controller; callers only display it.
func (s *StreamService) CurrentFrame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.URI()
}
