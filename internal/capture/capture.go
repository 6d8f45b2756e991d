// Package capture records an audio stream into memory under size and duration
// limits. A recording ends when the source is exhausted, on Stop, when its
// context is cancelled or when a limit is reached. The source is closed exactly
// once in every case.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"hikayat/internal/models"
)

const DefaultChunkSize = 32 * 1024

type StopReason string

const (
	ReasonEOF       StopReason = "eof"
	ReasonStopped   StopReason = "stopped"
	ReasonDuration  StopReason = "duration"
	ReasonCancelled StopReason = "cancelled"
	ReasonTooLarge  StopReason = "too_large"
	ReasonFailed    StopReason = "failed"
)

// Limits bound a recording. Zero MaxBytes or MaxDuration means unlimited.
type Limits struct {
	MaxBytes    int64
	MaxDuration time.Duration
	ChunkSize   int
}

type Recording struct {
	Data     []byte
	Duration time.Duration
	Reason   StopReason

	// Truncated is set when the duration limit cut the recording short.
	Truncated bool
}

// releaseGrace is how long a stopped session waits for a blocked Read to return
// before it ends with the data captured so far.
const releaseGrace = 250 * time.Millisecond

type Session struct {
	src    io.ReadCloser
	limits Limits
	now    func() time.Time

	started time.Time
	stop    chan struct{}
	done    chan struct{}
	cancel  context.CancelFunc

	stopOnce   sync.Once
	closeOnce  sync.Once
	finishOnce sync.Once
	closeErr   error

	mu     sync.Mutex
	reason StopReason
	data   []byte

	rec *Recording
	err error
}

// Start begins reading src in the background.
func Start(ctx context.Context, src io.ReadCloser, limits Limits) *Session {
	if limits.ChunkSize <= 0 {
		limits.ChunkSize = DefaultChunkSize
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		src:    src,
		limits: limits,
		now:    time.Now,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	s.started = s.now()

	go s.watch(ctx)
	go s.record(ctx)

	return s
}

// Stop ends the recording and keeps what was captured so far.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Wait blocks until the recording has ended.
func (s *Session) Wait() (*Recording, error) {
	<-s.done
	return s.rec, s.err
}

// Done is closed once the recording has ended.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// settle records the first stop reason and returns the one in effect.
func (s *Session) settle(reason StopReason) StopReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reason == "" {
		s.reason = reason
	}
	return s.reason
}

func (s *Session) closeSource() {
	s.closeOnce.Do(func() {
		s.closeErr = s.src.Close()
	})
}

// conclude publishes the outcome for reason. Only the first call has effect.
func (s *Session) conclude(ctx context.Context, reason StopReason, readErr error) {
	s.finishOnce.Do(func() {
		switch reason {
		case ReasonCancelled:
			s.err = fmt.Errorf("запись отменена: %w", context.Cause(ctx))
		case ReasonTooLarge:
			s.err = fmt.Errorf("запись превышает %s: %w", humanize.Bytes(uint64(s.limits.MaxBytes)), models.ErrTooLarge)
		case ReasonFailed:
			s.err = fmt.Errorf("ошибка чтения источника: %w", readErr)
		default:
			s.mu.Lock()
			data := slices.Clone(s.data)
			s.mu.Unlock()

			s.rec = &Recording{
				Data:      data,
				Duration:  s.now().Sub(s.started),
				Reason:    reason,
				Truncated: reason == ReasonDuration,
			}
		}
		close(s.done)
	})
}

// watch ends the session on Stop, cancellation or the duration limit. Closing
// the source may block behind a pending Read (an HTTP request body does), so it
// runs on its own and the session ends after releaseGrace either way.
func (s *Session) watch(ctx context.Context) {
	var timeout <-chan time.Time
	if s.limits.MaxDuration > 0 {
		timer := time.NewTimer(s.limits.MaxDuration)
		defer timer.Stop()
		timeout = timer.C
	}

	var reason StopReason
	select {
	case <-s.done:
		return
	case <-s.stop:
		reason = s.settle(ReasonStopped)
	case <-ctx.Done():
		reason = s.settle(ReasonCancelled)
	case <-timeout:
		reason = s.settle(ReasonDuration)
	}

	go s.closeSource()

	grace := time.NewTimer(releaseGrace)
	defer grace.Stop()

	select {
	case <-s.done:
	case <-grace.C:
		s.conclude(ctx, reason, nil)
	}
}

func (s *Session) record(ctx context.Context) {
	defer s.cancel()

	buf := make([]byte, s.limits.ChunkSize)

	for {
		n, err := s.src.Read(buf)
		if n > 0 {
			s.mu.Lock()
			over := s.limits.MaxBytes > 0 && int64(len(s.data)+n) > s.limits.MaxBytes
			if !over {
				s.data = append(s.data, buf[:n]...)
			}
			s.mu.Unlock()

			if over && s.settle(ReasonTooLarge) == ReasonTooLarge {
				s.closeSource()
				s.conclude(ctx, ReasonTooLarge, nil)
				return
			}
		}
		if err == nil {
			continue
		}

		reason := ReasonFailed
		if errors.Is(err, io.EOF) {
			reason = ReasonEOF
		}
		reason = s.settle(reason)
		s.closeSource()
		s.conclude(ctx, reason, err)
		return
	}
}
