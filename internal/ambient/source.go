package ambient

import (
	"context"
	"sync"
	"time"

	"sitetheme/internal/logging"
	"sitetheme/internal/preference"
)

// Source is a preference.AmbientSource whose value can be refreshed by
// polling a DetectFunc or pushed with Set.
type Source struct {
	mu        sync.RWMutex
	detect    DetectFunc
	current   preference.Theme
	available bool
	nextID    int
	handlers  map[int]func(preference.Theme)
}

// NewSource probes detect once and returns a source holding that value.
// A nil detect leaves the signal unavailable until Set is called.
func NewSource(detect DetectFunc) *Source {
	s := &Source{
		detect:   detect,
		handlers: make(map[int]func(preference.Theme)),
	}
	if detect != nil {
		s.current, s.available = detect()
	}
	return s
}

// NewStatic returns a source fixed at t.
func NewStatic(t preference.Theme) *Source {
	s := NewSource(nil)
	s.current, s.available = t, true
	return s
}

// Current returns the last observed value.
func (s *Source) Current() (preference.Theme, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.available
}

// Subscribe registers handler for changes. Handlers run on the goroutine
// that observed the change, never inside Subscribe. The returned function
// removes the handler and may be called more than once.
func (s *Source) Subscribe(handler func(preference.Theme)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.handlers[id] = handler
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, id)
			s.mu.Unlock()
		})
	}
}

// Set records t and notifies subscribers when it differs from the last
// value.
func (s *Source) Set(t preference.Theme) {
	s.mu.Lock()
	if s.available && s.current == t {
		s.mu.Unlock()
		return
	}
	s.current, s.available = t, true
	handlers := make([]func(preference.Theme), 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mu.Unlock()

	logging.Ambient("ambient color scheme is now %s", t)
	for _, h := range handlers {
		h(t)
	}
}

// Refresh probes the detector once and publishes a changed value.
func (s *Source) Refresh() {
	if s.detect == nil {
		return
	}
	if t, ok := s.detect(); ok {
		s.Set(t)
	}
}

// Poll refreshes every interval until ctx is done.
func (s *Source) Poll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logging.AmbientDebug("polling ambient color scheme every %v", interval)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Refresh()
		}
	}
}
