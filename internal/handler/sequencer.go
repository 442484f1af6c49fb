package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderStale marks a filter answer that was dropped for a newer one.
const HeaderStale = "X-Render-Stale"

// DefaultSequenceTTL is how long a finished epoch keeps refusing older ones.
const DefaultSequenceTTL = 10 * time.Minute

var viewIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

type run struct {
	epoch int64
	// cancel is nil once the render finished.
	cancel   context.CancelFunc
	finished time.Time
}

// Sequencer keeps at most one filter render in flight per key. Starting a
// newer epoch cancels the older one, and an epoch older than the newest one
// seen for the key is refused, also after that newer one finished.
type Sequencer struct {
	mu        sync.Mutex
	runs      map[string]*run
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

func NewSequencer() *Sequencer {
	return &Sequencer{runs: make(map[string]*run), ttl: DefaultSequenceTTL, now: time.Now}
}

// Begin registers epoch for key. ok is false when a newer epoch already
// started. The returned done must be called once the render finished.
func (s *Sequencer) Begin(parent context.Context, key string, epoch int64) (ctx context.Context, done func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()

	if cur, exists := s.runs[key]; exists {
		if cur.epoch > epoch {
			return nil, nil, false
		}
		if cur.cancel != nil {
			cur.cancel()
		}
	}

	ctx, cancel := context.WithCancel(parent)
	r := &run{epoch: epoch, cancel: cancel}
	s.runs[key] = r

	return ctx, func() {
		s.mu.Lock()
		if s.runs[key] == r {
			r.cancel = nil
			r.finished = s.now()
		}
		s.mu.Unlock()
		cancel()
	}, true
}

// sweep forgets finished runs older than the ttl. Called with mu held.
func (s *Sequencer) sweep() {
	now := s.now()
	if now.Sub(s.lastSweep) < s.ttl/2 {
		return
	}
	s.lastSweep = now
	for key, r := range s.runs {
		if r.cancel == nil && now.Sub(r.finished) > s.ttl {
			delete(s.runs, key)
		}
	}
}

// Latest returns the newest epoch seen for key, in flight or finished, or -1.
func (s *Sequencer) Latest(key string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.runs[key]; ok {
		return r.epoch
	}
	return -1
}

// Len reports how many renders are in flight.
func (s *Sequencer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.runs {
		if r.cancel != nil {
			n++
		}
	}
	return n
}

// FilterKey scopes a filter sequence to one page view of one dashboard. Tabs
// sharing a session send different view ids and never supersede each other.
func FilterKey(sessionID, dashboard, view string) string {
	key := sessionID + "|" + dashboard
	if viewIDPattern.MatchString(view) {
		key += "|" + view
	}
	return key
}

// Filtered runs render for a filter reload of dashboard. Requests without a
// usable epoch are rendered unsequenced. When the request was superseded the
// answer is 204 with X-Render-Stale and the render result is discarded.
func (h *Handler) Filtered(c *gin.Context, dashboard, fragment string, render func(ctx context.Context) interface{}) {
	epoch, err := strconv.ParseInt(c.Query("epoch"), 10, 64)
	if err != nil || epoch < 0 {
		h.Fragment(c, http.StatusOK, fragment, render(c.Request.Context()))
		return
	}

	key := FilterKey(Session(c).ID(), dashboard, c.Query("view"))
	ctx, done, ok := h.Sequencer.Begin(c.Request.Context(), key, epoch)
	if !ok {
		h.stale(c, dashboard)
		return
	}
	defer done()

	data := render(ctx)
	if errors.Is(ctx.Err(), context.Canceled) && c.Request.Context().Err() == nil {
		h.stale(c, dashboard)
		return
	}
	h.Fragment(c, http.StatusOK, fragment, data)
}

func (h *Handler) stale(c *gin.Context, dashboard string) {
	if h.Metrics != nil {
		h.Metrics.StaleRenders.WithLabelValues(dashboard).Inc()
	}
	c.Header(HeaderStale, "1")
	c.AbortWithStatus(http.StatusNoContent)
}
