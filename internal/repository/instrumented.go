package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/clinic-portal/internal/model"
	"github.com/jwalitptl/clinic-portal/pkg/metrics"
)

type instrumentedSessionRepository struct {
	next    SessionRepository
	driver  string
	metrics *metrics.Metrics
}

// Instrument records count and latency of every store call under the given
// driver label. A nil metrics returns next unchanged.
func Instrument(next SessionRepository, driver string, m *metrics.Metrics) SessionRepository {
	if m == nil {
		return next
	}
	return &instrumentedSessionRepository{next: next, driver: driver, metrics: m}
}

func (r *instrumentedSessionRepository) observe(op string, start time.Time, err error) {
	status := "ok"
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = "miss"
	case err != nil:
		status = "error"
	}
	r.metrics.SessionOperations.WithLabelValues(r.driver, op, status).Inc()
	r.metrics.SessionLatency.WithLabelValues(r.driver, op).Observe(time.Since(start).Seconds())
}

func (r *instrumentedSessionRepository) Get(ctx context.Context, id string) (s *model.Session, err error) {
	start := time.Now()
	defer func() { r.observe("get", start, err) }()
	s, err = r.next.Get(ctx, id)
	return s, err
}

func (r *instrumentedSessionRepository) Save(ctx context.Context, session *model.Session) (err error) {
	start := time.Now()
	defer func() { r.observe("save", start, err) }()
	err = r.next.Save(ctx, session)
	return err
}

func (r *instrumentedSessionRepository) Delete(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { r.observe("delete", start, err) }()
	err = r.next.Delete(ctx, id)
	return err
}

func (r *instrumentedSessionRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}
