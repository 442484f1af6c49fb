package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-portal/internal/render"
	"github.com/jwalitptl/clinic-portal/pkg/metrics"
)

func TestSequencer_NewerEpochCancelsOlder(t *testing.T) {
	s := NewSequencer()

	older, doneOlder, ok := s.Begin(context.Background(), "k", 1)
	require.True(t, ok)
	defer doneOlder()

	newer, doneNewer, ok := s.Begin(context.Background(), "k", 2)
	require.True(t, ok)
	defer doneNewer()

	assert.ErrorIs(t, older.Err(), context.Canceled)
	assert.NoError(t, newer.Err())
	assert.Equal(t, int64(2), s.Latest("k"))
}

func TestSequencer_OlderEpochRefused(t *testing.T) {
	s := NewSequencer()

	_, done, ok := s.Begin(context.Background(), "k", 5)
	require.True(t, ok)
	defer done()

	ctx, _, ok := s.Begin(context.Background(), "k", 4)
	assert.False(t, ok)
	assert.Nil(t, ctx)
	assert.Equal(t, int64(5), s.Latest("k"))
}

func TestSequencer_DoneReleasesOnlyItsOwnRun(t *testing.T) {
	s := NewSequencer()

	_, doneOlder, _ := s.Begin(context.Background(), "k", 1)
	_, doneNewer, _ := s.Begin(context.Background(), "k", 2)

	doneOlder()
	assert.Equal(t, 1, s.Len())

	doneNewer()
	assert.Zero(t, s.Len())
	assert.Equal(t, int64(2), s.Latest("k"))
}

func TestSequencer_LateEpochRefusedAfterNewerFinished(t *testing.T) {
	s := NewSequencer()

	_, done, ok := s.Begin(context.Background(), "k", 8)
	require.True(t, ok)
	done()

	_, _, ok = s.Begin(context.Background(), "k", 2)
	assert.False(t, ok)

	_, done, ok = s.Begin(context.Background(), "k", 9)
	require.True(t, ok)
	done()
}

func TestSequencer_FinishedEpochsExpire(t *testing.T) {
	now := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	s := NewSequencer()
	s.now = func() time.Time { return now }

	_, done, _ := s.Begin(context.Background(), "k", 8)
	done()

	now = now.Add(DefaultSequenceTTL + time.Minute)
	_, done, ok := s.Begin(context.Background(), "other", 1)
	require.True(t, ok)
	done()

	assert.Equal(t, int64(-1), s.Latest("k"))
	_, done, ok = s.Begin(context.Background(), "k", 1)
	assert.True(t, ok)
	done()
}

func TestFilterKey(t *testing.T) {
	assert.Equal(t, "sess|patient", FilterKey("sess", "patient", ""))
	assert.Equal(t, "sess|patient|3f2b-9a", FilterKey("sess", "patient", "3f2b-9a"))
	assert.Equal(t, "sess|patient", FilterKey("sess", "patient", "a|b"))
	assert.Equal(t, "sess|patient", FilterKey("sess", "patient", strings.Repeat("a", 65)))
}

func TestSequencer_KeysAreIndependent(t *testing.T) {
	s := NewSequencer()

	a, doneA, _ := s.Begin(context.Background(), "sess|admin", 3)
	defer doneA()
	_, doneB, ok := s.Begin(context.Background(), "sess|patient", 1)
	defer doneB()

	assert.True(t, ok)
	assert.NoError(t, a.Err())
	assert.Equal(t, 2, s.Len())
}

func newFilteredContext(t *testing.T, target string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	renderer, err := render.New()
	require.NoError(t, err)
	return NewHandler(nil, renderer, nil, nil, metrics.New("test", nil))
}

func TestFiltered_StaleEpoch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(t)

	// Session falls back to an anonymous session with an empty id.
	_, done, ok := h.Sequencer.Begin(context.Background(), "|admin", 9)
	require.True(t, ok)
	defer done()

	c, w := newFilteredContext(t, "/admin/doctors/cards?epoch=8")
	called := false
	h.Filtered(c, "admin", "doctor_cards", func(ctx context.Context) interface{} {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get(HeaderStale))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.Metrics.StaleRenders.WithLabelValues("admin")))
}

func TestFiltered_SupersededWhileRendering(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(t)

	c, w := newFilteredContext(t, "/admin/doctors/cards?epoch=1")
	h.Filtered(c, "admin", "doctor_cards", func(ctx context.Context) interface{} {
		_, done, ok := h.Sequencer.Begin(context.Background(), "|admin", 2)
		require.True(t, ok)
		defer done()
		return render.DoctorList{}
	})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "1", w.Header().Get(HeaderStale))
}

func TestFiltered_WithoutEpochRendersDirectly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(t)

	c, w := newFilteredContext(t, "/admin/doctors/cards")
	h.Filtered(c, "admin", "doctor_cards", func(ctx context.Context) interface{} {
		return render.DoctorList{}
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(HeaderStale))
	assert.Contains(t, w.Body.String(), "No doctors found")
	assert.Zero(t, h.Sequencer.Len())
}

func TestFiltered_ViewsOfOneSessionDoNotInterfere(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestHandler(t)

	tabA, doneA, ok := h.Sequencer.Begin(context.Background(), FilterKey("", "patient", "tab-a"), 7)
	require.True(t, ok)
	defer doneA()

	c, w := newFilteredContext(t, "/patient/doctors/cards?epoch=1&view=tab-b")
	h.Filtered(c, "patient", "doctor_cards", func(ctx context.Context) interface{} {
		return render.DoctorList{}
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(HeaderStale))

	c, w = newFilteredContext(t, "/patient/doctors/cards?epoch=8&view=tab-b")
	h.Filtered(c, "patient", "doctor_cards", func(ctx context.Context) interface{} {
		return render.DoctorList{}
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, tabA.Err())
}
