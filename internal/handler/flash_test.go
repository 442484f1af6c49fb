package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-portal/internal/render"
)

func TestFlash_SurvivesRedirect(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/admin/doctors", nil)
	SetFlash(c, render.SuccessFlash("Doctor added successfully!"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, FlashCookieName, cookies[0].Name)
	assert.Equal(t, 60, cookies[0].MaxAge)

	next := httptest.NewRecorder()
	c2, _ := gin.CreateTestContext(next)
	c2.Request = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	c2.Request.AddCookie(cookies[0])

	f := TakeFlash(c2)
	require.NotNil(t, f)
	assert.Equal(t, "success", f.Kind)
	assert.Equal(t, "Doctor added successfully!", f.Message)

	expired := next.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Equal(t, -1, expired[0].MaxAge)
}

func TestFlash_SameRequestWins(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	SetFlash(c, render.ErrorFlash("Login Failed: Invalid credentials"))

	f := TakeFlash(c)
	require.NotNil(t, f)
	assert.Equal(t, "error", f.Kind)
}

func TestFlash_IgnoresGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, value := range []string{"", "%%%", "bm90IGpzb24"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.AddCookie(&http.Cookie{Name: FlashCookieName, Value: value})
		assert.Nil(t, TakeFlash(c), value)
	}
}

func TestFlash_NoneSet(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, TakeFlash(c))
	assert.Empty(t, w.Result().Cookies())
}
