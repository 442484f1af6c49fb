package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/clinic-portal/internal/render"
)

// FlashCookieName carries one notice across a post/redirect/get.
const FlashCookieName = "portal_flash"

const flashContextKey = "flash"

type flashValue struct {
	Kind    string `json:"k"`
	Message string `json:"m"`
}

// SetFlash queues a notice for the next page rendered for this browser.
func SetFlash(c *gin.Context, f *render.Flash) {
	raw, err := json.Marshal(flashValue{Kind: f.Kind, Message: f.Message})
	if err != nil {
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(flashContextKey, f)
}

// TakeFlash returns the pending notice, if any, and expires its cookie. A
// notice set earlier in the same request wins over the cookie.
func TakeFlash(c *gin.Context) *render.Flash {
	if v, ok := c.Get(flashContextKey); ok {
		if f, ok := v.(*render.Flash); ok {
			c.Set(flashContextKey, nil)
			expireFlash(c)
			return f
		}
	}
	cookie, err := c.Request.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	expireFlash(c)

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var v flashValue
	if err := json.Unmarshal(raw, &v); err != nil || v.Message == "" {
		return nil
	}
	if v.Kind != "success" {
		return render.ErrorFlash(v.Message)
	}
	return render.SuccessFlash(v.Message)
}

func expireFlash(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
