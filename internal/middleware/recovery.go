package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-portal/pkg/httputil"
)

// Recovery handles panics and logs them appropriately
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("client_ip", c.ClientIP()).
					Str("request_id", c.GetString(ContextRequestID)).
					Msg("Request panic recovered")

				if httputil.WantsJSON(c) {
					httputil.RespondWithFailure(c, http.StatusInternalServerError, "Internal server error")
					c.Abort()
					return
				}
				c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(errorPage))
				c.Abort()
			}
		}()
		c.Next()
	}
}

const errorPage = `<!DOCTYPE html><html><head><title>Smart Clinic</title></head>` +
	`<body><h1>Something went wrong</h1><p>Please try again.</p><p><a href="/">Back to home</a></p></body></html>`
