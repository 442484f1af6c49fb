package auth

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/clinic-portal/internal/client"
	apperrors "github.com/jwalitptl/clinic-portal/pkg/errors"
)

func TestLoginFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "missing token",
			err:  fmt.Errorf("admin_login: %w", client.ErrTokenMissing),
			want: "Login failed: Authentication token missing.",
		},
		{
			name: "backend message",
			err:  apperrors.NewAPIError(http.StatusUnauthorized, "Invalid credentials"),
			want: "Login Failed: Invalid credentials",
		},
		{
			name: "transport failure",
			err:  errors.New("dial tcp: connection refused"),
			want: "Login Failed: Invalid credentials or login failed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LoginFailure(tt.err))
		})
	}
}
