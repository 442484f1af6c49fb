package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/jwalitptl/clinic-portal/internal/model"
)

// ErrTokenMissing is returned when a login succeeded but carried no token.
var ErrTokenMissing = errors.New("Authentication token missing")

// AdminLogin authenticates with username and password.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (string, error) {
	return c.login(ctx, "admin_login", []string{"admin", "login"},
		model.AdminCredentials{Username: username, Password: password})
}

// DoctorLogin authenticates with email and password.
func (c *Client) DoctorLogin(ctx context.Context, email, password string) (string, error) {
	return c.login(ctx, "doctor_login", []string{"doctor", "login"},
		model.Credentials{Email: email, Password: password})
}

// PatientLogin authenticates with email and password.
func (c *Client) PatientLogin(ctx context.Context, email, password string) (string, error) {
	return c.login(ctx, "patient_login", []string{"patient", "login"},
		model.Credentials{Email: email, Password: password})
}

func (c *Client) login(ctx context.Context, op string, path []string, creds interface{}) (string, error) {
	resp, err := c.do(ctx, request{op: op, method: http.MethodPost, path: path, body: creds})
	if err != nil {
		return "", err
	}

	var out model.TokenResponse
	if err := resp.decode(&out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", ErrTokenMissing
	}
	return out.Token, nil
}
