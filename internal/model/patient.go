package model

import "strings"

// Patient profile as returned by GET /patient/profile.
type Patient struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Signup is the patient sign-up form.
type Signup struct {
	Name     string `json:"name" form:"name" binding:"required"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
	Phone    string `json:"phone" form:"phone" binding:"required"`
	Address  string `json:"address" form:"address" binding:"required"`
}

func (s *Signup) Trim() {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Address = strings.TrimSpace(s.Address)
}

// Credentials covers the email/password logins (doctor, patient).
type Credentials struct {
	Email    string `json:"email" form:"email" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// AdminCredentials is the admin login form.
type AdminCredentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// TokenResponse is the body returned by every login endpoint.
type TokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}
