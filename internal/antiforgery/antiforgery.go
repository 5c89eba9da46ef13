// Package antiforgery issues per-session request verification tokens for
// server-rendered forms. The session is identified by a random cookie and the
// token is an HMAC of the session ID, so nothing is stored server side.
package antiforgery

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

const (
	CookieName = "sentiserve_session"
	FieldName  = "__RequestVerificationToken"
	HeaderName = "X-Request-Verification-Token"
)

var (
	ErrMissingSession = errors.New("antiforgery: missing session cookie")
	ErrMissingToken   = errors.New("antiforgery: missing request token")
	ErrInvalidToken   = errors.New("antiforgery: invalid request token")
)

type Protector struct {
	key    []byte
	secure bool
}

// New returns a Protector signing with key. An empty key is replaced by a
// random one, which invalidates outstanding tokens on every restart.
func New(key []byte, secure bool) (*Protector, error) {
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	return &Protector{key: key, secure: secure}, nil
}

// Issue returns the token for the caller's session, starting a new session
// cookie when the request has none.
func (p *Protector) Issue(w http.ResponseWriter, r *http.Request) string {
	sessionID := ""
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		sessionID = c.Value
	} else {
		sessionID = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    sessionID,
			Path:     "/",
			HttpOnly: true,
			Secure:   p.secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
	return p.Token(sessionID)
}

// Token derives the request token for a session.
func (p *Protector) Token(sessionID string) string {
	mac := hmac.New(sha256.New, p.key)
	mac.Write([]byte(sessionID))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Validate checks the token posted in the form field or header against the
// session cookie. The request form must be parseable.
func (p *Protector) Validate(r *http.Request) error {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return ErrMissingSession
	}

	token := r.Header.Get(HeaderName)
	if token == "" {
		token = r.PostFormValue(FieldName)
	}
	if token == "" {
		return ErrMissingToken
	}

	if !hmac.Equal([]byte(token), []byte(p.Token(c.Value))) {
		return ErrInvalidToken
	}
	return nil
}
