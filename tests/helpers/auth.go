package helpers

import (
	"context"
	"net/http"

	"github.com/localnerve/recipe-journal/internal/services"
)

// TestCookieName is the session cookie name used by test servers
const TestCookieName = "cookie_session"

// FakeValidator maps cookie values to identities
type FakeValidator struct {
	Sessions map[string]*services.SessionIdentity
}

// NewFakeValidator returns an empty FakeValidator
func NewFakeValidator() *FakeValidator {
	return &FakeValidator{Sessions: map[string]*services.SessionIdentity{}}
}

// Add registers a session cookie for a social identity and returns the cookie value
func (f *FakeValidator) Add(cookie, provider, socialID string) string {
	f.Sessions[cookie] = &services.SessionIdentity{
		Provider: provider,
		SocialID: socialID,
		Nickname: socialID,
	}
	return cookie
}

// ValidateSession implements services.SessionValidator
func (f *FakeValidator) ValidateSession(_ context.Context, cookie string) (*services.SessionIdentity, error) {
	identity, ok := f.Sessions[cookie]
	if !ok {
		return nil, services.ErrInvalidSession
	}
	return identity, nil
}

// WithSession adds the session cookie to a request
func WithSession(req *http.Request, cookie string) *http.Request {
	req.AddCookie(&http.Cookie{Name: TestCookieName, Value: cookie})
	return req
}
