package shared

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// FlashMessage is a notification rendered into a page.
type FlashMessage struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ProfileManager identifies the browser profile behind a request with a
// long-lived cookie. Everything else about the profile lives in its storage.
type ProfileManager struct {
	cookieName string
	ttl        time.Duration
	secure     bool
}

// NewProfileManager constructs a ProfileManager.
func NewProfileManager(cookieName string, ttl time.Duration, secure bool) *ProfileManager {
	return &ProfileManager{cookieName: cookieName, ttl: ttl, secure: secure}
}

// Load returns the profile id carried by r, issuing a new one when the cookie
// is missing or does not hold a UUID. isNew reports whether the caller must
// send the cookie.
func (pm *ProfileManager) Load(r *http.Request) (id string, isNew bool, err error) {
	cookie, err := r.Cookie(pm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return pm.generateID(), true, nil
		}
		return "", false, err
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return pm.generateID(), true, nil
	}
	return cookie.Value, false, nil
}

// Commit writes the profile cookie, refreshing its expiry.
func (pm *ProfileManager) Commit(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     pm.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   pm.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(pm.ttl),
	})
}

// CookieName returns the cookie identifier used for profiles.
func (pm *ProfileManager) CookieName() string {
	return pm.cookieName
}

func (pm *ProfileManager) generateID() string {
	return uuid.NewString()
}
