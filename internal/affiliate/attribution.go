package affiliate

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/emeraldlabs/storefront/internal/domain"
	"github.com/emeraldlabs/storefront/internal/session"
)

// ProfileFinder resolves a referral code to a profile; nil means unknown.
type ProfileFinder interface {
	ProfileByCode(ctx context.Context, code string) (*domain.AffiliateProfile, error)
}

// ClickRecorder persists one click row per tracked visit.
type ClickRecorder interface {
	RecordClick(ctx context.Context, click *domain.AffiliateClick) error
}

// AttributionWriter stores the visitor's attributed code, last touch wins.
type AttributionWriter interface {
	SetAffiliateCode(ctx context.Context, sid, code string) error
}

// Tracker watches storefront page requests for a ?ref=CODE query parameter.
// When the code belongs to an active, approved affiliate it records a click
// and stores the code against the visitor's session, overwriting any earlier
// attribution. Everything here is best effort: tracking failures never break
// the page the visitor asked for.
type Tracker struct {
	profiles ProfileFinder
	clicks   ClickRecorder
	sessions AttributionWriter
	logger   *slog.Logger
}

func NewTracker(profiles ProfileFinder, clicks ClickRecorder, sessions AttributionWriter, logger *slog.Logger) *Tracker {
	return &Tracker{
		profiles: profiles,
		clicks:   clicks,
		sessions: sessions,
		logger:   logger,
	}
}

func (t *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := t.ensureSession(w, r)

		if code := r.URL.Query().Get("ref"); code != "" {
			t.track(r, sid, code)
		}

		next.ServeHTTP(w, r)
	})
}

// ensureSession returns the visitor's session ID, minting a cookie on first
// contact.
func (t *Tracker) ensureSession(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	sid := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(session.DefaultTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

func (t *Tracker) track(r *http.Request, sid, code string) {
	ctx := r.Context()

	profile, err := t.profiles.ProfileByCode(ctx, code)
	if err != nil {
		t.logger.Error("failed to resolve referral code", "error", err, "code", code)
		return
	}
	if profile == nil || !profile.CanRefer() {
		return
	}

	click := &domain.AffiliateClick{
		AffiliateID: profile.ID,
		ProductID:   r.URL.Query().Get("product"),
		IPAddress:   clientIP(r),
		UserAgent:   r.UserAgent(),
		Referrer:    r.Referer(),
	}
	if err := t.clicks.RecordClick(ctx, click); err != nil {
		t.logger.Error("failed to record affiliate click", "error", err, "code", code)
	}

	if err := t.sessions.SetAffiliateCode(ctx, sid, code); err != nil {
		t.logger.Error("failed to store attribution", "error", err, "code", code, "sid", sid)
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
