package affiliate

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emeraldlabs/storefront/internal/domain"
	"github.com/emeraldlabs/storefront/internal/session"
)

type fakeProfiles struct {
	profiles map[string]*domain.AffiliateProfile
}

func (f *fakeProfiles) ProfileByCode(_ context.Context, code string) (*domain.AffiliateProfile, error) {
	return f.profiles[code], nil
}

type fakeClicks struct {
	clicks []*domain.AffiliateClick
}

func (f *fakeClicks) RecordClick(_ context.Context, click *domain.AffiliateClick) error {
	f.clicks = append(f.clicks, click)
	return nil
}

type fakeAttribution struct {
	codes map[string]string
}

func (f *fakeAttribution) SetAffiliateCode(_ context.Context, sid, code string) error {
	f.codes[sid] = code
	return nil
}

func newTestTracker(profiles map[string]*domain.AffiliateProfile) (*Tracker, *fakeClicks, *fakeAttribution) {
	clicks := &fakeClicks{}
	attribution := &fakeAttribution{codes: map[string]string{}}
	tracker := NewTracker(
		&fakeProfiles{profiles: profiles},
		clicks,
		attribution,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return tracker, clicks, attribution
}

func activeProfile(id, code string) *domain.AffiliateProfile {
	return &domain.AffiliateProfile{ID: id, AffiliateCode: code, IsActive: true, IsApproved: true}
}

func TestTrackerRecordsClickAndAttribution(t *testing.T) {
	tracker, clicks, attribution := newTestTracker(map[string]*domain.AffiliateProfile{
		"AFF12345678": activeProfile("a1", "AFF12345678"),
	})

	handler := tracker.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/shop?ref=AFF12345678", nil)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Referer", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	if len(clicks.clicks) != 1 {
		t.Fatalf("expected 1 click, got %d", len(clicks.clicks))
	}
	click := clicks.clicks[0]
	if click.AffiliateID != "a1" {
		t.Errorf("expected affiliate a1, got %q", click.AffiliateID)
	}
	if click.UserAgent != "test-agent" {
		t.Errorf("expected user agent recorded, got %q", click.UserAgent)
	}

	cookies := rec.Result().Cookies()
	var sid string
	for _, c := range cookies {
		if c.Name == session.CookieName {
			sid = c.Value
		}
	}
	if sid == "" {
		t.Fatal("expected a session cookie to be minted")
	}
	if attribution.codes[sid] != "AFF12345678" {
		t.Errorf("expected attribution stored for session, got %q", attribution.codes[sid])
	}
}

func TestTrackerLastTouchWins(t *testing.T) {
	tracker, _, attribution := newTestTracker(map[string]*domain.AffiliateProfile{
		"AFF11111111": activeProfile("a1", "AFF11111111"),
		"AFF22222222": activeProfile("a2", "AFF22222222"),
	})

	handler := tracker.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/?ref=AFF11111111", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-1"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/?ref=AFF22222222", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-1"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if attribution.codes["sid-1"] != "AFF22222222" {
		t.Errorf("expected last touch to win, got %q", attribution.codes["sid-1"])
	}
}

func TestTrackerIgnoresIneligibleCodes(t *testing.T) {
	tests := []struct {
		name    string
		profile *domain.AffiliateProfile
	}{
		{name: "unknown code", profile: nil},
		{name: "not approved", profile: &domain.AffiliateProfile{ID: "a1", IsActive: true}},
		{name: "inactive", profile: &domain.AffiliateProfile{ID: "a1", IsApproved: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profiles := map[string]*domain.AffiliateProfile{}
			if tt.profile != nil {
				profiles["AFF12345678"] = tt.profile
			}
			tracker, clicks, attribution := newTestTracker(profiles)

			handler := tracker.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

			req := httptest.NewRequest(http.MethodGet, "/?ref=AFF12345678", nil)
			req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-1"})
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if len(clicks.clicks) != 0 {
				t.Errorf("expected no clicks, got %d", len(clicks.clicks))
			}
			if len(attribution.codes) != 0 {
				t.Errorf("expected no attribution, got %v", attribution.codes)
			}
		})
	}
}
