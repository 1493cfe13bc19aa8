package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hikari/internal/api"
	"hikari/internal/config"
	"hikari/internal/events"
	"hikari/internal/models"
	"hikari/internal/profile"
	"hikari/internal/reservation"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	authenticated bool
	posted        []models.BookingRequest
}

func (f *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/layout/tables/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `[
			{"id": 1, "name": "L-1", "capacity": 2, "x": 10, "y": 10, "is_active": true},
			{"id": 2, "name": "L-2", "capacity": 4, "x": 20, "y": 10, "is_active": true}
		]`)
	})
	mux.HandleFunc("/api/availability/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `{"tables": [{"id": 1, "available": false}, {"id": 2, "available": true, "available_until": "22:00"}]}`)
	})
	mux.HandleFunc("/api/bookings/", func(w http.ResponseWriter, r *http.Request) {
		var req models.BookingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.posted = append(f.posted, req)
		respond(w, http.StatusCreated, `{"id": 41, "status": "pending", "table_name": "L-2", "table_area": "Hall"}`)
	})
	mux.HandleFunc("/api/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		if f.authenticated {
			respond(w, http.StatusOK, `{"is_authenticated": true, "email": "anna@example.com"}`)
			return
		}
		respond(w, http.StatusOK, `{"is_authenticated": false}`)
	})
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		f.authenticated = true
		http.SetCookie(w, &http.Cookie{Name: models.CSRFCookieName, Value: "tok", Path: "/"})
		respond(w, http.StatusOK, `{"ok": true}`)
	})
	mux.HandleFunc("/api/me/bookings-by-status/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, `{"counts": {"pending": 1},
			"by_status": {"pending": [{"id": 41, "status": "pending", "guests": 2, "table_name": "L-2",
				"datetime_start": "2025-09-20T19:00:00Z", "datetime_end": "2025-09-20T20:30:00Z"}]}}`)
	})
	return mux
}

func respond(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func newTestShell(t *testing.T, backend *fakeBackend) (*shell, *bytes.Buffer) {
	t.Helper()
	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		App: config.AppConfig{Name: "hikari-reserve"},
		Backend: config.BackendConfig{
			BaseURL: srv.URL,
			Timeout: 2 * time.Second,
			Endpoints: config.EndpointsConfig{
				Tables:       "/api/layout/tables/",
				Availability: "/api/availability/",
				Booking:      "/api/bookings/",
				GuestBooking: "/api/bookings/",
				Me:           "/api/auth/me/",
				Login:        "/api/auth/login/",
				Logout:       "/api/auth/logout/",
				MyBookings:   "/api/me/bookings-by-status/",
				MyBooking:    "/api/me/bookings/",
			},
		},
		Exports: config.ExportConfig{Path: t.TempDir()},
	}

	logger := zerolog.Nop()
	client, err := api.NewClient(cfg.Backend, cfg.Session, &logger)
	require.NoError(t, err)

	bus := events.NewEventBus()
	page := reservation.NewPage(client, bus, reservation.Options{}, &logger)
	out := &bytes.Buffer{}
	sh := newShell(cfg, client, page, profile.NewPage(client, &logger), bus, out, &logger)
	require.NoError(t, sh.start(context.Background()))
	return sh, out
}

func TestShellGuestFlow(t *testing.T) {
	backend := &fakeBackend{}
	sh, out := newTestShell(t, backend)
	ctx := context.Background()

	require.NoError(t, sh.exec(ctx, "select 1"))
	require.NoError(t, sh.exec(ctx, "search 2025-09-20 19:00 2"))
	assert.Contains(t, out.String(), "was deselected")
	assert.Contains(t, out.String(), "22:00")

	err := sh.exec(ctx, "select 1")
	assert.Error(t, err)

	require.NoError(t, sh.exec(ctx, "select 2"))
	require.NoError(t, sh.exec(ctx, "reserve"))
	assert.Contains(t, out.String(), "Table: L-2")
	assert.Empty(t, backend.posted, "guest details not submitted yet")

	err = sh.exec(ctx, "guest name=Anna")
	require.Error(t, err)
	assert.Equal(t, models.MsgContactRequired, reservation.UserMessage(err))

	out.Reset()
	require.NoError(t, sh.exec(ctx, "guest name=Anna Petrova phone=+7900 comment=by the window"))
	require.Len(t, backend.posted, 1)
	assert.Equal(t, "Anna Petrova", backend.posted[0].Name)
	assert.Equal(t, "by the window", backend.posted[0].Comment)
	assert.Equal(t, int64(2), backend.posted[0].TableID)
	assert.Equal(t, 90, backend.posted[0].DurationMin)
	assert.Contains(t, out.String(), "Reservation received!")
	assert.Contains(t, out.String(), "Area: Hall")
}

func TestShellMemberFlow(t *testing.T) {
	backend := &fakeBackend{}
	sh, out := newTestShell(t, backend)
	ctx := context.Background()

	require.NoError(t, sh.exec(ctx, "login anna@example.com secret"))
	assert.True(t, sh.page.Authenticated())

	require.NoError(t, sh.exec(ctx, "search 2025-09-20 19:00 2 120"))
	require.NoError(t, sh.exec(ctx, "select 2"))
	require.NoError(t, sh.exec(ctx, "reserve"))

	require.Len(t, backend.posted, 1)
	assert.Equal(t, 120, backend.posted[0].DurationMin)
	assert.Empty(t, backend.posted[0].Name)
	assert.Contains(t, out.String(), "Status: pending confirmation")

	out.Reset()
	require.NoError(t, sh.exec(ctx, "bookings"))
	assert.Contains(t, out.String(), "> Waiting for confirmation (1)")
	assert.Contains(t, out.String(), "#41")
	assert.Contains(t, out.String(), "[cancel]")

	require.NoError(t, sh.exec(ctx, "export mine.xlsx"))
	assert.FileExists(t, filepath.Join(sh.cfg.Exports.Path, "mine.xlsx"))
}

func TestShellTooManyGuests(t *testing.T) {
	sh, _ := newTestShell(t, &fakeBackend{})
	err := sh.exec(context.Background(), "search 2025-09-20 19:00 8")
	require.Error(t, err)
	assert.Equal(t, models.MsgTooManyGuests, reservation.UserMessage(err))
}

func TestShellRun(t *testing.T) {
	sh, out := newTestShell(t, &fakeBackend{})
	in := strings.NewReader("help\nbogus\nmap\nquit\nmap\n")

	require.NoError(t, sh.run(context.Background(), in))
	assert.Contains(t, out.String(), "Commands:")
	assert.Contains(t, out.String(), `unknown command "bogus"`)
	assert.Equal(t, 1, strings.Count(out.String(), "SEATS"))
}

func TestParseContact(t *testing.T) {
	c := parseContact([]string{"name=Anna", "Petrova", "EMAIL=a@example.com", "comment=", "quiet", "corner"})
	assert.Equal(t, reservation.Contact{Name: "Anna Petrova", Email: "a@example.com", Comment: " quiet corner"}, c)
}
