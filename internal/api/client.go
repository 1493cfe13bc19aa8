package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hikari/internal/cache"
	"hikari/internal/config"
	"hikari/internal/metrics"
	"hikari/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client talks to the reservation backend on behalf of one browser-like session.
// Session cookies (including csrftoken) live in the client's cookie jar.
type Client struct {
	baseURL    *url.URL
	endpoints  config.EndpointsConfig
	csrfCookie string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger

	tables cache.TableCache
}

// NewClient constructs a client from the backend and session config.
func NewClient(cfg config.BackendConfig, session config.SessionConfig, logger *zerolog.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    base,
		endpoints:  cfg.Endpoints,
		csrfCookie: session.CSRFCookie,
		httpClient: &http.Client{Timeout: timeout, Jar: jar},
		logger:     logger,
	}
	if c.csrfCookie == "" {
		c.csrfCookie = models.CSRFCookieName
	}
	if cfg.RateLimit.RPS > 0 {
		burst := cfg.RateLimit.Burst
		if burst <= 0 {
			burst = 5
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit.RPS), burst)
	}
	if c.logger == nil {
		nop := zerolog.Nop()
		c.logger = &nop
	}
	return c, nil
}

// UseTableCache configures read-through caching for the table list.
func (c *Client) UseTableCache(tc cache.TableCache) {
	c.tables = tc
}

// SetCookie seeds a session cookie, e.g. the sessionid and csrftoken the server issued.
func (c *Client) SetCookie(name, value string) {
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
}

// CSRFToken returns the csrftoken cookie value, or "" when none was issued.
func (c *Client) CSRFToken() string {
	for _, ck := range c.httpClient.Jar.Cookies(c.baseURL) {
		if ck.Name == c.csrfCookie {
			return ck.Value
		}
	}
	return ""
}

// ListTables fetches and normalizes the table layout.
func (c *Client) ListTables(ctx context.Context) ([]models.Table, error) {
	cacheKey := c.endpoints.Tables
	if c.tables != nil {
		tables, ok, err := c.tables.Get(ctx, cacheKey)
		if err != nil {
			c.logger.Warn().Err(err).Msg("table cache read failed")
		} else if ok {
			return tables, nil
		}
	}

	var raws []models.RawTable
	if err := c.doJSON(ctx, http.MethodGet, "tables", c.endpoints.Tables, nil, &raws); err != nil {
		return nil, err
	}

	tables := make([]models.Table, 0, len(raws))
	for _, raw := range raws {
		tables = append(tables, models.NormalizeTable(raw))
	}

	if c.tables != nil && len(tables) > 0 {
		if err := c.tables.Set(ctx, cacheKey, tables); err != nil {
			c.logger.Warn().Err(err).Msg("table cache write failed")
		}
	}
	return tables, nil
}

// GetAvailability queries availability for every table at the searched slot.
func (c *Client) GetAvailability(ctx context.Context, criteria models.SearchCriteria) (*models.AvailabilityResponse, error) {
	q := url.Values{}
	q.Set("date", criteria.Date)
	q.Set("start", criteria.Start)
	q.Set("guests", strconv.Itoa(criteria.Guests))
	q.Set("duration", strconv.Itoa(criteria.DurationOrDefault()))

	var resp models.AvailabilityResponse
	if err := c.doJSON(ctx, http.MethodGet, "availability", withQuery(c.endpoints.Availability, q), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBooking posts a booking for the signed-in user.
func (c *Client) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.doJSON(ctx, http.MethodPost, "booking", c.endpoints.Booking, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateGuestBooking posts a booking with the guest's contact details.
func (c *Client) CreateGuestBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	var booking models.Booking
	if err := c.doJSON(ctx, http.MethodPost, "guest_booking", c.endpoints.GuestBooking, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

// Me returns the current session's user.
func (c *Client) Me(ctx context.Context) (*models.Me, error) {
	var me models.Me
	if err := c.doJSON(ctx, http.MethodGet, "me", c.endpoints.Me, nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// Login authenticates the session; the server sets session and csrf cookies.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{
		"email":    strings.ToLower(strings.TrimSpace(email)),
		"password": password,
	}
	return c.doJSON(ctx, http.MethodPost, "login", c.endpoints.Login, body, nil)
}

// Register creates an account and signs the session in.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.Me, error) {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	var me models.Me
	if err := c.doJSON(ctx, http.MethodPost, "register", c.endpoints.Register, reg, &me); err != nil {
		return nil, err
	}
	me.IsAuthenticated = true
	return &me, nil
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "logout", c.endpoints.Logout, nil, nil)
}

// MyBookingsByStatus lists the signed-in user's bookings grouped by status.
func (c *Client) MyBookingsByStatus(ctx context.Context) (*models.BookingsByStatus, error) {
	var resp models.BookingsByStatus
	if err := c.doJSON(ctx, http.MethodGet, "my_bookings", c.endpoints.MyBookings, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelMyBooking cancels one of the signed-in user's bookings.
func (c *Client) CancelMyBooking(ctx context.Context, id int64) error {
	path := joinPath(c.endpoints.MyBooking, strconv.FormatInt(id, 10), "cancel")
	return c.doJSON(ctx, http.MethodDelete, "my_booking_cancel", path, nil, nil)
}

// MyBookingICal downloads the calendar file of a booking.
func (c *Client) MyBookingICal(ctx context.Context, id int64) ([]byte, error) {
	path := joinPath(c.endpoints.MyBooking, strconv.FormatInt(id, 10), "ical")
	return c.doRaw(ctx, http.MethodGet, "my_booking_ical", path, nil)
}

// ManagerFilter narrows the manager booking list.
type ManagerFilter struct {
	DateFrom string
	DateTo   string
	Statuses []models.Status
	TableID  int64
	AreaID   int64
}

func (f ManagerFilter) values() url.Values {
	q := url.Values{}
	if f.DateFrom != "" {
		q.Set("date_from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("date_to", f.DateTo)
	}
	for _, s := range f.Statuses {
		q.Add("status", string(s))
	}
	if f.TableID > 0 {
		q.Set("table", strconv.FormatInt(f.TableID, 10))
	}
	if f.AreaID > 0 {
		q.Set("area", strconv.FormatInt(f.AreaID, 10))
	}
	return q
}

// ManagerBookings lists bookings for staff.
func (c *Client) ManagerBookings(ctx context.Context, filter ManagerFilter) ([]models.Booking, error) {
	var wrap struct {
		Count   int              `json:"count"`
		Results []models.Booking `json:"results"`
	}
	path := withQuery(joinPath(c.endpoints.Manager, "bookings")+"/", filter.values())
	if err := c.doJSON(ctx, http.MethodGet, "manager_bookings", path, nil, &wrap); err != nil {
		return nil, err
	}
	return wrap.Results, nil
}

// SetBookingStatus moves a booking to a new status.
func (c *Client) SetBookingStatus(ctx context.Context, id int64, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	path := joinPath(c.endpoints.Manager, "bookings", strconv.FormatInt(id, 10), "status")
	return c.doJSON(ctx, http.MethodPost, "manager_set_status", path, map[string]string{"status": string(status)}, nil)
}

// StatusChoices lists the statuses staff can assign.
func (c *Client) StatusChoices(ctx context.Context) ([]models.StatusChoice, error) {
	var out []models.StatusChoice
	if err := c.doJSON(ctx, http.MethodGet, "manager_statuses", joinPath(c.endpoints.Manager, "statuses")+"/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, method, label, path string, body, out any) error {
	data, err := c.doRaw(ctx, method, label, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", label, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, label, path string, body any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", label, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(models.RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet && method != http.MethodHead {
		req.Header.Set(models.CSRFHeader, c.CSRFToken())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncHTTP(label, "error")
		return nil, err
	}
	defer resp.Body.Close()

	metrics.IncHTTP(label, statusClass(resp.StatusCode))
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", label, err)
	}

	if resp.StatusCode >= 300 {
		apiErr := parseError(resp.StatusCode, data)
		c.logger.Debug().
			Str("endpoint", label).
			Int("status", resp.StatusCode).
			Str("request_id", req.Header.Get(models.RequestIDHeader)).
			Msg("backend returned error")
		return nil, apiErr
	}
	return data, nil
}

func (c *Client) resolve(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return c.baseURL.String() + path
	}
	return c.baseURL.ResolveReference(ref).String()
}

// AsError unwraps a backend error response.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

func joinPath(base string, parts ...string) string {
	out := strings.TrimRight(base, "/")
	for _, p := range parts {
		out += "/" + strings.Trim(p, "/")
	}
	return out
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}
