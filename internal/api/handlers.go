package api

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/mail"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yousefshawky/zakatyyy/internal/config"
	"github.com/yousefshawky/zakatyyy/internal/database"
	"github.com/yousefshawky/zakatyyy/internal/gold"
	"github.com/yousefshawky/zakatyyy/internal/logger"
	"github.com/yousefshawky/zakatyyy/internal/mailer"
	"github.com/yousefshawky/zakatyyy/internal/zakat"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// NisaabProvider serves the current Nisaab value. ok=false means the value
// is unavailable (feed down, no cache); the page renders without it.
type NisaabProvider interface {
	NisaabPrice(ctx context.Context) (price decimal.Decimal, ok bool)
}

// ReminderUpserter pushes a subscriber and their due dates to the mailing
// list provider.
type ReminderUpserter interface {
	Configured() bool
	UpsertContact(ctx context.Context, email string, dates []time.Time) error
}

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db     *database.DB
	nisaab NisaabProvider
	mailer ReminderUpserter
	cfg    *config.Config
	logger *slog.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, nisaab NisaabProvider, upserter ReminderUpserter, cfg *config.Config, log *slog.Logger) *Handlers {
	return &Handlers{
		db:     db,
		nisaab: nisaab,
		mailer: upserter,
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Health(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// =============================================================================
// Web form
// =============================================================================

// indexData is the template payload for the form page.
type indexData struct {
	Nisaab           string
	NisaabAvailable  bool
	ThresholdDate    string
	Email            string
	Dates            []string
	Notice           string
	FormError        string
	RemindersEnabled bool
}

// Index handles GET / and renders the empty form.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	h.renderIndex(w, r, indexData{})
}

// IndexSubmit handles POST / for both form actions:
// calculate_dates projects and renders the due dates; send_reminders
// additionally registers the email with the mailing-list provider.
func (h *Handlers) IndexSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.renderIndex(w, r, indexData{FormError: "Could not read the submitted form."})
		return
	}

	data := indexData{
		ThresholdDate: r.PostFormValue("threshold_date"),
		Email:         r.PostFormValue("email"),
	}

	anchor, err := zakat.ParseDate(data.ThresholdDate)
	if err != nil {
		logger.Warn(ctx, "invalid threshold date submitted",
			slog.String("threshold_date", data.ThresholdDate))
		data.FormError = "Please enter a valid date in YYYY-MM-DD format."
		h.renderIndex(w, r, data)
		return
	}

	dates, err := zakat.DueDates(anchor, h.now())
	if err != nil {
		logger.Error(ctx, "due date projection failed", err,
			slog.String("anchor", data.ThresholdDate))
		data.FormError = "That date is outside the supported range of the Hijri calendar."
		h.renderIndex(w, r, data)
		return
	}

	for _, d := range dates {
		data.Dates = append(data.Dates, zakat.FormatDate(d))
	}

	if r.PostForm.Has("send_reminders") {
		if data.Email == "" {
			data.FormError = "An email address is required to receive reminders."
			h.renderIndex(w, r, data)
			return
		}
		if _, err := mail.ParseAddress(data.Email); err != nil {
			data.FormError = "Please enter a valid email address."
			h.renderIndex(w, r, data)
			return
		}

		if err := h.registerReminder(ctx, data.Email, anchor, dates); err != nil {
			logger.Error(ctx, "reminder signup failed", err,
				slog.String("email", data.Email))
			// The dates are still valid; only the signup failed.
			data.FormError = "Your dates were calculated, but we could not register the reminders. Please try again later."
			h.renderIndex(w, r, data)
			return
		}

		data.Notice = fmt.Sprintf("Reminders will be sent to %s before each due date.", data.Email)
	}

	h.renderIndex(w, r, data)
}

// registerReminder upserts the contact and records the signup locally.
func (h *Handlers) registerReminder(ctx context.Context, email string, anchor time.Time, dates []time.Time) error {
	if err := h.mailer.UpsertContact(ctx, email, dates); err != nil {
		return err
	}

	signup := &database.ReminderSignup{
		SubscriberHash: mailer.SubscriberHash(email),
		Email:          email,
		AnchorDate:     zakat.FormatDate(anchor),
		FirstDueDate:   zakat.FormatDate(dates[0]),
		SyncedAt:       h.now(),
	}
	if err := h.db.UpsertSignup(ctx, signup); err != nil {
		// The provider accepted the contact; a failed audit row should not
		// be reported to the user as a signup failure.
		logger.Warn(ctx, "failed to record signup", slog.Any("error", err))
	}

	return nil
}

func (h *Handlers) renderIndex(w http.ResponseWriter, r *http.Request, data indexData) {
	ctx := r.Context()

	if price, ok := h.nisaab.NisaabPrice(ctx); ok {
		data.Nisaab = price.StringFixed(2)
		data.NisaabAvailable = true
	}
	data.RemindersEnabled = h.mailer.Configured()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		logger.Error(ctx, "render index template", err)
	}
}

// =============================================================================
// JSON API
// =============================================================================

// GetZakatDates handles GET /api/v1/zakat/dates?anchor=YYYY-MM-DD
func (h *Handlers) GetZakatDates(w http.ResponseWriter, r *http.Request) {
	anchorStr := r.URL.Query().Get("anchor")
	if anchorStr == "" {
		WriteBadRequest(w, "anchor query parameter is required")
		return
	}

	anchor, err := zakat.ParseDate(anchorStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid anchor date: %s. Use YYYY-MM-DD", anchorStr), "INVALID_DATE")
		return
	}

	hijriAnchor, err := zakat.ToHijri(anchor)
	if err != nil {
		WriteError(w, http.StatusBadRequest,
			"Anchor date is outside the supported Hijri calendar range", "INVALID_DATE")
		return
	}

	dates, err := zakat.DueDates(anchor, h.now())
	if err != nil {
		logger.Error(r.Context(), "due date projection failed", err,
			slog.String("anchor", anchorStr))
		WriteInternalError(w, "Failed to project due dates")
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, zakat.FormatDate(d))
	}

	WriteSuccess(w, map[string]interface{}{
		"anchor":       zakat.FormatDate(anchor),
		"anchor_hijri": hijriAnchor,
		"due_dates":    formatted,
	})
}

// GetNisaab handles GET /api/v1/nisaab
func (h *Handlers) GetNisaab(w http.ResponseWriter, r *http.Request) {
	price, ok := h.nisaab.NisaabPrice(r.Context())

	resp := map[string]interface{}{
		"available": ok,
		"currency":  "USD",
		"grams":     gold.NisaabGrams,
		"day":       zakat.FormatDate(h.now()),
	}
	if ok {
		resp["price"] = price.StringFixed(2)
	}

	WriteSuccess(w, resp)
}

// CreateReminder handles POST /api/v1/reminders
func (h *Handlers) CreateReminder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email         string `json:"email"`
		ThresholdDate string `json:"threshold_date"`
	}

	if err := decodeJSON(r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	if req.Email == "" || req.ThresholdDate == "" {
		WriteBadRequest(w, "Both email and threshold_date are required")
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		WriteBadRequest(w, "Invalid email address")
		return
	}

	anchor, err := zakat.ParseDate(req.ThresholdDate)
	if err != nil {
		WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid threshold date: %s. Use YYYY-MM-DD", req.ThresholdDate), "INVALID_DATE")
		return
	}

	dates, err := zakat.DueDates(anchor, h.now())
	if err != nil {
		logger.Error(ctx, "due date projection failed", err,
			slog.String("anchor", req.ThresholdDate))
		WriteInternalError(w, "Failed to project due dates")
		return
	}

	if err := h.registerReminder(ctx, req.Email, anchor, dates); err != nil {
		logger.Error(ctx, "reminder signup failed", err,
			slog.String("email", req.Email))
		WriteUpstreamError(w, "Mailing list provider rejected the signup")
		return
	}

	formatted := make([]string, 0, len(dates))
	for _, d := range dates {
		formatted = append(formatted, zakat.FormatDate(d))
	}

	WriteSuccess(w, map[string]interface{}{
		"email":     req.Email,
		"due_dates": formatted,
	})
}

// decodeJSON decodes JSON request body.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	return json.NewDecoder(r.Body).Decode(v)
}
