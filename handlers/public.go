package handlers

import (
	"lessonbook_app_go/db"
	"lessonbook_app_go/models"
	"lessonbook_app_go/services"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// DefaultAvailabilityDays is the span returned when ?end is omitted
const DefaultAvailabilityDays = 30

type publicProfile struct {
	Name       string                 `json:"name"`
	Subdomain  string                 `json:"subdomain"`
	Bio        string                 `json:"bio"`
	Theme      string                 `json:"theme"`
	Timezone   string                 `json:"timezone"`
	Currency   string                 `json:"currency"`
	HourlyRate *decimal.Decimal       `json:"hourly_rate,omitempty"`
	Booking    publicBookingPolicy    `json:"booking"`
	FormFields []models.FormFieldSpec `json:"form_fields"`
}

type publicBookingPolicy struct {
	AllowCustomerBook      bool `json:"allow_customer_book"`
	MinAdvanceBookingHours int  `json:"min_advance_booking_hours"`
	MaxAdvanceBookingDays  int  `json:"max_advance_booking_days"`
	SessionDurationMinutes int  `json:"session_duration_minutes"`
	CancellationHours      int  `json:"cancellation_policy_hours"`
}

// PublicProfileHandler returns what a booking page needs to render
func PublicProfileHandler(c echo.Context) error {
	teacher, err := tenant(c)
	if err != nil {
		return err
	}
	settings, err := services.GetBookingSettings(db.DB, teacher.ID)
	if err != nil {
		return serviceError(err)
	}

	profile := publicProfile{
		Name:      teacher.Name,
		Subdomain: teacher.Subdomain,
		Bio:       teacher.Bio,
		Theme:     teacher.Theme,
		Timezone:  teacher.Timezone,
		Currency:  teacher.Currency,
		Booking: publicBookingPolicy{
			AllowCustomerBook:      settings.AllowCustomerBook,
			MinAdvanceBookingHours: settings.MinAdvanceBookingHours,
			MaxAdvanceBookingDays:  settings.MaxAdvanceBookingDays,
			SessionDurationMinutes: settings.SessionDurationMinutes,
			CancellationHours:      settings.CancellationPolicyHours,
		},
		FormFields: models.EnabledFormFields(settings.FormFields),
	}
	if teacher.HasRate() {
		profile.HourlyRate = teacher.HourlyRate
	}
	return c.JSON(http.StatusOK, profile)
}

// PublicAvailabilityHandler lists open intervals for ?start..?end. Start
// defaults to today in the teacher's time zone.
func PublicAvailabilityHandler(c echo.Context) error {
	teacher, err := tenant(c)
	if err != nil {
		return err
	}
	now := services.DefaultClock.Now()

	start := services.TodayIn(now, teacher.Location())
	if v := c.QueryParam("start"); v != "" {
		if start, err = parseDate("start", v); err != nil {
			return err
		}
	}
	end := start.AddDate(0, 0, DefaultAvailabilityDays-1)
	if v := c.QueryParam("end"); v != "" {
		if end, err = parseDate("end", v); err != nil {
			return err
		}
	}

	days, err := services.ResolveAvailability(db.DB, teacher.ID, start, end, now)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, days)
}

// PublicCalendarHandler returns a month grid for ?year&month, defaulting to
// the current month in the teacher's time zone
func PublicCalendarHandler(c echo.Context) error {
	teacher, err := tenant(c)
	if err != nil {
		return err
	}
	now := services.DefaultClock.Now()
	today := services.TodayIn(now, teacher.Location())

	year, month := today.Year(), int(today.Month())
	if v := c.QueryParam("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			return invalidField("year", "must be a number")
		}
	}
	if v := c.QueryParam("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil {
			return invalidField("month", "must be a number")
		}
	}

	grid, err := services.ResolveMonth(db.DB, teacher.ID, year, time.Month(month), now)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, grid)
}

// PublicWindowOptionsHandler returns the start and end choices of a window
func PublicWindowOptionsHandler(c echo.Context) error {
	teacher, err := tenant(c)
	if err != nil {
		return err
	}
	window, err := services.GetWindow(db.DB, teacher.ID, c.Param("id"))
	if err != nil {
		return serviceError(err)
	}
	if !window.IsActive {
		return apiError(http.StatusNotFound, CodeNotFound, "availability window not found", "")
	}

	choices, err := services.TimeOptions(window)
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, choices)
}

type cartEntryRequest struct {
	WindowID  string `json:"window_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toCartEntries(reqs []cartEntryRequest) []services.CartEntry {
	entries := make([]services.CartEntry, len(reqs))
	for i, e := range reqs {
		entries[i] = services.CartEntry{
			WindowID:  e.WindowID,
			Date:      e.Date,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
		}
	}
	return entries
}

// PublicSelectHandler validates and prices a cart without booking it
func PublicSelectHandler(c echo.Context) error {
	teacher, err := tenant(c)
	if err != nil {
		return err
	}
	var req struct {
		Entries []cartEntryRequest `json:"entries" validate:"required,min=1,dive"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	quote, err := services.PreviewCart(db.DB, teacher.ID, toCartEntries(req.Entries), services.DefaultClock.Now())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusOK, quote)
}

// PublicCreateReservationsHandler checks out a cart. Either every entry is
// booked or none is.
func PublicCreateReservationsHandler(c echo.Context) error {
	teacher, err := tenant(c)
	if err != nil {
		return err
	}
	var req struct {
		Customer customerRequest    `json:"customer"`
		Entries  []cartEntryRequest `json:"entries" validate:"required,min=1,dive"`
		Notes    string             `json:"notes" validate:"max=2000"`
	}
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := services.CreateReservations(db.DB, teacher.ID, req.Customer.toInput(), toCartEntries(req.Entries), req.Notes, services.DefaultClock.Now())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, result)
}

// PublicCreateRequestHandler files a request-a-quote submission. The body
// is a flat object of form answers keyed by field name.
func PublicCreateRequestHandler(c echo.Context) error {
	teacher, err := tenant(c)
	if err != nil {
		return err
	}
	answers := map[string]string{}
	if err := c.Bind(&answers); err != nil {
		return badRequest("Invalid request body")
	}

	request, err := services.CreateBookingRequest(db.DB, teacher.ID, answers, services.DefaultClock.Now())
	if err != nil {
		return serviceError(err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"id":     request.ID,
		"status": request.Status,
	})
}
