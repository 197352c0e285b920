package attendance

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/cruzverde/attendance/internal/apperr"
)

// Location is where a volunteer was when checking in or out.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Validate requires finite in-range coordinates and a non-empty address.
func (l Location) Validate() error {
	if math.IsNaN(l.Lat) || math.IsInf(l.Lat, 0) || l.Lat < -90 || l.Lat > 90 {
		return ErrInvalidLocation
	}
	if math.IsNaN(l.Lng) || math.IsInf(l.Lng, 0) || l.Lng < -180 || l.Lng > 180 {
		return ErrInvalidLocation
	}
	if strings.TrimSpace(l.Address) == "" {
		return apperr.Wrap(ErrInvalidLocation, errAddressRequired)
	}
	return nil
}

// Record is one check-in/check-out cycle. CheckOut, LocationOut and Duration
// stay nil while the session is active.
type Record struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	CheckIn     time.Time  `json:"checkIn"`
	LocationIn  Location   `json:"locationIn"`
	CheckOut    *time.Time `json:"checkOut"`
	LocationOut *Location  `json:"locationOut"`
	Duration    *int       `json:"duration"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Active reports whether the session has not been closed.
func (r Record) Active() bool {
	return r.CheckOut == nil
}

// Minutes returns the recorded duration, zero while active.
func (r Record) Minutes() int {
	if r.Duration == nil {
		return 0
	}
	return *r.Duration
}

var (
	ErrSessionAlreadyActive = apperr.New(apperr.KindConflict, "SESSION_ALREADY_ACTIVE", "you already have an active session")
	ErrSessionAlreadyClosed = apperr.New(apperr.KindConflict, "SESSION_ALREADY_CLOSED", "this session is already closed")
	ErrNotFound             = apperr.New(apperr.KindNotFound, "ATTENDANCE_NOT_FOUND", "attendance not found")
	ErrInvalidLocation      = apperr.New(apperr.KindValidation, "INVALID_LOCATION", "location requires latitude, longitude and address")
)

var errAddressRequired = errors.New("address is required")

// SessionMinutes is round((checkOut-checkIn)/60000ms). A check-out that
// precedes its check-in yields 0 and clamped=true.
func SessionMinutes(checkIn, checkOut time.Time) (minutes int, clamped bool) {
	ms := checkOut.Sub(checkIn).Milliseconds()
	if ms < 0 {
		return 0, true
	}
	return int(math.Floor(float64(ms)/60000 + 0.5)), false
}

// FormatHours renders minutes as hours with the given number of decimals,
// rounding halves up.
func FormatHours(minutes int, decimals int) string {
	return FormatFixed(float64(minutes)/60, decimals)
}

// FormatFixed renders v with decimals places, rounding halves away from zero.
func FormatFixed(v float64, decimals int) string {
	scale := math.Pow10(decimals)
	rounded := math.Floor(math.Abs(v)*scale+0.5) / scale
	if v < 0 {
		rounded = -rounded
	}
	return strconv.FormatFloat(rounded, 'f', decimals, 64)
}
