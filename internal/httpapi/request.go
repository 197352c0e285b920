package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cruzverde/attendance/internal/apperr"
	"github.com/cruzverde/attendance/internal/attendance"
)

const (
	dateLayout   = "2006-01-02"
	maxPageLimit = 500
)

var errBadBody = apperr.Validation("request body is not valid JSON")

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// locationRequest keeps the coordinates optional so a missing field is told
// apart from a zero one.
type locationRequest struct {
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
	Address string   `json:"address"`
}

func (r locationRequest) location() (attendance.Location, error) {
	if r.Lat == nil || r.Lng == nil || strings.TrimSpace(r.Address) == "" {
		return attendance.Location{}, attendance.ErrInvalidLocation
	}
	loc := attendance.Location{Lat: *r.Lat, Lng: *r.Lng, Address: strings.TrimSpace(r.Address)}
	return loc, loc.Validate()
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Wrap(errBadBody, err)
	}
	return nil
}

// periodQuery reads month+year or start/end into a window. label names the
// period for export filenames.
func periodQuery(c *gin.Context, loc *time.Location) (w attendance.Window, label string, err error) {
	month, year := c.Query("month"), c.Query("year")
	if month != "" || year != "" {
		if month == "" || year == "" {
			return attendance.Window{}, "", apperr.Validation("month and year must be given together")
		}
		m, err := strconv.Atoi(month)
		if err != nil {
			return attendance.Window{}, "", apperr.Validation("month must be a number")
		}
		y, err := strconv.Atoi(year)
		if err != nil {
			return attendance.Window{}, "", apperr.Validation("year must be a number")
		}
		w, err := attendance.MonthWindow(y, time.Month(m), loc)
		if err != nil {
			return attendance.Window{}, "", err
		}
		return w, w.From.Format("2006-01"), nil
	}

	start, err := dateQuery(c, "start", loc)
	if err != nil {
		return attendance.Window{}, "", err
	}
	end, err := dateQuery(c, "end", loc)
	if err != nil {
		return attendance.Window{}, "", err
	}
	w, err = attendance.DayWindow(start, end, loc)
	if err != nil {
		return attendance.Window{}, "", err
	}
	if !start.IsZero() || !end.IsZero() {
		label = strings.Trim(c.Query("start")+"_"+c.Query("end"), "_")
	}
	return w, label, nil
}

func dateQuery(c *gin.Context, key string, loc *time.Location) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, apperr.Validation(key + " must be a date formatted YYYY-MM-DD")
	}
	return t, nil
}

func intQuery(c *gin.Context, key string, def, min, max int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, apperr.Validation(key + " must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max))
	}
	return n, nil
}

func filterQuery(c *gin.Context, loc *time.Location) (attendance.Filter, string, error) {
	w, label, err := periodQuery(c, loc)
	if err != nil {
		return attendance.Filter{}, "", err
	}
	limit, err := intQuery(c, "limit", 0, 0, maxPageLimit)
	if err != nil {
		return attendance.Filter{}, "", err
	}
	offset, err := intQuery(c, "offset", 0, 0, 1<<31-1)
	if err != nil {
		return attendance.Filter{}, "", err
	}
	return attendance.Filter{
		UserID: strings.TrimSpace(c.Query("userId")),
		Window: w,
		Limit:  limit,
		Offset: offset,
	}, label, nil
}
