package httpapi

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/attendance"
	"github.com/cruzverde/attendance/internal/report"
)

const defaultActivityLimit = 20

func (h *Handler) listVolunteers(c *gin.Context) {
	volunteers, err := h.accounts.ListVolunteers(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	okList(c, volunteers, len(volunteers))
}

func (h *Handler) toggleVolunteer(c *gin.Context) {
	acc, err := h.accounts.ToggleActive(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	msg := "volunteer disabled"
	if acc.Active {
		msg = "volunteer enabled"
	}
	okMessage(c, acc, msg)
}

func (h *Handler) listAttendances(c *gin.Context) {
	f, _, err := filterQuery(c, h.reports.Location())
	if err != nil {
		h.writeError(c, err)
		return
	}
	entries, err := h.reports.ListAll(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	okList(c, entries, len(entries))
}

func (h *Handler) buildReport(c *gin.Context) ([]report.UserReport, string, bool) {
	w, label, err := periodQuery(c, h.reports.Location())
	if err != nil {
		h.writeError(c, err)
		return nil, "", false
	}
	reports, err := h.reports.Report(c.Request.Context(), attendance.Filter{Window: w})
	if err != nil {
		h.writeError(c, err)
		return nil, "", false
	}
	return reports, label, true
}

func (h *Handler) reportSummary(c *gin.Context) {
	reports, _, ok := h.buildReport(c)
	if !ok {
		return
	}
	okList(c, reports, len(reports))
}

func (h *Handler) exportReport(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	reports, label, ok := h.buildReport(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.Export(&buf, format, reports); err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", attachment(format.Filename(label)))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

// attachment builds a Content-Disposition value with an RFC 5987 filename.
func attachment(name string) string {
	return "attachment; filename*=UTF-8''" + url.PathEscape(name)
}

func (h *Handler) stats(c *gin.Context) {
	st, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, st)
}

type activityEntry struct {
	attendance.Event
	User account.Owner `json:"user"`
}

func (h *Handler) recentActivity(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultActivityLimit, 1, maxPageLimit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	events, err := h.feed.Recent(c.Request.Context(), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ids := make([]string, 0, len(events))
	for _, evt := range events {
		ids = append(ids, evt.UserID)
	}
	owners, err := h.reports.Owners(c.Request.Context(), ids)
	if err != nil {
		h.writeError(c, err)
		return
	}
	entries := make([]activityEntry, 0, len(events))
	for _, evt := range events {
		entries = append(entries, activityEntry{Event: evt, User: owners[evt.UserID]})
	}
	okList(c, entries, len(entries))
}
