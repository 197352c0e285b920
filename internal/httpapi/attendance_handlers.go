package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/cruzverde/attendance/internal/auth"
)

func (h *Handler) checkIn(c *gin.Context) {
	var req locationRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	loc, err := req.location()
	if err != nil {
		h.writeError(c, err)
		return
	}
	rec, err := h.sessions.CheckIn(c.Request.Context(), auth.CurrentAccount(c).ID, loc)
	if err != nil {
		h.writeError(c, err)
		return
	}
	created(c, rec, "check-in recorded")
}

func (h *Handler) checkOut(c *gin.Context) {
	var req locationRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	loc, err := req.location()
	if err != nil {
		h.writeError(c, err)
		return
	}
	rec, err := h.sessions.CheckOut(c.Request.Context(), auth.CurrentAccount(c).ID, c.Param("id"), loc)
	if err != nil {
		h.writeError(c, err)
		return
	}
	okMessage(c, rec, "check-out recorded")
}

func (h *Handler) myAttendances(c *gin.Context) {
	records, err := h.sessions.ListOwn(c.Request.Context(), auth.CurrentAccount(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	okList(c, records, len(records))
}

func (h *Handler) activeSession(c *gin.Context) {
	rec, err := h.sessions.Active(c.Request.Context(), auth.CurrentAccount(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, rec)
}

func (h *Handler) mySummary(c *gin.Context) {
	sum, err := h.sessions.Summary(c.Request.Context(), auth.CurrentAccount(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, sum)
}
