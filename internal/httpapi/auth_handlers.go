package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/auth"
)

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	session, err := h.accounts.Register(c.Request.Context(), account.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	created(c, session, "account created")
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	session, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, session)
}

func (h *Handler) me(c *gin.Context) {
	ok(c, auth.CurrentAccount(c))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.gate.Revoke(c.Request.Context(), auth.CurrentClaims(c)); err != nil {
		h.writeError(c, err)
		return
	}
	okMessage(c, nil, "logged out")
}

func (h *Handler) changePassword(c *gin.Context) {
	var req passwordRequest
	if err := bindJSON(c, &req); err != nil {
		h.writeError(c, err)
		return
	}
	acc := auth.CurrentAccount(c)
	if err := h.accounts.ChangePassword(c.Request.Context(), acc.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}
	okMessage(c, nil, "password updated")
}
