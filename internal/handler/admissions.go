package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pelada/matchday/internal/middleware"
	"github.com/pelada/matchday/internal/models"
	"github.com/pelada/matchday/internal/service"
)

// AdmissionHandler serves the admission state machine: entry requests,
// approvals, declines, cancellations and roster views. After every roster
// mutation it asks the settlement service to reconcile the payment ledger,
// which is the explicit recompute call the engine requires of its caller.
type AdmissionHandler struct {
	admissions *service.AdmissionService
	settlement *service.SettlementService
}

// NewAdmissionHandler creates a new AdmissionHandler.
func NewAdmissionHandler(admissions *service.AdmissionService, settlement *service.SettlementService) *AdmissionHandler {
	return &AdmissionHandler{admissions: admissions, settlement: settlement}
}

// RequestEntry records the authenticated user's request to join the match.
func (h *AdmissionHandler) RequestEntry(c *gin.Context) {
	rec, err := h.admissions.RequestEntry(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAdmissionDTO(rec))
}

// Approve admits a player. With ?waitlist=false a full match returns 409
// instead of waitlisting the player.
func (h *AdmissionHandler) Approve(c *gin.Context) {
	matchID := c.Param("id")
	allowWaitlist := c.DefaultQuery("waitlist", "true") != "false"

	out, err := h.admissions.Approve(c.Request.Context(), matchID, c.Param("userId"), allowWaitlist)
	if err != nil {
		writeError(c, err)
		return
	}

	h.reconcile(c, matchID)
	c.JSON(http.StatusOK, gin.H{
		"record":     toAdmissionDTO(out.Record),
		"downgraded": out.Downgraded,
	})
}

// Decline rejects a player's request.
func (h *AdmissionHandler) Decline(c *gin.Context) {
	matchID := c.Param("id")

	rec, err := h.admissions.Decline(c.Request.Context(), matchID, c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}

	h.reconcile(c, matchID)
	c.JSON(http.StatusOK, toAdmissionDTO(rec))
}

// Cancel withdraws an approved player, promoting the oldest waitlisted
// request if one exists.
func (h *AdmissionHandler) Cancel(c *gin.Context) {
	matchID := c.Param("id")

	promoted, err := h.admissions.Cancel(c.Request.Context(), matchID, c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}

	h.reconcile(c, matchID)
	c.JSON(http.StatusOK, gin.H{"promoted_user_id": promoted})
}

// Roster returns the approved roster in request order.
func (h *AdmissionHandler) Roster(c *gin.Context) {
	recs, err := h.admissions.ListApproved(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"roster": toAdmissionDTOs(recs)})
}

// List returns every admission record for the match.
func (h *AdmissionHandler) List(c *gin.Context) {
	recs, err := h.admissions.ListAdmissions(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"admissions": toAdmissionDTOs(recs)})
}

// reconcile refreshes the payment ledger after a roster change. A match
// without an expense has no ledger yet, so that case is not an error.
func (h *AdmissionHandler) reconcile(c *gin.Context, matchID string) {
	err := h.settlement.RecomputePayments(c.Request.Context(), matchID)
	if err != nil && !errors.Is(err, models.ErrNoExpenseDefined) {
		slog.Error("Payment recompute after roster change failed", "match_id", matchID, "error", err)
	}
}
