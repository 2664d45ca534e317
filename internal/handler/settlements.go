package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pelada/matchday/internal/middleware"
	"github.com/pelada/matchday/internal/service"
)

// SettlementHandler serves the financial screen: expense, payment ledger and
// the organizer's paid/pending toggle.
type SettlementHandler struct {
	svc *service.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(svc *service.SettlementService) *SettlementHandler {
	return &SettlementHandler{svc: svc}
}

type setExpenseRequest struct {
	TotalCents int64 `json:"total_cents" binding:"required,gte=0"`
}

// SetExpense declares the match's total cost and reconciles the ledger.
func (h *SettlementHandler) SetExpense(c *gin.Context) {
	var req setExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expense, err := h.svc.SetExpense(c.Request.Context(), c.Param("id"), req.TotalCents, middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"match_id":    expense.MatchID,
		"total_cents": expense.TotalCents,
		"set_by":      expense.SetBy,
		"set_at":      expense.SetAt,
	})
}

// GetExpense returns the match's expense.
func (h *SettlementHandler) GetExpense(c *gin.Context) {
	expense, err := h.svc.GetExpense(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"match_id":    expense.MatchID,
		"total_cents": expense.TotalCents,
		"set_by":      expense.SetBy,
		"set_at":      expense.SetAt,
	})
}

// ListPayments returns the match's payment ledger.
func (h *SettlementHandler) ListPayments(c *gin.Context) {
	payments, err := h.svc.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	dtos := make([]paymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	c.JSON(http.StatusOK, gin.H{"payments": dtos})
}

// TogglePayment flips one payment between pending and paid.
func (h *SettlementHandler) TogglePayment(c *gin.Context) {
	payment, err := h.svc.TogglePayment(c.Request.Context(), c.Param("paymentId"), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toPaymentDTO(*payment))
}
