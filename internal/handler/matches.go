package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pelada/matchday/internal/middleware"
	"github.com/pelada/matchday/internal/models"
	"github.com/pelada/matchday/internal/service"
)

// MatchHandler serves match creation and lookup plus player profiles.
type MatchHandler struct {
	svc *service.MatchService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(svc *service.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

type createMatchRequest struct {
	GroupID     string `json:"group_id"`
	ScheduledAt int64  `json:"scheduled_at" binding:"required"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity" binding:"required,gte=1"`
}

// Create opens a new match owned by the authenticated user.
func (h *MatchHandler) Create(c *gin.Context) {
	var req createMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match, err := h.svc.CreateMatch(c.Request.Context(), &models.Match{
		GroupID:     req.GroupID,
		OrganizerID: middleware.GetUserID(c),
		ScheduledAt: req.ScheduledAt,
		Location:    req.Location,
		Capacity:    req.Capacity,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toMatchDTO(*match))
}

// Get returns one match.
func (h *MatchHandler) Get(c *gin.Context) {
	match, err := h.svc.GetMatch(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toMatchDTO(*match))
}

type updateProfileRequest struct {
	Name        string  `json:"name"`
	Position    string  `json:"position" binding:"required"`
	SkillRating float64 `json:"skill_rating"`
}

// UpdateProfile sets the authenticated user's football profile.
func (h *MatchHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile, err := h.svc.UpdateProfile(c.Request.Context(),
		middleware.GetUserID(c), req.Name, models.Position(req.Position), req.SkillRating)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileDTO(*profile))
}

// GetProfile returns the authenticated user's profile.
func (h *MatchHandler) GetProfile(c *gin.Context) {
	profile, err := h.svc.GetProfile(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfileDTO(*profile))
}
