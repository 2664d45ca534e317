package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pelada/matchday/internal/service"
)

// TeamHandler serves team generation and the current team sheets.
type TeamHandler struct {
	svc *service.TeamService
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(svc *service.TeamService) *TeamHandler {
	return &TeamHandler{svc: svc}
}

// Generate replaces the match's team assignment with a fresh randomized
// split. Each call is an explicit user action; the result changes every time.
func (h *TeamHandler) Generate(c *gin.Context) {
	sheets, err := h.svc.GenerateTeams(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": toTeamDTOs(sheets)})
}

// Get returns the match's current team assignment.
func (h *TeamHandler) Get(c *gin.Context) {
	sheets, err := h.svc.GetTeams(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"teams": toTeamDTOs(sheets)})
}
