// Package handler exposes the match engine over HTTP/JSON.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pelada/matchday/internal/models"
)

// writeError maps engine error kinds to HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrCapacityExceeded):
		status = http.StatusConflict
	case errors.Is(err, models.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, models.ErrMinimumPlayersNotMet):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNoExpenseDefined):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrNotAuthorized):
		status = http.StatusForbidden
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// admissionDTO is the wire shape of an admission record.
type admissionDTO struct {
	MatchID     string `json:"match_id"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	RequestedAt int64  `json:"requested_at"`
	TeamNumber  int    `json:"team_number,omitempty"`
}

func toAdmissionDTO(rec models.AdmissionRecord) admissionDTO {
	return admissionDTO{
		MatchID:     rec.MatchID,
		UserID:      rec.UserID,
		Status:      string(rec.Status),
		RequestedAt: rec.RequestedAt,
		TeamNumber:  rec.TeamNumber,
	}
}

func toAdmissionDTOs(recs []models.AdmissionRecord) []admissionDTO {
	out := make([]admissionDTO, len(recs))
	for i, rec := range recs {
		out[i] = toAdmissionDTO(rec)
	}
	return out
}

// profileDTO is the wire shape of a profile, without credentials.
type profileDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email,omitempty"`
	Position    string  `json:"position"`
	SkillRating float64 `json:"skill_rating"`
}

func toProfileDTO(p models.Profile) profileDTO {
	return profileDTO{
		ID:          p.ID,
		Name:        p.Name,
		Email:       p.Email,
		Position:    string(p.Position),
		SkillRating: p.SkillRating,
	}
}

// matchDTO is the wire shape of a match.
type matchDTO struct {
	ID          string `json:"id"`
	GroupID     string `json:"group_id,omitempty"`
	OrganizerID string `json:"organizer_id"`
	ScheduledAt int64  `json:"scheduled_at"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
	Status      string `json:"status"`
}

func toMatchDTO(m models.Match) matchDTO {
	return matchDTO{
		ID:          m.ID,
		GroupID:     m.GroupID,
		OrganizerID: m.OrganizerID,
		ScheduledAt: m.ScheduledAt,
		Location:    m.Location,
		Capacity:    m.Capacity,
		Status:      string(m.Status),
	}
}

// teamDTO is the wire shape of one generated team.
type teamDTO struct {
	ID      string       `json:"id"`
	Number  int          `json:"number"`
	Players []profileDTO `json:"players"`
}

func toTeamDTOs(sheets []models.TeamSheet) []teamDTO {
	out := make([]teamDTO, len(sheets))
	for i, sheet := range sheets {
		dto := teamDTO{
			ID:      sheet.Team.ID,
			Number:  sheet.Team.Number,
			Players: make([]profileDTO, 0, len(sheet.Players)),
		}
		for _, p := range sheet.Players {
			p.Email = "" // team sheets are broadly visible
			dto.Players = append(dto.Players, toProfileDTO(p))
		}
		out[i] = dto
	}
	return out
}

// paymentDTO is the wire shape of a payment record.
type paymentDTO struct {
	ID          string `json:"id"`
	MatchID     string `json:"match_id"`
	UserID      string `json:"user_id"`
	AmountCents int64  `json:"amount_cents"`
	Status      string `json:"status"`
	PaidAt      int64  `json:"paid_at,omitempty"`
}

func toPaymentDTO(p models.PaymentRecord) paymentDTO {
	return paymentDTO{
		ID:          p.ID,
		MatchID:     p.MatchID,
		UserID:      p.UserID,
		AmountCents: p.AmountCents,
		Status:      string(p.Status),
		PaidAt:      p.PaidAt,
	}
}
