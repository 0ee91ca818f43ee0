package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/models"
	"alfredoptarigan/skill-scout/internal/services"
)

type MatchHandler struct {
	matcher services.Matcher
	log     *zap.Logger
}

func NewMatchHandler(matcher services.Matcher, log *zap.Logger) *MatchHandler {
	return &MatchHandler{
		matcher: matcher,
		log:     log,
	}
}

// HandleCandidateMatches handles GET /candidates/:id/matches.
func (h *MatchHandler) HandleCandidateMatches(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	matches, err := h.matcher.RankPositionsForCandidate(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(models.MatchResponse[models.PositionMatch]{
		ID:      id.String(),
		Count:   len(matches),
		Matches: matches,
	})
}

// HandlePositionMatches handles GET /positions/:id/matches.
func (h *MatchHandler) HandlePositionMatches(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid position ID format",
		})
	}

	matches, err := h.matcher.RankCandidatesForPosition(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(models.MatchResponse[models.CandidateMatch]{
		ID:      id.String(),
		Count:   len(matches),
		Matches: matches,
	})
}

// HandleOpenPositions handles GET /positions/open?tonum=&posnum=.
func (h *MatchHandler) HandleOpenPositions(c *fiber.Ctx) error {
	var query models.OpenPositionsQuery
	if err := c.QueryParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}
	if err := query.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	positions, err := h.matcher.SearchOpenPositions(c.UserContext(), query.TaskOrderID, query.PositionNumber)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"count":     len(positions),
		"positions": positions,
	})
}
