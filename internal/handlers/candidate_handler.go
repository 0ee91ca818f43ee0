package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/models"
	"alfredoptarigan/skill-scout/internal/services"
)

type CandidateHandler struct {
	candidateService services.CandidateService
	log              *zap.Logger
}

func NewCandidateHandler(candidateService services.CandidateService, log *zap.Logger) *CandidateHandler {
	return &CandidateHandler{
		candidateService: candidateService,
		log:              log,
	}
}

// HandleSave handles POST /candidates. Accepts JSON or a multipart form with
// an optional "resume" file.
func (h *CandidateHandler) HandleSave(c *fiber.Ctx) error {
	var req models.SaveCandidateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	var resume *services.ResumeFile
	if file, err := c.FormFile("resume"); err == nil {
		src, err := file.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "failed to open resume file",
			})
		}
		defer src.Close()
		resume = &services.ResumeFile{Name: file.Filename, Reader: src}
	}

	candidate, err := h.candidateService.Save(c.UserContext(), req, resume)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.Status(fiber.StatusCreated).JSON(candidate)
}

// HandleGet handles GET /candidates/:id.
func (h *CandidateHandler) HandleGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid candidate ID format",
		})
	}

	candidate, err := h.candidateService.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(candidate)
}
