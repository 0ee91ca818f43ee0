package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/services"
)

type UploadHandler struct {
	ingestionService services.IngestionService
	maxFileSize      int64
	log              *zap.Logger
}

func NewUploadHandler(
	ingestionService services.IngestionService,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		ingestionService: ingestionService,
		maxFileSize:      maxFileSize,
		log:              log,
	}
}

// HandleUpload handles POST /upload. The multipart field "file" carries a
// status spreadsheet or a statement of work.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "multipart field 'file' is required",
		})
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	if _, err := services.KindForFile(file.Filename); err != nil {
		return respondError(c, h.log, err)
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	defer src.Close()

	report, err := h.ingestionService.Ingest(c.UserContext(), file.Filename, src)
	if err != nil {
		return respondError(c, h.log, err)
	}

	message := "upload successful"
	if !report.Changed() {
		message = "upload successful, no changes"
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
		"report":  report,
	})
}
