package handlers

import (
	"io"
	"log/slog"
	"strings"

	"github.com/agentarium/agentarium/internal/middleware"
	"github.com/agentarium/agentarium/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SpeechHandler struct {
	db          *gorm.DB
	transcriber services.Transcriber
}

func NewSpeechHandler(db *gorm.DB, transcriber services.Transcriber) *SpeechHandler {
	return &SpeechHandler{db: db, transcriber: transcriber}
}

// Transcribe converts an uploaded audio file to text.
func (h *SpeechHandler) Transcribe(c *fiber.Ctx) error {
	return h.transcribe(c, false)
}

// TranscribeScenario transcribes audio and stores the text as the caller's
// scenario. The response shape matches Transcribe.
func (h *SpeechHandler) TranscribeScenario(c *fiber.Ctx) error {
	return h.transcribe(c, true)
}

func (h *SpeechHandler) transcribe(c *fiber.Ctx, setScenario bool) error {
	if !strings.HasPrefix(c.Get("Content-Type"), "multipart/form-data") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid audio format: expected multipart/form-data",
		})
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   true,
			"message": "Audio file is required",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid audio format: unreadable file",
		})
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil || len(audio) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid audio format: empty file",
		})
	}

	result, err := h.transcriber.Transcribe(c.Context(), fileHeader.Filename, audio)
	if err != nil {
		slog.Error("Transcription failed", "filename", fileHeader.Filename, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   true,
			"message": "Transcription failed",
		})
	}

	if setScenario {
		userID := middleware.CallerID(c)
		if state, err := getOrCreateState(h.db, userID); err == nil {
			state.Scenario = result.Text
			if err := h.db.Save(state).Error; err != nil {
				slog.Warn("Failed to store transcribed scenario", "user_id", userID, "error", err)
			}
		}
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"text":              result.Text,
		"language_detected": result.Language,
		"duration_seconds":  result.DurationSeconds,
		"word_count":        len(strings.Fields(result.Text)),
		"confidence_score":  0.9,
		"processing_info": fiber.Map{
			"filename":   fileHeader.Filename,
			"size_bytes": len(audio),
		},
	})
}
