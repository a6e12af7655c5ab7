package handlers

import (
	"fmt"

	"github.com/agentarium/agentarium/internal/middleware"
	"github.com/agentarium/agentarium/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SavedAgentHandler manages the caller's agent library, a catalog separate
// from the active simulation agents.
type SavedAgentHandler struct {
	db *gorm.DB
}

func NewSavedAgentHandler(db *gorm.DB) *SavedAgentHandler {
	return &SavedAgentHandler{db: db}
}

func (h *SavedAgentHandler) ListSavedAgents(c *fiber.Ctx) error {
	agents := []models.SavedAgent{}
	if err := h.db.Where("user_id = ?", middleware.CallerID(c)).Find(&agents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to list saved agents",
		})
	}
	return c.JSON(agents)
}

func (h *SavedAgentHandler) CreateSavedAgent(c *fiber.Ctx) error {
	var req agentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	if details := req.validateCreate(); len(details) > 0 {
		return validationFailed(c, details)
	}

	agent := models.SavedAgent{
		UserID:       middleware.CallerID(c),
		Name:         *req.Name,
		Archetype:    *req.Archetype,
		Personality:  datatypes.NewJSONType(personalityFromMap(req.Personality)),
		Goal:         *req.Goal,
		Expertise:    *req.Expertise,
		Background:   *req.Background,
		AvatarPrompt: *req.AvatarPrompt,
	}
	if req.MemorySummary != nil {
		agent.MemorySummary = *req.MemorySummary
	}
	if req.AvatarURL != nil {
		agent.AvatarURL = *req.AvatarURL
	}

	if err := h.db.Create(&agent).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to create saved agent",
		})
	}
	return c.JSON(agent)
}

func (h *SavedAgentHandler) UpdateSavedAgent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid saved agent ID",
		})
	}

	var agent models.SavedAgent
	if err := h.db.First(&agent, "id = ? AND user_id = ?", id, middleware.CallerID(c)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Saved agent not found",
		})
	}

	var req agentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	if req.Personality != nil {
		if details := validatePersonality(req.Personality); len(details) > 0 {
			return validationFailed(c, details)
		}
		agent.Personality = datatypes.NewJSONType(personalityFromMap(req.Personality))
	}
	if req.Archetype != nil {
		if !models.ValidArchetype(*req.Archetype) {
			return validationFailed(c, []fieldError{{Field: "archetype", Message: "unknown archetype"}})
		}
		agent.Archetype = *req.Archetype
	}
	if req.Name != nil {
		agent.Name = *req.Name
	}
	if req.Goal != nil {
		agent.Goal = *req.Goal
	}
	if req.Expertise != nil {
		agent.Expertise = *req.Expertise
	}
	if req.Background != nil {
		agent.Background = *req.Background
	}
	if req.MemorySummary != nil {
		agent.MemorySummary = *req.MemorySummary
	}
	if req.AvatarPrompt != nil {
		agent.AvatarPrompt = *req.AvatarPrompt
	}
	if req.AvatarURL != nil {
		agent.AvatarURL = *req.AvatarURL
	}

	if err := h.db.Save(&agent).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to update saved agent",
		})
	}
	return c.JSON(agent)
}

func (h *SavedAgentHandler) DeleteSavedAgent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid saved agent ID",
		})
	}

	res := h.db.Delete(&models.SavedAgent{}, "id = ? AND user_id = ?", id, middleware.CallerID(c))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to delete saved agent",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Saved agent not found",
		})
	}
	return c.JSON(fiber.Map{"message": "Saved agent deleted"})
}

// ToggleFavorite flips the is_favorite flag on one of the caller's saved
// agents. Flipping twice restores the original value.
func (h *SavedAgentHandler) ToggleFavorite(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid saved agent ID",
		})
	}

	var agent models.SavedAgent
	if err := h.db.First(&agent, "id = ? AND user_id = ?", id, middleware.CallerID(c)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Saved agent not found",
		})
	}

	agent.IsFavorite = !agent.IsFavorite
	if err := h.db.Save(&agent).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to update saved agent",
		})
	}
	return c.JSON(agent)
}

// BulkDeleteSavedAgents mirrors the agent bulk delete for the library.
func (h *SavedAgentHandler) BulkDeleteSavedAgents(c *fiber.Ctx) error {
	ids, err := parseBulkIDs(c.Body())
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   true,
			"message": "Body must be an id array or {\"agent_ids\": [...]}",
		})
	}

	deleted := int64(0)
	if len(ids) > 0 {
		res := h.db.Delete(&models.SavedAgent{}, "id IN ? AND user_id = ?", ids, middleware.CallerID(c))
		if res.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"message": "Failed to delete saved agents",
			})
		}
		deleted = res.RowsAffected
	}

	return c.JSON(fiber.Map{
		"message":       fmt.Sprintf("Deleted %d saved agents", deleted),
		"deleted_count": deleted,
	})
}
