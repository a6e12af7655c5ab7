package handlers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentarium/agentarium/internal/middleware"
	"github.com/agentarium/agentarium/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AgentHandler struct {
	db *gorm.DB
}

func NewAgentHandler(db *gorm.DB) *AgentHandler {
	return &AgentHandler{db: db}
}

// agentRequest is shared by the agent and saved-agent create/update paths.
// Personality arrives as a raw map so missing traits can be reported
// field by field.
type agentRequest struct {
	Name          *string        `json:"name"`
	Archetype     *string        `json:"archetype"`
	Personality   map[string]int `json:"personality"`
	Goal          *string        `json:"goal"`
	Expertise     *string        `json:"expertise"`
	Background    *string        `json:"background"`
	MemorySummary *string        `json:"memory_summary"`
	AvatarPrompt  *string        `json:"avatar_prompt"`
	AvatarURL     *string        `json:"avatar_url"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// validateCreate checks the full required-field set for creation.
func (r *agentRequest) validateCreate() []fieldError {
	var details []fieldError

	requireText := func(field string, v *string) {
		if v == nil || *v == "" {
			details = append(details, fieldError{Field: field, Message: "field required"})
		}
	}
	requireText("name", r.Name)
	requireText("goal", r.Goal)
	requireText("expertise", r.Expertise)
	requireText("background", r.Background)
	requireText("avatar_prompt", r.AvatarPrompt)

	if r.Archetype == nil || *r.Archetype == "" {
		details = append(details, fieldError{Field: "archetype", Message: "field required"})
	} else if !models.ValidArchetype(*r.Archetype) {
		details = append(details, fieldError{Field: "archetype", Message: "unknown archetype"})
	}

	details = append(details, validatePersonality(r.Personality)...)
	return details
}

func validatePersonality(p map[string]int) []fieldError {
	if p == nil {
		return []fieldError{{Field: "personality", Message: "field required"}}
	}
	var details []fieldError
	for _, trait := range models.PersonalityTraits {
		v, ok := p[trait]
		if !ok {
			details = append(details, fieldError{Field: "personality." + trait, Message: "field required"})
			continue
		}
		if v < 1 || v > 10 {
			details = append(details, fieldError{Field: "personality." + trait, Message: "must be between 1 and 10"})
		}
	}
	return details
}

func personalityFromMap(p map[string]int) models.Personality {
	return models.Personality{
		Extroversion:    p["extroversion"],
		Optimism:        p["optimism"],
		Curiosity:       p["curiosity"],
		Cooperativeness: p["cooperativeness"],
		Energy:          p["energy"],
	}
}

func validationFailed(c *fiber.Ctx, details []fieldError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error":   true,
		"message": fmt.Sprintf("%d validation errors", len(details)),
		"detail":  details,
	})
}

// ListAgents returns the caller's simulation agents.
func (h *AgentHandler) ListAgents(c *fiber.Ctx) error {
	agents := []models.Agent{}
	if err := h.db.Where("user_id = ?", middleware.CallerID(c)).Find(&agents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to list agents",
		})
	}
	return c.JSON(agents)
}

// CreateAgent validates the full agent shape and persists it for the caller.
func (h *AgentHandler) CreateAgent(c *fiber.Ctx) error {
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

	agent := models.Agent{
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
			"message": "Failed to create agent",
		})
	}
	return c.JSON(agent)
}

// UpdateAgent applies a partial update to one of the caller's agents.
// Foreign or unknown ids are indistinguishable: both are 404.
func (h *AgentHandler) UpdateAgent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid agent ID",
		})
	}

	var agent models.Agent
	if err := h.db.First(&agent, "id = ? AND user_id = ?", id, middleware.CallerID(c)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Agent not found",
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
			"message": "Failed to update agent",
		})
	}
	return c.JSON(agent)
}

// DeleteAgent removes one of the caller's agents.
func (h *AgentHandler) DeleteAgent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid agent ID",
		})
	}

	res := h.db.Delete(&models.Agent{}, "id = ? AND user_id = ?", id, middleware.CallerID(c))
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to delete agent",
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   true,
			"message": "Agent not found",
		})
	}
	return c.JSON(fiber.Map{"message": "Agent deleted"})
}

// BulkDelete deletes the caller-owned subset of the submitted ids. The body
// is either a bare id array or {"agent_ids": [...]}.
func (h *AgentHandler) BulkDelete(c *fiber.Ctx) error {
	ids, err := parseBulkIDs(c.Body())
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   true,
			"message": "Body must be an id array or {\"agent_ids\": [...]}",
		})
	}

	deleted := int64(0)
	if len(ids) > 0 {
		res := h.db.Delete(&models.Agent{}, "id IN ? AND user_id = ?", ids, middleware.CallerID(c))
		if res.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"message": "Failed to delete agents",
			})
		}
		deleted = res.RowsAffected
	}

	return c.JSON(fiber.Map{
		"message":       fmt.Sprintf("Deleted %d agents", deleted),
		"deleted_count": deleted,
	})
}

// Archetypes returns the fixed archetype catalog.
func (h *AgentHandler) Archetypes(c *fiber.Ctx) error {
	return c.JSON(models.Archetypes)
}

// parseBulkIDs accepts both bulk-delete body shapes. Ids that are not
// valid uuids are dropped; they can never match a row anyway.
func parseBulkIDs(body []byte) ([]uuid.UUID, error) {
	var bare []string
	if err := json.Unmarshal(body, &bare); err == nil {
		return parseUUIDList(bare), nil
	}

	var wrapped struct {
		AgentIDs []string `json:"agent_ids"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.AgentIDs != nil {
		return parseUUIDList(wrapped.AgentIDs), nil
	}

	return nil, errors.New("unsupported bulk-delete body")
}

func parseUUIDList(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
