package handlers

import (
	"strings"
	"time"

	"github.com/agentarium/agentarium/internal/middleware"
	"github.com/agentarium/agentarium/internal/models"
	"github.com/agentarium/agentarium/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ObserverHandler struct {
	db *gorm.DB
}

func NewObserverHandler(db *gorm.DB) *ObserverHandler {
	return &ObserverHandler{db: db}
}

// SendMessage persists an observer directive and builds an Observer
// Guidance round: the observer's own message first, then one synthesized
// reply per caller-owned agent. Only the caller's agents respond.
func (h *ObserverHandler) SendMessage(c *fiber.Ctx) error {
	var req struct {
		ObserverMessage string `json:"observer_message"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.ObserverMessage) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "observer_message is required",
		})
	}

	userID := middleware.CallerID(c)
	now := time.Now().UTC()

	var agents []models.Agent
	if err := h.db.Where("user_id = ?", userID).Find(&agents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load agents",
		})
	}

	messages := make([]models.Message, 0, len(agents)+1)
	messages = append(messages, models.Message{
		ID:        uuid.New().String(),
		AgentID:   models.ObserverAgentID,
		AgentName: models.ObserverAgentName,
		Message:   req.ObserverMessage,
		Mood:      "neutral",
		Timestamp: now,
	})

	for i := range agents {
		reply, mood := services.ObserverReply(&agents[i], req.ObserverMessage)
		messages = append(messages, models.Message{
			ID:        uuid.New().String(),
			AgentID:   agents[i].ID.String(),
			AgentName: agents[i].Name,
			Message:   reply,
			Mood:      mood,
			Timestamp: now,
		})
	}

	state, err := getOrCreateState(h.db, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load simulation state",
		})
	}

	observerMsg := models.ObserverMessage{
		UserID:    userID,
		Message:   req.ObserverMessage,
		Timestamp: now,
	}
	var round models.ConversationRound

	// The directive and its guidance round persist together, and round
	// numbering is serialized per user so concurrent sends cannot both
	// claim the same number.
	mu := lockUser(userID)
	mu.Lock()
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&observerMsg).Error; err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&models.ConversationRound{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		round = models.ConversationRound{
			UserID:       userID,
			RoundNumber:  int(count) + 1,
			TimePeriod:   state.CurrentTimePeriod,
			Scenario:     "Observer Directive: " + req.ObserverMessage,
			ScenarioName: models.ObserverScenarioName,
			Messages:     datatypes.NewJSONType(messages),
			Language:     "en",
		}
		return tx.Create(&round).Error
	})
	mu.Unlock()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to save observer message",
		})
	}

	return c.JSON(fiber.Map{
		"message":          "Observer message delivered",
		"observer_message": req.ObserverMessage,
		"agent_responses":  round,
	})
}

// ListMessages returns the caller's observer directives, newest first.
func (h *ObserverHandler) ListMessages(c *fiber.Ctx) error {
	msgs := []models.ObserverMessage{}
	if err := h.db.Where("user_id = ?", middleware.CallerID(c)).
		Order("timestamp DESC").
		Find(&msgs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to list observer messages",
		})
	}
	return c.JSON(msgs)
}
