package handlers

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/agentarium/agentarium/internal/middleware"
	"github.com/agentarium/agentarium/internal/models"
	"github.com/agentarium/agentarium/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxParticipants caps how many agents join a single generated round.
// Larger catalogs get a random caller-owned subset.
const maxParticipants = 6

type ConversationHandler struct {
	db        *gorm.DB
	generator services.TextGenerator
	timeout   time.Duration
}

func NewConversationHandler(db *gorm.DB, generator services.TextGenerator, timeout time.Duration) *ConversationHandler {
	return &ConversationHandler{db: db, generator: generator, timeout: timeout}
}

// ListConversations returns the caller's rounds, newest first.
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	rounds := []models.ConversationRound{}
	if err := h.db.Where("user_id = ?", middleware.CallerID(c)).
		Order("created_at DESC, round_number DESC").
		Find(&rounds).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to list conversations",
		})
	}
	return c.JSON(rounds)
}

// Generate produces one conversation round from the caller's agents and
// scenario. The round is persisted as a single row, so a provider failure
// leaves nothing behind.
func (h *ConversationHandler) Generate(c *fiber.Ctx) error {
	userID := middleware.CallerID(c)

	var agents []models.Agent
	if err := h.db.Where("user_id = ?", userID).Find(&agents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load agents",
		})
	}
	if len(agents) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "At least 2 agents are required to generate a conversation",
		})
	}

	state, err := getOrCreateState(h.db, userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load simulation state",
		})
	}

	participants := agents
	if len(participants) > maxParticipants {
		rand.Shuffle(len(participants), func(i, j int) {
			participants[i], participants[j] = participants[j], participants[i]
		})
		participants = participants[:maxParticipants]
	}

	var recent []models.ConversationRound
	h.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(3).Find(&recent)

	prompt := services.BuildDialoguePrompt(participants, state, recent)

	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	script, err := h.generator.Generate(ctx, prompt)
	if err != nil {
		slog.Error("Conversation generation failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   true,
			"message": "Text generation failed",
		})
	}

	messages := services.ParseDialogueScript(script, participants)
	if len(messages) == 0 {
		slog.Error("Generated script contained no usable dialogue", "user_id", userID)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   true,
			"message": "Text generation failed",
		})
	}

	// Numbering and the insert happen together under the per-user lock,
	// so two in-flight generations cannot both claim the same round.
	var round models.ConversationRound
	mu := lockUser(userID)
	mu.Lock()
	// Refresh under the lock so a concurrent generation's time advance is
	// visible before we stamp and advance again.
	if err := h.db.First(state, "user_id = ?", userID).Error; err != nil {
		slog.Warn("Failed to refresh simulation state", "user_id", userID, "error", err)
	}
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.ConversationRound{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		round = models.ConversationRound{
			UserID:       userID,
			RoundNumber:  int(count) + 1,
			TimePeriod:   state.CurrentTimePeriod,
			Scenario:     state.Scenario,
			ScenarioName: state.ScenarioName,
			Messages:     datatypes.NewJSONType(messages),
			Language:     "en",
		}
		return tx.Create(&round).Error
	})
	if err != nil {
		mu.Unlock()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to save conversation",
		})
	}

	// The simulated day moves forward one period per generated round.
	state.AdvanceTimePeriod()
	if err := h.db.Save(state).Error; err != nil {
		slog.Warn("Failed to advance time period", "user_id", userID, "error", err)
	}
	mu.Unlock()

	return c.JSON(round)
}
