package handlers

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/agentarium/agentarium/internal/middleware"
	"github.com/agentarium/agentarium/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SimulationHandler struct {
	db *gorm.DB
}

func NewSimulationHandler(db *gorm.DB) *SimulationHandler {
	return &SimulationHandler{db: db}
}

// getOrCreateState loads a user's state, creating the default record on
// first read. Shared with the conversation pipeline. Two first reads can
// race on the user_id unique index; the loser re-reads the winner's row.
func getOrCreateState(db *gorm.DB, userID uuid.UUID) (*models.SimulationState, error) {
	var state models.SimulationState
	err := db.First(&state, "user_id = ?", userID).Error
	if err == nil {
		return &state, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	state = models.DefaultSimulationState(userID)
	if err := db.Create(&state).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := db.First(&state, "user_id = ?", userID).Error; err == nil {
				return &state, nil
			}
		}
		return nil, err
	}
	return &state, nil
}

func (h *SimulationHandler) getOrCreateState(userID uuid.UUID) (*models.SimulationState, error) {
	return getOrCreateState(h.db, userID)
}

func (h *SimulationHandler) GetState(c *fiber.Ctx) error {
	state, err := h.getOrCreateState(middleware.CallerID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load simulation state",
		})
	}
	return c.JSON(state)
}

// SetScenario stores free-text scenario context. It neither requires agents
// nor starts the simulation.
func (h *SimulationHandler) SetScenario(c *fiber.Ctx) error {
	var req struct {
		Scenario     string `json:"scenario"`
		ScenarioName string `json:"scenario_name"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   true,
			"message": "Invalid request body",
		})
	}

	userID := middleware.CallerID(c)
	mu := lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	state, err := h.getOrCreateState(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load simulation state",
		})
	}

	state.Scenario = req.Scenario
	state.ScenarioName = req.ScenarioName
	if err := h.db.Save(state).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to update scenario",
		})
	}

	return c.JSON(fiber.Map{
		"message":  "Scenario updated",
		"scenario": state.Scenario,
	})
}

// Start activates the simulation with Start Fresh semantics: the caller's
// conversation history is cleared on every invocation, agents are kept.
func (h *SimulationHandler) Start(c *fiber.Ctx) error {
	userID := middleware.CallerID(c)
	mu := lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	state, err := h.getOrCreateState(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load simulation state",
		})
	}

	if err := h.db.Delete(&models.ConversationRound{}, "user_id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to clear conversations",
		})
	}

	state.IsActive = true
	state.IsPaused = false
	if err := h.db.Save(state).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to start simulation",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Simulation started",
		"state":   state,
		"success": true,
	})
}

func (h *SimulationHandler) Pause(c *fiber.Ctx) error {
	return h.setActive(c, false, "Simulation paused")
}

func (h *SimulationHandler) Resume(c *fiber.Ctx) error {
	return h.setActive(c, true, "Simulation resumed")
}

func (h *SimulationHandler) setActive(c *fiber.Ctx, active bool, message string) error {
	userID := middleware.CallerID(c)
	mu := lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	state, err := h.getOrCreateState(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to load simulation state",
		})
	}

	state.IsActive = active
	state.IsPaused = !active
	if err := h.db.Save(state).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   true,
			"message": "Failed to update simulation state",
		})
	}

	return c.JSON(fiber.Map{
		"message":   message,
		"is_active": state.IsActive,
	})
}

// Reset wipes every caller-owned collection and installs a fresh default
// state. The per-collection deletes run concurrently; a failure in one is
// logged and excluded from the cleared count without blocking the others.
// The default-state write afterwards is the commit point.
func (h *SimulationHandler) Reset(c *fiber.Ctx) error {
	userID := middleware.CallerID(c)
	mu := lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	type target struct {
		name  string
		model interface{}
	}
	targets := []target{
		{"agents", &models.Agent{}},
		{"conversations", &models.ConversationRound{}},
		{"observer_messages", &models.ObserverMessage{}},
		{"simulation_state", &models.SimulationState{}},
	}

	var wg sync.WaitGroup
	results := make([]error, len(targets))
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t target) {
			defer wg.Done()
			results[i] = h.db.Delete(t.model, "user_id = ?", userID).Error
		}(i, t)
	}
	wg.Wait()

	cleared := 0
	for i, err := range results {
		if err != nil {
			slog.Error("Reset failed to clear collection", "collection", targets[i].name, "user_id", userID, "error", err)
			continue
		}
		cleared++
	}

	state := models.DefaultSimulationState(userID)
	if err := h.db.Create(&state).Error; err != nil {
		// A concurrent first read re-created the row between our delete
		// and create. It holds the same fresh default, so adopt it.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"message": "Failed to reset simulation state",
			})
		}
		if err := h.db.First(&state, "user_id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error":   true,
				"message": "Failed to reset simulation state",
			})
		}
	}

	return c.JSON(fiber.Map{
		"success":             true,
		"cleared_collections": cleared,
		"message":             "Simulation reset",
		"state":               state,
	})
}
