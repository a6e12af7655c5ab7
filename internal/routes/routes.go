package routes

import (
	"github.com/agentarium/agentarium/internal/config"
	"github.com/agentarium/agentarium/internal/handlers"
	"github.com/agentarium/agentarium/internal/middleware"
	"github.com/gofiber/fiber/v2"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	agentHandler *handlers.AgentHandler,
	savedAgentHandler *handlers.SavedAgentHandler,
	simulationHandler *handlers.SimulationHandler,
	conversationHandler *handlers.ConversationHandler,
	observerHandler *handlers.ObserverHandler,
	speechHandler *handlers.SpeechHandler,
) {
	// ─── Public ──────────────────────────────────────────────────────────
	app.Get("/api/health", handlers.Health)

	// ─── Auth ────────────────────────────────────────────────────────────
	app.Post("/api/auth/register", authHandler.Register)
	app.Post("/api/auth/login", authHandler.Login)
	app.Post("/api/auth/test-login", authHandler.TestLogin)

	// ─── Protected routes ────────────────────────────────────────────────
	api := app.Group("/api", middleware.JWTProtected(cfg.JWTSecret))

	// Auth (protected)
	api.Get("/auth/me", authHandler.Me)

	// Agents
	api.Get("/agents", agentHandler.ListAgents)
	api.Post("/agents", agentHandler.CreateAgent)
	api.Delete("/agents/bulk", agentHandler.BulkDelete)
	api.Post("/agents/bulk-delete", agentHandler.BulkDelete)
	api.Put("/agents/:id", agentHandler.UpdateAgent)
	api.Delete("/agents/:id", agentHandler.DeleteAgent)
	api.Get("/archetypes", agentHandler.Archetypes)

	// Saved agents (library)
	api.Get("/saved-agents", savedAgentHandler.ListSavedAgents)
	api.Post("/saved-agents", savedAgentHandler.CreateSavedAgent)
	api.Delete("/saved-agents/bulk", savedAgentHandler.BulkDeleteSavedAgents)
	api.Post("/saved-agents/bulk-delete", savedAgentHandler.BulkDeleteSavedAgents)
	api.Put("/saved-agents/:id/favorite", savedAgentHandler.ToggleFavorite)
	api.Put("/saved-agents/:id", savedAgentHandler.UpdateSavedAgent)
	api.Delete("/saved-agents/:id", savedAgentHandler.DeleteSavedAgent)

	// Simulation
	api.Get("/simulation/state", simulationHandler.GetState)
	api.Post("/simulation/set-scenario", simulationHandler.SetScenario)
	api.Post("/simulation/start", simulationHandler.Start)
	api.Post("/simulation/pause", simulationHandler.Pause)
	api.Post("/simulation/resume", simulationHandler.Resume)
	api.Post("/simulation/reset", simulationHandler.Reset)

	// Conversations
	api.Get("/conversations", conversationHandler.ListConversations)
	api.Post("/conversation/generate", conversationHandler.Generate)

	// Observer
	api.Post("/observer/send-message", observerHandler.SendMessage)
	api.Get("/observer/messages", observerHandler.ListMessages)

	// Speech
	api.Post("/speech/transcribe", speechHandler.Transcribe)
	api.Post("/speech/transcribe-scenario", speechHandler.TranscribeScenario)
}
