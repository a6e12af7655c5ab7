package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgentCreateAndList(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)

	status, agents := env.requestList(t, "GET", "/api/agents", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, agents, "fresh user starts with no agents")

	id := env.createAgent(t, token, "Dr. Test", "scientist")

	status, agents = env.requestList(t, "GET", "/api/agents", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, agents, 1)
	assert.Equal(t, id, agents[0]["id"])
	assert.Equal(t, "Dr. Test", agents[0]["name"])
	assert.Equal(t, "scientist", agents[0]["archetype"])
	assert.NotEmpty(t, agents[0]["user_id"])

	personality := agents[0]["personality"].(map[string]interface{})
	for _, trait := range []string{"extroversion", "optimism", "curiosity", "cooperativeness", "energy"} {
		assert.Contains(t, personality, trait)
		assert.EqualValues(t, 5, personality[trait])
	}
}

func TestAgentCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)

	// Empty body: every required field is reported.
	status, body := env.request(t, "POST", "/api/agents", token, map[string]interface{}{})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	details := body["detail"].([]interface{})
	assert.Len(t, details, 7, "name, archetype, personality, goal, expertise, background, avatar_prompt")

	// Incomplete personality.
	payload := validAgentBody("Dr. Test", "scientist")
	payload["personality"] = map[string]int{"extroversion": 5, "optimism": 5}
	status, body = env.request(t, "POST", "/api/agents", token, payload)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	details = body["detail"].([]interface{})
	assert.Len(t, details, 3, "curiosity, cooperativeness, energy missing")

	// Trait out of range.
	payload = validAgentBody("Dr. Test", "scientist")
	payload["personality"].(map[string]int)["energy"] = 11
	status, _ = env.request(t, "POST", "/api/agents", token, payload)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// Unknown archetype.
	payload = validAgentBody("Dr. Test", "wizard")
	status, _ = env.request(t, "POST", "/api/agents", token, payload)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// Nothing was persisted along the way.
	status, agents := env.requestList(t, "GET", "/api/agents", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, agents)
}

func TestAgentPartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)
	id := env.createAgent(t, token, "Dr. Test", "scientist")

	status, body := env.request(t, "PUT", "/api/agents/"+id, token, map[string]interface{}{
		"goal": "map the anomaly",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "map the anomaly", body["goal"])
	assert.Equal(t, "Dr. Test", body["name"], "untouched fields survive")
	assert.Equal(t, "e", body["expertise"])

	personality := body["personality"].(map[string]interface{})
	assert.Len(t, personality, 5)
}

func TestAgentOwnershipIs404(t *testing.T) {
	env := newTestEnv(t)
	owner := env.guestToken(t)
	stranger := env.guestToken(t)
	id := env.createAgent(t, owner, "Dr. Test", "scientist")

	// The stranger cannot see, mutate, or delete the agent.
	status, agents := env.requestList(t, "GET", "/api/agents", stranger, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, agents)

	status, _ = env.request(t, "PUT", "/api/agents/"+id, stranger, map[string]interface{}{"name": "Hijacked"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.request(t, "DELETE", "/api/agents/"+id, stranger, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// The owner's agent is untouched.
	status, agents = env.requestList(t, "GET", "/api/agents", owner, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, agents, 1)
	assert.Equal(t, "Dr. Test", agents[0]["name"])
}

func TestAgentDelete(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)
	id := env.createAgent(t, token, "Dr. Test", "scientist")

	status, body := env.request(t, "DELETE", "/api/agents/"+id, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["message"])

	status, _ = env.request(t, "DELETE", "/api/agents/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, status, "second delete is a 404")
}

func TestAgentBulkDeleteBothShapes(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)

	ids := []string{
		env.createAgent(t, token, "A1", "scientist"),
		env.createAgent(t, token, "A2", "leader"),
		env.createAgent(t, token, "A3", "skeptic"),
	}

	// Wrapped shape.
	status, body := env.request(t, "POST", "/api/agents/bulk-delete", token, map[string]interface{}{
		"agent_ids": ids,
	})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["deleted_count"])

	status, agents := env.requestList(t, "GET", "/api/agents", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, agents)

	// Bare-array shape on the DELETE route.
	ids = []string{
		env.createAgent(t, token, "B1", "optimist"),
		env.createAgent(t, token, "B2", "artist"),
	}
	status, body = env.request(t, "DELETE", "/api/agents/bulk", token, ids)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["deleted_count"])

	// Unsupported shape is a 422.
	status, _ = env.request(t, "POST", "/api/agents/bulk-delete", token, map[string]interface{}{"ids": []string{"x"}})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestAgentBulkDeleteSkipsForeignIDs(t *testing.T) {
	env := newTestEnv(t)
	owner := env.guestToken(t)
	stranger := env.guestToken(t)

	ownID := env.createAgent(t, stranger, "Mine", "scientist")
	foreignID := env.createAgent(t, owner, "Theirs", "leader")

	status, body := env.request(t, "POST", "/api/agents/bulk-delete", stranger, map[string]interface{}{
		"agent_ids": []string{ownID, foreignID},
	})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["deleted_count"], "only the caller-owned id counts")

	status, agents := env.requestList(t, "GET", "/api/agents", owner, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, agents, 1)
	assert.Equal(t, "Theirs", agents[0]["name"])
}

func TestArchetypeCatalog(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)

	status, body := env.request(t, "GET", "/api/archetypes", token, nil)
	require.Equal(t, http.StatusOK, status)

	for _, key := range []string{"scientist", "leader", "skeptic", "optimist", "artist", "researcher"} {
		entry, ok := body[key].(map[string]interface{})
		require.True(t, ok, "archetype %s missing", key)
		assert.NotEmpty(t, entry["name"])
		assert.NotEmpty(t, entry["description"])
	}
}
