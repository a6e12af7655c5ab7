package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createSavedAgent(t *testing.T, token, name, archetype string) string {
	t.Helper()
	status, body := e.request(t, "POST", "/api/saved-agents", token, validAgentBody(name, archetype))
	require.Equal(t, http.StatusOK, status, "create saved agent: %v", body)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func TestSavedAgentsAreASeparateCatalog(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)

	env.createSavedAgent(t, token, "Library Agent", "researcher")

	// Saving never creates a simulation agent.
	status, agents := env.requestList(t, "GET", "/api/agents", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, agents)

	status, saved := env.requestList(t, "GET", "/api/saved-agents", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, saved, 1)
	assert.Equal(t, "Library Agent", saved[0]["name"])
	assert.Equal(t, false, saved[0]["is_favorite"])
}

func TestFavoriteToggleRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)
	id := env.createSavedAgent(t, token, "Library Agent", "artist")

	status, body := env.request(t, "PUT", "/api/saved-agents/"+id+"/favorite", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_favorite"])

	// The flag persists across retrievals.
	status, saved := env.requestList(t, "GET", "/api/saved-agents", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, saved, 1)
	assert.Equal(t, true, saved[0]["is_favorite"])

	// Toggling again restores the original value.
	status, body = env.request(t, "PUT", "/api/saved-agents/"+id+"/favorite", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["is_favorite"])
}

func TestFavoriteToggleOnForeignAgent(t *testing.T) {
	env := newTestEnv(t)
	owner := env.guestToken(t)
	stranger := env.guestToken(t)
	id := env.createSavedAgent(t, owner, "Library Agent", "leader")

	status, _ := env.request(t, "PUT", "/api/saved-agents/"+id+"/favorite", stranger, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// The owner's flag is unchanged.
	status, saved := env.requestList(t, "GET", "/api/saved-agents", owner, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, saved, 1)
	assert.Equal(t, false, saved[0]["is_favorite"])
}

func TestSavedAgentBulkDelete(t *testing.T) {
	env := newTestEnv(t)
	token := env.guestToken(t)

	ids := []string{
		env.createSavedAgent(t, token, "S1", "scientist"),
		env.createSavedAgent(t, token, "S2", "skeptic"),
	}

	status, body := env.request(t, "POST", "/api/saved-agents/bulk-delete", token, map[string]interface{}{
		"agent_ids": ids,
	})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["deleted_count"])

	status, saved := env.requestList(t, "GET", "/api/saved-agents", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, saved)
}
