package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentarium/agentarium/internal/models"
	"github.com/google/uuid"
)

// BuildDialoguePrompt assembles the generation prompt from the caller's
// agents, the current simulation state and the most recent rounds.
func BuildDialoguePrompt(agents []models.Agent, state *models.SimulationState, recent []models.ConversationRound) string {
	var b strings.Builder

	b.WriteString("You are writing one round of a group conversation between simulated characters.\n\n")

	scenario := state.Scenario
	if scenario == "" {
		scenario = "The characters share a common space and talk about whatever is on their minds."
	}
	b.WriteString("Scenario: " + scenario + "\n")
	if state.ScenarioName != "" {
		b.WriteString("Scenario name: " + state.ScenarioName + "\n")
	}
	fmt.Fprintf(&b, "It is %s of day %d.\n\n", state.CurrentTimePeriod, state.CurrentDay)

	b.WriteString("Characters:\n")
	for _, a := range agents {
		p := a.Personality.Data()
		fmt.Fprintf(&b, "- %s (%s). Goal: %s. Expertise: %s. Background: %s. "+
			"Personality 1-10: extroversion %d, optimism %d, curiosity %d, cooperativeness %d, energy %d.\n",
			a.Name, a.Archetype, a.Goal, a.Expertise, a.Background,
			p.Extroversion, p.Optimism, p.Curiosity, p.Cooperativeness, p.Energy)
	}

	if len(recent) > 0 {
		b.WriteString("\nRecent conversation, newest first:\n")
		for _, r := range recent {
			for _, m := range r.Messages.Data() {
				fmt.Fprintf(&b, "%s: %s\n", m.AgentName, m.Message)
			}
		}
	}

	b.WriteString("\nWrite 1-2 short lines for each character, in a natural order. ")
	b.WriteString("Format every line exactly as:\n")
	b.WriteString("Name [mood]: what they say\n")
	b.WriteString("where mood is one lowercase word. Output only dialogue lines, nothing else.\n")
	return b.String()
}

// ParseDialogueScript turns provider output back into messages. Lines that
// do not match a known character are dropped; a speaker match is by name
// prefix, case-insensitive.
func ParseDialogueScript(script string, agents []models.Agent) []models.Message {
	byName := make(map[string]*models.Agent, len(agents))
	for i := range agents {
		byName[strings.ToLower(agents[i].Name)] = &agents[i]
	}

	var messages []models.Message
	now := time.Now().UTC()

	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx := strings.Index(line, ":")
		if idx <= 0 || idx == len(line)-1 {
			continue
		}

		speaker := strings.TrimSpace(line[:idx])
		text := strings.TrimSpace(line[idx+1:])
		if text == "" {
			continue
		}

		mood := "neutral"
		if open := strings.Index(speaker, "["); open != -1 {
			if close := strings.Index(speaker, "]"); close > open+1 {
				mood = strings.ToLower(strings.TrimSpace(speaker[open+1 : close]))
			}
			speaker = strings.TrimSpace(speaker[:open])
		}
		speaker = strings.Trim(speaker, "*_ ")

		agent, ok := byName[strings.ToLower(speaker)]
		if !ok {
			continue
		}

		messages = append(messages, models.Message{
			ID:        uuid.New().String(),
			AgentID:   agent.ID.String(),
			AgentName: agent.Name,
			Message:   text,
			Mood:      mood,
			Timestamp: now,
		})
	}

	return messages
}
