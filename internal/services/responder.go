package services

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/agentarium/agentarium/internal/models"
)

// Observer replies are synthesized locally so the observer endpoint never
// blocks on an external provider. Replies vary by archetype and by whether
// the observer greeted the agents or gave them a directive.

var greetingWords = []string{"hello", "hi", "hey", "greetings", "good morning", "good afternoon", "good evening", "howdy"}

func isGreeting(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, g := range greetingWords {
		if strings.HasPrefix(lower, g) {
			return true
		}
	}
	return false
}

var greetingReplies = map[string][]string{
	"scientist": {
		"Hello! I was just in the middle of reviewing some data, but I'm glad you're here.",
		"Good to see you. I have a few observations I've been wanting to share.",
	},
	"leader": {
		"Welcome! We were just about to regroup, your timing is perfect.",
		"Good to have you with us. I'll make sure everyone is up to speed.",
	},
	"skeptic": {
		"Oh, hello. I'll admit I wasn't expecting company, but go on.",
		"Hi there. I hope you're bringing something concrete this time.",
	},
	"optimist": {
		"Hello! What a great moment for you to drop in, things are looking up here.",
		"Hi! So glad you're here, today feels promising already.",
	},
	"artist": {
		"Oh, hello! You caught me mid-thought, there's a certain color to this moment.",
		"Hi! Your arrival changes the whole composition of the room.",
	},
	"researcher": {
		"Hello. I've been keeping careful notes, ask me anything.",
		"Good to see you. I was just cross-referencing what we learned earlier.",
	},
}

var directiveReplies = map[string][]string{
	"scientist": {
		"That's a reasonable direction. Let me think about how to test it properly.",
		"Interesting. I'd like to verify a couple of assumptions first, but I'm on it.",
	},
	"leader": {
		"Got it. I'll make sure the group organizes around that right away.",
		"Clear enough. We'll adjust our plan and move on it together.",
	},
	"skeptic": {
		"Hmm. I see a few holes in that, but I'll go along with it for now.",
		"Fine, though I reserve the right to say I told you so later.",
	},
	"optimist": {
		"I love it! This is exactly the kind of push we needed.",
		"Great idea! I can already see this working out well for us.",
	},
	"artist": {
		"There's something inspiring in that. Let me see where it takes me.",
		"I'll run with it, there's real texture in what you're asking for.",
	},
	"researcher": {
		"Noted, and I'll dig into the details before we commit too far.",
		"Let me gather what we already know about that, then I'll follow through.",
	},
}

var fallbackGreetings = []string{
	"Hello! It's nice to hear from you.",
	"Hi there, glad you stopped by.",
}

var fallbackDirectives = []string{
	"That makes sense to me, I'll see what I can do.",
	"Alright, I'll work that into what I'm doing.",
}

// ObserverReply synthesizes a short first-person reply from agent to the
// observer's message, plus a mood derived from the agent's personality.
func ObserverReply(agent *models.Agent, observerText string) (string, string) {
	var pool []string
	if isGreeting(observerText) {
		pool = greetingReplies[agent.Archetype]
		if len(pool) == 0 {
			pool = fallbackGreetings
		}
	} else {
		pool = directiveReplies[agent.Archetype]
		if len(pool) == 0 {
			pool = fallbackDirectives
		}
	}

	reply := pool[rand.Intn(len(pool))]

	personality := agent.Personality.Data()
	if !isGreeting(observerText) && personality.Cooperativeness >= 8 {
		reply = fmt.Sprintf("%s Count on me.", reply)
	}

	return reply, moodFor(personality)
}

func moodFor(p models.Personality) string {
	switch {
	case p.Optimism >= 7 && p.Energy >= 7:
		return "enthusiastic"
	case p.Optimism >= 7:
		return "upbeat"
	case p.Optimism <= 3:
		return "wary"
	case p.Curiosity >= 7:
		return "curious"
	default:
		return "thoughtful"
	}
}
