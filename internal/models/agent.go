package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Personality holds the five trait scores every agent carries.
// Each trait is an integer between 1 and 10.
type Personality struct {
	Extroversion    int `json:"extroversion"`
	Optimism        int `json:"optimism"`
	Curiosity       int `json:"curiosity"`
	Cooperativeness int `json:"cooperativeness"`
	Energy          int `json:"energy"`
}

// PersonalityTraits lists the required trait keys in wire order.
var PersonalityTraits = []string{"extroversion", "optimism", "curiosity", "cooperativeness", "energy"}

type Agent struct {
	ID            uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID                       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string                          `gorm:"not null" json:"name"`
	Archetype     string                          `gorm:"not null" json:"archetype"`
	Personality   datatypes.JSONType[Personality] `gorm:"type:jsonb" json:"personality"`
	Goal          string                          `gorm:"type:text" json:"goal"`
	Expertise     string                          `gorm:"type:text" json:"expertise"`
	Background    string                          `gorm:"type:text" json:"background"`
	MemorySummary string                          `gorm:"type:text" json:"memory_summary,omitempty"`
	AvatarPrompt  string                          `gorm:"type:text" json:"avatar_prompt"`
	AvatarURL     string                          `json:"avatar_url,omitempty"`
	CreatedAt     time.Time                       `json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`
}

func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// SavedAgent is a library template, decoupled from the active simulation.
type SavedAgent struct {
	ID            uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID                       `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string                          `gorm:"not null" json:"name"`
	Archetype     string                          `gorm:"not null" json:"archetype"`
	Personality   datatypes.JSONType[Personality] `gorm:"type:jsonb" json:"personality"`
	Goal          string                          `gorm:"type:text" json:"goal"`
	Expertise     string                          `gorm:"type:text" json:"expertise"`
	Background    string                          `gorm:"type:text" json:"background"`
	MemorySummary string                          `gorm:"type:text" json:"memory_summary,omitempty"`
	AvatarPrompt  string                          `gorm:"type:text" json:"avatar_prompt"`
	AvatarURL     string                          `json:"avatar_url,omitempty"`
	IsFavorite    bool                            `gorm:"default:false" json:"is_favorite"`
	CreatedAt     time.Time                       `json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`
}

func (a *SavedAgent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ArchetypeInfo describes one entry of the fixed archetype catalog.
type ArchetypeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	DefaultGoal string `json:"default_goal"`
}

// Archetypes is the closed archetype set, identical for every user.
var Archetypes = map[string]ArchetypeInfo{
	"scientist": {
		Name:        "Scientist",
		Description: "Methodical and evidence-driven, tests every claim before accepting it.",
		DefaultGoal: "Understand how things work and share verified findings",
	},
	"leader": {
		Name:        "Leader",
		Description: "Decisive organizer who keeps the group aligned on a shared direction.",
		DefaultGoal: "Coordinate the group toward a common objective",
	},
	"skeptic": {
		Name:        "Skeptic",
		Description: "Questions assumptions and probes weak points in any plan.",
		DefaultGoal: "Expose blind spots before they become mistakes",
	},
	"optimist": {
		Name:        "Optimist",
		Description: "Finds the upside in every setback and keeps morale high.",
		DefaultGoal: "Keep the group hopeful and moving forward",
	},
	"artist": {
		Name:        "Artist",
		Description: "Sees the world through imagery and emotion, offers unconventional angles.",
		DefaultGoal: "Bring creative perspective to the group's work",
	},
	"researcher": {
		Name:        "Researcher",
		Description: "Digs deep into details and keeps meticulous track of what is known.",
		DefaultGoal: "Gather and organize knowledge for the group",
	},
}

// ValidArchetype reports whether key is part of the fixed catalog.
func ValidArchetype(key string) bool {
	_, ok := Archetypes[key]
	return ok
}
