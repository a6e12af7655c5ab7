package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ObserverAgentID and ObserverAgentName identify the human observer's own
// message inside a conversation round.
const (
	ObserverAgentID      = "observer"
	ObserverAgentName    = "Observer (You)"
	ObserverScenarioName = "Observer Guidance"
)

type Message struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agent_id"`
	AgentName string    `json:"agent_name"`
	Message   string    `json:"message"`
	Mood      string    `json:"mood"`
	Timestamp time.Time `json:"timestamp"`
}

type ConversationRound struct {
	ID           uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID                     `gorm:"type:uuid;not null;index" json:"user_id"`
	RoundNumber  int                           `gorm:"not null" json:"round_number"`
	TimePeriod   string                        `json:"time_period"`
	Scenario     string                        `gorm:"type:text" json:"scenario"`
	ScenarioName string                        `json:"scenario_name"`
	Messages     datatypes.JSONType[[]Message] `gorm:"type:jsonb" json:"messages"`
	Language     string                        `gorm:"default:'en'" json:"language"`
	CreatedAt    time.Time                     `json:"created_at"`
}

func (r *ConversationRound) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type ObserverMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
}

func (m *ObserverMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
