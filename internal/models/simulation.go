package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Time periods a simulation day cycles through, in order.
var TimePeriods = []string{"morning", "afternoon", "evening", "night"}

const DefaultTimePeriod = "morning"

// SimulationState is the per-user singleton driving the simulation.
// It is created lazily with defaults on first read and replaced by reset.
type SimulationState struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	IsActive          bool      `gorm:"default:false" json:"is_active"`
	IsPaused          bool      `gorm:"default:false" json:"is_paused"`
	CurrentDay        int       `gorm:"default:1" json:"current_day"`
	CurrentTimePeriod string    `gorm:"default:'morning'" json:"current_time_period"`
	Scenario          string    `gorm:"type:text" json:"scenario"`
	ScenarioName      string    `json:"scenario_name"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (s *SimulationState) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// DefaultSimulationState returns the reset-state for a user: inactive,
// day 1, morning, empty scenario. The empty strings are contractual; no
// placeholder scenario may survive a reset.
func DefaultSimulationState(userID uuid.UUID) SimulationState {
	return SimulationState{
		UserID:            userID,
		IsActive:          false,
		IsPaused:          false,
		CurrentDay:        1,
		CurrentTimePeriod: DefaultTimePeriod,
		Scenario:          "",
		ScenarioName:      "",
	}
}

// AdvanceTimePeriod moves the state one period forward, rolling into the
// next day after night.
func (s *SimulationState) AdvanceTimePeriod() {
	for i, p := range TimePeriods {
		if p == s.CurrentTimePeriod {
			if i == len(TimePeriods)-1 {
				s.CurrentTimePeriod = TimePeriods[0]
				s.CurrentDay++
			} else {
				s.CurrentTimePeriod = TimePeriods[i+1]
			}
			return
		}
	}
	s.CurrentTimePeriod = DefaultTimePeriod
}
