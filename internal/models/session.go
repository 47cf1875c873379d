package models

import (
	"time"
)

type SessionStatus string

const (
	SessionPending  SessionStatus = "pending"
	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"
)

type PlayMode string

const (
	PlayModeSpeed   PlayMode = "speed"
	PlayModeClassic PlayMode = "classic"
)

type SessionLimit string

const (
	SessionLimited   SessionLimit = "limited"
	SessionLimitless SessionLimit = "limitless"
)

// GameTaskSession is one live run of a game task. Lifecycle moves forward
// only: pending -> active -> finished.
type GameTaskSession struct {
	ID         uint          `json:"id" gorm:"primaryKey"`
	GameTaskID uint          `json:"game_task_id" gorm:"not null;index"`
	Status     SessionStatus `json:"status" gorm:"not null;default:pending;size:16;index"`

	PlayMode PlayMode     `json:"play_mode" gorm:"not null;default:speed;size:16"`
	Limit    SessionLimit `json:"limit" gorm:"column:session_limit;not null;default:limitless;size:16"`

	// Duration is the whole-session allowance in seconds; meaningful only
	// when Limit is limited.
	Duration int `json:"duration" gorm:"default:0"`

	PinCode string `json:"pin_code" gorm:"uniqueIndex;not null;size:8"`

	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`

	CreatedBy string    `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	GameTask     *GameTask     `json:"game_task,omitempty" gorm:"foreignKey:GameTaskID"`
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (GameTaskSession) TableName() string {
	return "game_task_sessions"
}

func (s *GameTaskSession) IsPending() bool  { return s.Status == SessionPending }
func (s *GameTaskSession) IsActive() bool   { return s.Status == SessionActive }
func (s *GameTaskSession) IsFinished() bool { return s.Status == SessionFinished }

// IsJoinable reports whether new participants may still enter. Joining closes
// the moment the session starts.
func (s *GameTaskSession) IsJoinable() bool {
	return s.IsPending()
}

// IsTimed reports whether the session carries a whole-session deadline.
func (s *GameTaskSession) IsTimed() bool {
	return s.PlayMode == PlayModeSpeed && s.Limit == SessionLimited
}

// Deadline returns the instant the session expires, or nil when the session
// is untimed or has not started.
func (s *GameTaskSession) Deadline() *time.Time {
	if !s.IsTimed() || s.StartedAt == nil {
		return nil
	}
	d := s.StartedAt.Add(time.Duration(s.Duration) * time.Second)
	return &d
}

// IsTimeOver reports whether the deadline has passed as of now. Expiry is
// evaluated lazily; no background job flips sessions over.
func (s *GameTaskSession) IsTimeOver(now time.Time) bool {
	deadline := s.Deadline()
	if deadline == nil {
		return false
	}
	return !now.Before(*deadline)
}

// RemainingSeconds returns the seconds left before the deadline, floored at
// zero. Before start it returns the full duration so lobbies can display it.
func (s *GameTaskSession) RemainingSeconds(now time.Time) int {
	if !s.IsTimed() {
		return 0
	}
	if s.StartedAt == nil {
		return s.Duration
	}
	remaining := int(s.Deadline().Sub(now).Seconds())
	if remaining < 0 {
		return 0
	}
	return remaining
}
