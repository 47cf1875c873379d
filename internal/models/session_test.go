package models

import (
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestSessionLifecyclePredicates(t *testing.T) {
	tests := []struct {
		name     string
		status   SessionStatus
		joinable bool
	}{
		{"pending is joinable", SessionPending, true},
		{"active is not joinable", SessionActive, false},
		{"finished is not joinable", SessionFinished, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &GameTaskSession{Status: tt.status}
			if got := s.IsJoinable(); got != tt.joinable {
				t.Errorf("IsJoinable() = %v, want %v", got, tt.joinable)
			}
		})
	}
}

func TestSessionIsTimed(t *testing.T) {
	tests := []struct {
		name  string
		mode  PlayMode
		limit SessionLimit
		want  bool
	}{
		{"speed limited", PlayModeSpeed, SessionLimited, true},
		{"speed limitless", PlayModeSpeed, SessionLimitless, false},
		{"classic limited", PlayModeClassic, SessionLimited, false},
		{"classic limitless", PlayModeClassic, SessionLimitless, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &GameTaskSession{PlayMode: tt.mode, Limit: tt.limit}
			if got := s.IsTimed(); got != tt.want {
				t.Errorf("IsTimed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionDeadlineAndTimeOver(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s := &GameTaskSession{
		Status:    SessionActive,
		PlayMode:  PlayModeSpeed,
		Limit:     SessionLimited,
		Duration:  120,
		StartedAt: timePtr(started),
	}

	deadline := s.Deadline()
	if deadline == nil {
		t.Fatal("Deadline() = nil, want non-nil for a started timed session")
	}
	if want := started.Add(2 * time.Minute); !deadline.Equal(want) {
		t.Errorf("Deadline() = %v, want %v", deadline, want)
	}

	if s.IsTimeOver(started.Add(119 * time.Second)) {
		t.Error("IsTimeOver() = true one second before the deadline")
	}
	if !s.IsTimeOver(started.Add(120 * time.Second)) {
		t.Error("IsTimeOver() = false exactly at the deadline")
	}
	if !s.IsTimeOver(started.Add(time.Hour)) {
		t.Error("IsTimeOver() = false long after the deadline")
	}
}

func TestSessionDeadlineAbsentCases(t *testing.T) {
	now := time.Now()

	notStarted := &GameTaskSession{PlayMode: PlayModeSpeed, Limit: SessionLimited, Duration: 60}
	if notStarted.Deadline() != nil {
		t.Error("Deadline() non-nil for a session that has not started")
	}
	if notStarted.IsTimeOver(now) {
		t.Error("IsTimeOver() = true for a session that has not started")
	}

	classic := &GameTaskSession{
		PlayMode:  PlayModeClassic,
		Limit:     SessionLimited,
		Duration:  60,
		StartedAt: timePtr(now.Add(-time.Hour)),
	}
	if classic.IsTimeOver(now) {
		t.Error("IsTimeOver() = true for a classic session")
	}
}

func TestSessionRemainingSeconds(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	s := &GameTaskSession{
		PlayMode:  PlayModeSpeed,
		Limit:     SessionLimited,
		Duration:  300,
		StartedAt: timePtr(started),
	}

	if got := s.RemainingSeconds(started.Add(100 * time.Second)); got != 200 {
		t.Errorf("RemainingSeconds() = %d, want 200", got)
	}
	if got := s.RemainingSeconds(started.Add(10 * time.Minute)); got != 0 {
		t.Errorf("RemainingSeconds() after expiry = %d, want 0", got)
	}

	lobby := &GameTaskSession{PlayMode: PlayModeSpeed, Limit: SessionLimited, Duration: 300}
	if got := lobby.RemainingSeconds(started); got != 300 {
		t.Errorf("RemainingSeconds() before start = %d, want full duration 300", got)
	}

	untimed := &GameTaskSession{PlayMode: PlayModeClassic, Limit: SessionLimitless}
	if got := untimed.RemainingSeconds(started); got != 0 {
		t.Errorf("RemainingSeconds() for untimed = %d, want 0", got)
	}
}
