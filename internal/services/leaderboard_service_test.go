package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
)

func TestLeaderboardServiceGet(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	session := &models.GameTaskSession{
		ID:         7,
		GameTaskID: 4,
		Status:     models.SessionFinished,
		PinCode:    "123456",
		CreatedBy:  "teacher-1",
	}
	entries := []*repositories.LeaderboardEntry{
		{Rank: 1, ParticipantID: 2, Nickname: "Dana", Score: 1500, CorrectCount: 2, IsFinished: true},
		{Rank: 2, ParticipantID: 1, Nickname: "Aidos", Score: 900, CorrectCount: 1, IsFinished: true},
		{Rank: 3, ParticipantID: 3, Nickname: "Miras", Score: 0, CorrectCount: 0},
	}
	repo := &stubRepository{
		session: &stubSessionRepo{
			session: session,
			stats: &repositories.SessionStats{
				ParticipantCount: 3,
				FinishedCount:    2,
				AverageScore:     800,
				QuestionCount:    3,
			},
		},
		participant: &stubParticipantRepo{entries: entries},
	}

	service := &leaderboardService{repo: repo, logger: logger}

	board, err := service.Get(context.Background(), session.ID, "teacher-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if board.SessionID != session.ID {
		t.Errorf("SessionID = %d, want %d", board.SessionID, session.ID)
	}
	if board.Status != models.SessionFinished {
		t.Errorf("Status = %s, want finished", board.Status)
	}
	if board.ParticipantCount != 3 {
		t.Errorf("ParticipantCount = %d, want 3", board.ParticipantCount)
	}
	if board.FinishedCount != 2 {
		t.Errorf("FinishedCount = %d, want 2", board.FinishedCount)
	}
	if board.AverageScore != 800 {
		t.Errorf("AverageScore = %v, want 800", board.AverageScore)
	}
	if len(board.Entries) != 3 {
		t.Fatalf("len(Entries) = %d, want 3", len(board.Entries))
	}
	if board.Entries[0].Nickname != "Dana" || board.Entries[0].Rank != 1 {
		t.Errorf("first entry = %+v, want Dana at rank 1", board.Entries[0])
	}
}
