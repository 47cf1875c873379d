package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// ExportSessionResults renders the final standings as an xlsx workbook with
// one row per participant.
func (s *exportService) ExportSessionResults(ctx context.Context, sessionID uint, userID string) ([]byte, string, error) {
	session, err := s.repo.Session().GetByIDWithTask(ctx, s.db, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, "", ErrSessionNotFound
		}
		return nil, "", fmt.Errorf("failed to get session: %w", err)
	}

	if session.CreatedBy != userID {
		isAdmin, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
		if err != nil || !isAdmin {
			return nil, "", NewPermissionError(userID, sessionID, "session", "export", "not the session owner")
		}
	}

	entries, err := s.repo.Participant().Leaderboard(ctx, s.db, session.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load leaderboard: %w", err)
	}

	stats, err := s.repo.Session().Stats(ctx, s.db, session.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load session stats: %w", err)
	}

	participants, err := s.repo.Participant().ListBySession(ctx, s.db, session.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list participants: %w", err)
	}

	file, err := s.buildWorkbook(session, entries, stats, participants)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	buffer, err := file.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to serialize workbook: %w", err)
	}

	filename := fmt.Sprintf("session_%d_results.xlsx", session.ID)

	s.logger.Info("Session results exported",
		"session_id", session.ID,
		"participant_count", len(entries))

	return buffer.Bytes(), filename, nil
}

func (s *exportService) buildWorkbook(session *models.GameTaskSession, entries []*repositories.LeaderboardEntry, stats *repositories.SessionStats, participants []*models.Participant) (*excelize.File, error) {
	file := excelize.NewFile()

	const sheet = "Results"
	file.SetSheetName("Sheet1", sheet)

	title := fmt.Sprintf("Session %d", session.ID)
	if session.GameTask != nil {
		title = session.GameTask.Title
	}

	header := [][]interface{}{
		{title},
		{"Pin code", session.PinCode},
		{"Status", string(session.Status)},
		{"Participants", stats.ParticipantCount},
		{"Finished", stats.FinishedCount},
		{"Average score", stats.AverageScore},
		{"Questions", stats.QuestionCount},
		{},
		{"Rank", "Nickname", "Score", "Correct", "Finished", "Finished at"},
	}

	for i, row := range header {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to address header row: %w", err)
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write header row: %w", err)
		}
	}

	for i, entry := range entries {
		finishedAt := ""
		if entry.FinishedAt != nil {
			finishedAt = entry.FinishedAt.Format(time.RFC3339)
		}

		row := []interface{}{
			entry.Rank,
			entry.Nickname,
			entry.Score,
			entry.CorrectCount,
			entry.IsFinished,
			finishedAt,
		}

		cell, err := excelize.CoordinatesToCellName(1, len(header)+i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to address result row: %w", err)
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write result row: %w", err)
		}
	}

	if err := file.SetColWidth(sheet, "A", "F", 18); err != nil {
		return nil, fmt.Errorf("failed to size columns: %w", err)
	}

	if err := s.addRosterSheet(file, participants); err != nil {
		return nil, err
	}

	return file, nil
}

// addRosterSheet writes the raw join order, including players who never
// answered anything and so never enter the standings block prominently.
func (s *exportService) addRosterSheet(file *excelize.File, participants []*models.Participant) error {
	const sheet = "Participants"
	if _, err := file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add roster sheet: %w", err)
	}

	header := []interface{}{"Nickname", "Joined at", "Finished at", "Score", "Correct"}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write roster header: %w", err)
	}

	for i, participant := range participants {
		finishedAt := ""
		if participant.FinishedAt != nil {
			finishedAt = participant.FinishedAt.Format(time.RFC3339)
		}

		row := []interface{}{
			participant.Nickname,
			participant.CreatedAt.Format(time.RFC3339),
			finishedAt,
			participant.Score,
			participant.CorrectCount,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address roster row: %w", err)
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write roster row: %w", err)
		}
	}

	if err := file.SetColWidth(sheet, "A", "E", 22); err != nil {
		return fmt.Errorf("failed to size roster columns: %w", err)
	}
	return nil
}
