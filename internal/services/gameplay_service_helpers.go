package services

import (
	"context"
	"fmt"
	"time"

	"github.com/oyna-edu/gameplay-service/internal/events"
	"github.com/oyna-edu/gameplay-service/internal/formats"
	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
)

// ===== LOADING =====

func (s *gameplayService) loadParticipant(ctx context.Context, token string) (*models.Participant, *models.GameTaskSession, error) {
	participant, err := s.repo.Participant().GetByToken(ctx, s.db, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, ErrParticipantNotFound
		}
		return nil, nil, fmt.Errorf("failed to resolve play token: %w", err)
	}

	session := participant.Session
	if session == nil {
		session, err = s.repo.Session().GetByID(ctx, s.db, participant.SessionID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load session: %w", err)
		}
	}

	return participant, session, nil
}

// playQuestions returns the task's questions in play order with options loaded
func (s *gameplayService) playQuestions(ctx context.Context, gameTaskID uint) ([]*models.Question, error) {
	task, err := s.repo.GameTask().GetWithQuestions(ctx, s.db, gameTaskID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrGameTaskNotFound
		}
		return nil, fmt.Errorf("failed to load game task questions: %w", err)
	}

	questions := make([]*models.Question, 0, len(task.Questions))
	for _, link := range task.Questions {
		if link.Question != nil {
			questions = append(questions, link.Question)
		}
	}
	return questions, nil
}

// ===== STATE BUILDING =====

// buildState renders the participant's current screen. In the question phase
// it also arms the in-flight pointer so time spent is measured from the first
// time the question was served.
func (s *gameplayService) buildState(ctx context.Context, participant *models.Participant, session *models.GameTaskSession, questions []*models.Question) (*PlayStateResponse, error) {
	cursor, err := s.repo.Attempt().CountByParticipant(ctx, s.db, participant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	if session.IsActive() && !participant.IsFinished && int(cursor) >= len(questions) {
		if err := s.finishParticipant(ctx, participant, session); err != nil {
			return nil, err
		}
	}

	state := &PlayStateResponse{
		SessionStatus:    session.Status,
		Nickname:         participant.Nickname,
		Score:            participant.Score,
		CorrectCount:     participant.CorrectCount,
		Cursor:           int(cursor),
		QuestionCount:    len(questions),
		RemainingSeconds: session.RemainingSeconds(time.Now()),
	}

	switch {
	case session.IsPending():
		state.Phase = PhaseLobby
	case participant.IsFinished || session.IsFinished():
		state.Phase = PhaseFinished
	default:
		// The ordered list pins the cursor; the render itself goes through
		// the cached question read, the hottest path during polling.
		current, err := s.repo.Question().GetByID(ctx, s.db, questions[cursor].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load question %d: %w", questions[cursor].ID, err)
		}

		if err := s.armCurrentQuestion(ctx, participant, current.ID); err != nil {
			return nil, err
		}

		handler := s.formats.Resolve(current.Format)
		question, err := handler.QuestionContext(current, participant.Token)
		if err != nil {
			return nil, fmt.Errorf("failed to render question %d: %w", current.ID, err)
		}

		state.Phase = PhaseQuestion
		state.Question = question
	}

	return state, nil
}

// armCurrentQuestion records which question was served and when. Re-serving
// the same question keeps the original timestamp so refreshes do not reset
// the clock.
func (s *gameplayService) armCurrentQuestion(ctx context.Context, participant *models.Participant, questionID uint) error {
	if participant.CurrentQuestionID != nil && *participant.CurrentQuestionID == questionID {
		return nil
	}

	now := time.Now()
	participant.CurrentQuestionID = &questionID
	participant.CurrentStartedAt = &now

	if err := s.repo.Participant().Update(ctx, nil, participant); err != nil {
		return fmt.Errorf("failed to arm current question: %w", err)
	}
	return nil
}

// rejectedSubmit reloads the participant and answers with Accepted false
func (s *gameplayService) rejectedSubmit(ctx context.Context, participant *models.Participant, session *models.GameTaskSession, questions []*models.Question) (*SubmitAnswerResponse, error) {
	fresh, err := s.repo.Participant().GetByID(ctx, s.db, participant.ID)
	if err == nil {
		participant = fresh
	}

	state, err := s.buildState(ctx, participant, session, questions)
	if err != nil {
		return nil, err
	}

	return &SubmitAnswerResponse{
		Accepted: false,
		Score:    participant.Score,
		State:    state,
	}, nil
}

// ===== FINISHING =====

func markFinished(participant *models.Participant, now time.Time) {
	participant.IsFinished = true
	participant.FinishedAt = &now
	participant.CurrentQuestionID = nil
	participant.CurrentStartedAt = nil
}

// finishParticipant marks the participant done under a row lock so a racing
// submission cannot slip in between.
func (s *gameplayService) finishParticipant(ctx context.Context, participant *models.Participant, session *models.GameTaskSession) error {
	var finishedNow bool
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		locked, err := txRepo.Participant().GetByIDForUpdate(ctx, nil, participant.ID)
		if err != nil {
			return fmt.Errorf("failed to lock participant: %w", err)
		}

		if !locked.IsFinished {
			markFinished(locked, time.Now())
			if err := txRepo.Participant().Update(ctx, nil, locked); err != nil {
				return fmt.Errorf("failed to finish participant: %w", err)
			}
			finishedNow = true
		}

		*participant = *locked
		return nil
	})
	if err != nil {
		return err
	}

	if finishedNow {
		s.publishParticipantEvent(ctx, events.ParticipantFinished, participant, session)
		s.logger.Info("Participant finished",
			"session_id", session.ID,
			"participant_id", participant.ID,
			"score", participant.Score)
	}
	return nil
}

// autoFinishIfExpired closes a timed session whose deadline has passed.
// Gameplay reads trigger this the same way teacher reads do; there is no
// background job.
func (s *gameplayService) autoFinishIfExpired(ctx context.Context, session *models.GameTaskSession) (*models.GameTaskSession, error) {
	if !session.IsActive() || !session.IsTimeOver(time.Now()) {
		return session, nil
	}

	now := time.Now()
	session.Status = models.SessionFinished
	session.FinishedAt = &now

	if err := s.repo.Session().Update(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to finish session: %w", err)
	}

	s.publishSessionFinished(ctx, session)

	s.logger.Info("Session finished on expiry", "session_id", session.ID)

	return session, nil
}

// ===== RANKING =====

func (s *gameplayService) rankOf(ctx context.Context, participant *models.Participant, session *models.GameTaskSession) (int, error) {
	entries, err := s.repo.Participant().Leaderboard(ctx, s.db, session.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	for _, entry := range entries {
		if entry.ParticipantID == participant.ID {
			return entry.Rank, nil
		}
	}
	return 0, nil
}

// ===== EVENTS =====

func (s *gameplayService) publishParticipantEvent(ctx context.Context, eventType string, participant *models.Participant, session *models.GameTaskSession) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(eventType, map[string]interface{}{
		"session_id":     session.ID,
		"participant_id": participant.ID,
		"nickname":       participant.Nickname,
		"score":          participant.Score,
		"correct_count":  participant.CorrectCount,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicGameplay, event); err != nil {
		s.logger.Error("Failed to publish participant event",
			"event_type", eventType,
			"participant_id", participant.ID,
			"error", err)
	}
}

func (s *gameplayService) publishAnswerEvent(ctx context.Context, participant *models.Participant, session *models.GameTaskSession, questionID uint, result *formats.AnswerResult, scoreDelta int) {
	if s.eventPublisher == nil || result == nil {
		return
	}

	event := events.NewEvent(events.AnswerSubmitted, map[string]interface{}{
		"session_id":     session.ID,
		"participant_id": participant.ID,
		"question_id":    questionID,
		"answered":       result.Answered,
		"is_correct":     result.IsCorrect,
		"score_delta":    scoreDelta,
		"score":          participant.Score,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicGameplay, event); err != nil {
		s.logger.Error("Failed to publish answer event",
			"participant_id", participant.ID,
			"question_id", questionID,
			"error", err)
	}
}

func (s *gameplayService) publishSessionFinished(ctx context.Context, session *models.GameTaskSession) {
	if s.eventPublisher == nil {
		return
	}

	event := events.NewEvent(events.SessionFinished, map[string]interface{}{
		"session_id":   session.ID,
		"game_task_id": session.GameTaskID,
		"status":       session.Status,
		"pin_code":     session.PinCode,
		"created_by":   session.CreatedBy,
	})

	if err := s.eventPublisher.Publish(ctx, events.TopicGameplay, event); err != nil {
		s.logger.Error("Failed to publish session event",
			"event_type", events.SessionFinished,
			"session_id", session.ID,
			"error", err)
	}
}
