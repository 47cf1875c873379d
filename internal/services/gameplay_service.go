package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/events"
	"github.com/oyna-edu/gameplay-service/internal/formats"
	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
	"github.com/oyna-edu/gameplay-service/internal/validator"
)

// joinAttempts bounds the retry loop when two players race for the same
// nickname and one loses the unique index insert.
const joinAttempts = 3

type gameplayService struct {
	repo           repositories.Repository
	db             *gorm.DB
	logger         *slog.Logger
	validator      *validator.Validator
	formats        *formats.Registry
	eventPublisher events.EventPublisher
}

func NewGameplayService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, registry *formats.Registry, eventPublisher events.EventPublisher) GameplayService {
	return &gameplayService{
		repo:           repo,
		db:             db,
		logger:         logger,
		validator:      validator,
		formats:        registry,
		eventPublisher: eventPublisher,
	}
}

// ===== CORE OPERATIONS =====

// Join adds a player to a pending session by pin code. The returned token is
// the only credential for all later gameplay calls.
func (s *gameplayService) Join(ctx context.Context, req *JoinSessionRequest) (*JoinResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.repo.Session().GetByPin(ctx, s.db, req.PinCode)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to resolve pin code: %w", err)
	}

	if !session.IsJoinable() {
		return nil, ErrSessionNotJoinable
	}

	var participant *models.Participant
	for attempt := 0; attempt < joinAttempts; attempt++ {
		err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
			taken, err := txRepo.Participant().NicknamesBySession(ctx, nil, session.ID)
			if err != nil {
				return fmt.Errorf("failed to list nicknames: %w", err)
			}

			participant = &models.Participant{
				SessionID: session.ID,
				Nickname:  resolveNickname(req.Nickname, taken),
				Token:     uuid.NewString(),
			}
			return txRepo.Participant().Create(ctx, nil, participant)
		})
		if err == nil {
			break
		}
		if !repositories.IsDuplicateError(err) {
			return nil, fmt.Errorf("failed to join session: %w", err)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	questionCount, err := s.repo.GameTask().QuestionCount(ctx, s.db, session.GameTaskID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	s.publishParticipantEvent(ctx, events.ParticipantJoined, participant, session)

	s.logger.Info("Participant joined",
		"session_id", session.ID,
		"participant_id", participant.ID,
		"nickname", participant.Nickname)

	return &JoinResponse{
		Token:         participant.Token,
		Nickname:      participant.Nickname,
		SessionID:     session.ID,
		QuestionCount: int(questionCount),
	}, nil
}

// CurrentState is the participant's polling endpoint. It tells the client
// what to render: the lobby, the current question, or the finished screen.
func (s *gameplayService) CurrentState(ctx context.Context, token string) (*PlayStateResponse, error) {
	participant, session, err := s.loadParticipant(ctx, token)
	if err != nil {
		return nil, err
	}

	session, err = s.autoFinishIfExpired(ctx, session)
	if err != nil {
		return nil, err
	}

	questions, err := s.playQuestions(ctx, session.GameTaskID)
	if err != nil {
		return nil, err
	}

	return s.buildState(ctx, participant, session, questions)
}

// SubmitAnswer records one graded attempt. Stale and duplicate submissions
// are not errors: they come back with Accepted false and the current state so
// the client can re-render.
func (s *gameplayService) SubmitAnswer(ctx context.Context, token string, req *SubmitAnswerRequest) (*SubmitAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	participant, session, err := s.loadParticipant(ctx, token)
	if err != nil {
		return nil, err
	}

	session, err = s.autoFinishIfExpired(ctx, session)
	if err != nil {
		return nil, err
	}

	questions, err := s.playQuestions(ctx, session.GameTaskID)
	if err != nil {
		return nil, err
	}

	if !session.IsActive() || participant.IsFinished {
		return s.rejectedSubmit(ctx, participant, session, questions)
	}

	// Optimistic duplicate check; the unique index inside the transaction is
	// the authoritative one.
	alreadyAnswered, err := s.repo.Attempt().ExistsForQuestion(ctx, s.db, participant.ID, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing attempt: %w", err)
	}
	if alreadyAnswered {
		return s.rejectedSubmit(ctx, participant, session, questions)
	}

	var (
		accepted    bool
		finishedNow bool
		scoreDelta  int
		result      *formats.AnswerResult
	)
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		locked, err := txRepo.Participant().GetByIDForUpdate(ctx, nil, participant.ID)
		if err != nil {
			return fmt.Errorf("failed to lock participant: %w", err)
		}

		// Re-check the lifecycle guards under the lock. The pre-lock check is
		// only an optimistic short-circuit; the session may have been finished
		// or run out of time since.
		fresh, err := txRepo.Session().GetByID(ctx, nil, locked.SessionID)
		if err != nil {
			return fmt.Errorf("failed to reload session: %w", err)
		}
		session = fresh

		if !fresh.IsActive() || fresh.IsTimeOver(time.Now()) || locked.IsFinished {
			participant = locked
			return nil
		}

		cursor, err := txRepo.Attempt().CountByParticipant(ctx, nil, locked.ID)
		if err != nil {
			return fmt.Errorf("failed to count attempts: %w", err)
		}

		if int(cursor) >= len(questions) {
			markFinished(locked, time.Now())
			if err := txRepo.Participant().Update(ctx, nil, locked); err != nil {
				return fmt.Errorf("failed to finish participant: %w", err)
			}
			participant = locked
			finishedNow = true
			return nil
		}

		current := questions[cursor]
		if req.QuestionID != current.ID {
			// Stale submission against an already advanced cursor
			participant = locked
			return nil
		}

		now := time.Now()
		timeSpent := 0.0
		if locked.CurrentQuestionID != nil && *locked.CurrentQuestionID == current.ID && locked.CurrentStartedAt != nil {
			timeSpent = now.Sub(*locked.CurrentStartedAt).Seconds()
		}

		optionIDs := req.OptionIDs
		if req.Timeout {
			// Timer expiry is an empty submission regardless of what the
			// client sent along.
			optionIDs = nil
		}

		handler := s.formats.Resolve(current.Format)
		result, err = handler.Grade(current, formats.Submission{OptionIDs: optionIDs})
		if err != nil {
			return fmt.Errorf("failed to grade submission: %w", err)
		}

		isCorrect := result.IsCorrect != nil && *result.IsCorrect
		if isCorrect {
			scoreDelta = computeScore(true, current.TimeLimit, timeSpent)
		}

		payload, err := json.Marshal(result.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal attempt payload: %w", err)
		}

		attempt := &models.QuestionAttempt{
			ParticipantID: locked.ID,
			QuestionID:    current.ID,
			Answered:      result.Answered,
			IsCorrect:     result.IsCorrect,
			ScoreDelta:    scoreDelta,
			TimeSpent:     timeSpent,
			Payload:       datatypes.JSON(payload),
		}
		if err := txRepo.Attempt().Create(ctx, nil, attempt); err != nil {
			if repositories.IsDuplicateError(err) {
				// Lost the insert race to a concurrent submission. Roll back
				// so the aborted transaction never commits.
				return ErrQuestionAlreadyAnswered
			}
			return fmt.Errorf("failed to record attempt: %w", err)
		}

		if answers := handler.Persist(attempt, result); len(answers) > 0 {
			if err := txRepo.Attempt().CreateTestAnswers(ctx, nil, answers); err != nil {
				return fmt.Errorf("failed to record selected options: %w", err)
			}
		}

		locked.Score += scoreDelta
		if isCorrect {
			locked.CorrectCount++
		}
		locked.CurrentQuestionID = nil
		locked.CurrentStartedAt = nil
		if int(cursor)+1 >= len(questions) {
			markFinished(locked, now)
			finishedNow = true
		}
		if err := txRepo.Participant().Update(ctx, nil, locked); err != nil {
			return fmt.Errorf("failed to update participant: %w", err)
		}

		participant = locked
		accepted = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrQuestionAlreadyAnswered) {
			return s.rejectedSubmit(ctx, participant, session, questions)
		}
		return nil, err
	}

	if !accepted {
		// The in-lock guard may have seen the deadline pass while the session
		// row still said active; settle expiry before rendering.
		session, err = s.autoFinishIfExpired(ctx, session)
		if err != nil {
			return nil, err
		}
	}

	if accepted {
		s.publishAnswerEvent(ctx, participant, session, req.QuestionID, result, scoreDelta)
	}
	if finishedNow {
		s.publishParticipantEvent(ctx, events.ParticipantFinished, participant, session)
	}

	state, err := s.buildState(ctx, participant, session, questions)
	if err != nil {
		return nil, err
	}

	response := &SubmitAnswerResponse{
		Accepted:   accepted,
		ScoreDelta: scoreDelta,
		Score:      participant.Score,
		State:      state,
	}
	if accepted && result != nil {
		response.Answered = result.Answered
		response.IsCorrect = result.IsCorrect
	}
	return response, nil
}

// FinishEarly lets a participant leave the quiz before answering everything.
// Unanswered questions simply stay unattempted.
func (s *gameplayService) FinishEarly(ctx context.Context, token string) (*PlayStateResponse, error) {
	participant, session, err := s.loadParticipant(ctx, token)
	if err != nil {
		return nil, err
	}

	session, err = s.autoFinishIfExpired(ctx, session)
	if err != nil {
		return nil, err
	}

	if !participant.IsFinished {
		if err := s.finishParticipant(ctx, participant, session); err != nil {
			return nil, err
		}
	}

	questions, err := s.playQuestions(ctx, session.GameTaskID)
	if err != nil {
		return nil, err
	}

	return s.buildState(ctx, participant, session, questions)
}

// Result serves the personal summary and per-question review. It opens up as
// soon as the participant or the whole session has finished.
func (s *gameplayService) Result(ctx context.Context, token string) (*ResultResponse, error) {
	participant, session, err := s.loadParticipant(ctx, token)
	if err != nil {
		return nil, err
	}

	session, err = s.autoFinishIfExpired(ctx, session)
	if err != nil {
		return nil, err
	}

	if !participant.IsFinished && !session.IsFinished() {
		return nil, ErrResultNotAvailable
	}

	questions, err := s.playQuestions(ctx, session.GameTaskID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.repo.Attempt().ListByParticipant(ctx, s.db, participant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	attemptByQuestion := make(map[uint]*models.QuestionAttempt, len(attempts))
	for _, attempt := range attempts {
		attemptByQuestion[attempt.QuestionID] = attempt
	}

	review := make([]map[string]interface{}, 0, len(questions))
	for _, question := range questions {
		handler := s.formats.Resolve(question.Format)
		block, err := handler.ReviewContext(question, attemptByQuestion[question.ID])
		if err != nil {
			return nil, fmt.Errorf("failed to build review for question %d: %w", question.ID, err)
		}
		review = append(review, block)
	}

	rank, err := s.rankOf(ctx, participant, session)
	if err != nil {
		return nil, err
	}

	return &ResultResponse{
		Nickname:      participant.Nickname,
		Score:         participant.Score,
		CorrectCount:  participant.CorrectCount,
		QuestionCount: len(questions),
		Rank:          rank,
		Review:        review,
	}, nil
}
