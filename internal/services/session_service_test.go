package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/events"
	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
	"github.com/oyna-edu/gameplay-service/internal/validator"
)

// MockGameplayRepository for testing - minimal implementation
type MockGameplayRepository struct{}

func (m *MockGameplayRepository) GameTask() repositories.GameTaskRepository       { return nil }
func (m *MockGameplayRepository) Session() repositories.SessionRepository         { return nil }
func (m *MockGameplayRepository) Participant() repositories.ParticipantRepository { return nil }
func (m *MockGameplayRepository) Attempt() repositories.AttemptRepository         { return nil }
func (m *MockGameplayRepository) Question() repositories.QuestionRepository       { return nil }
func (m *MockGameplayRepository) User() repositories.UserRepository               { return nil }
func (m *MockGameplayRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return nil
}
func (m *MockGameplayRepository) Ping(ctx context.Context) error { return nil }
func (m *MockGameplayRepository) Close() error                   { return nil }

func TestNewSessionService(t *testing.T) {
	type args struct {
		repo           repositories.Repository
		db             *gorm.DB
		logger         *slog.Logger
		validator      *validator.Validator
		eventPublisher events.EventPublisher
	}
	tests := []struct {
		name string
		args args
		want SessionService
	}{
		{name: "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NewSessionService(tt.args.repo, tt.args.db, tt.args.logger, tt.args.validator, tt.args.eventPublisher)
		})
	}
}

func TestSessionService_PublishEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	mockRepo := &MockGameplayRepository{}

	service := &sessionService{
		repo:           mockRepo,
		logger:         logger,
		eventPublisher: mockPublisher,
	}

	ctx := context.Background()

	session := &models.GameTaskSession{
		ID:         7,
		GameTaskID: 3,
		Status:     models.SessionActive,
		PinCode:    "123456",
		CreatedBy:  "teacher-1",
	}

	t.Run("SessionStarted", func(t *testing.T) {
		mockPublisher.ClearEvents()

		service.publishSessionEvent(ctx, events.SessionStarted, session)

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if event.Type != events.SessionStarted {
			t.Errorf("Expected event type %q, got %q", events.SessionStarted, event.Type)
		}
		if event.Source != "gameplay-service" {
			t.Errorf("Expected source 'gameplay-service', got %q", event.Source)
		}
		if event.Version != "1.0" {
			t.Errorf("Expected version '1.0', got %q", event.Version)
		}
		if event.ID == "" {
			t.Error("Event ID should not be empty")
		}
		if event.Timestamp.IsZero() {
			t.Error("Event timestamp should not be zero")
		}

		data, ok := event.Data.(map[string]interface{})
		if !ok {
			t.Fatalf("Expected map data, got %T", event.Data)
		}
		if data["session_id"] != session.ID {
			t.Errorf("Expected session_id %d, got %v", session.ID, data["session_id"])
		}
		if data["pin_code"] != session.PinCode {
			t.Errorf("Expected pin_code %q, got %v", session.PinCode, data["pin_code"])
		}
	})

	t.Run("NilPublisherIsSafe", func(t *testing.T) {
		bare := &sessionService{repo: mockRepo, logger: logger}
		bare.publishSessionEvent(ctx, events.SessionFinished, session)
	})
}

// stubRepository overrides only the sub-repositories a test cares about;
// calling anything else panics through the embedded nil interface.
type stubRepository struct {
	repositories.Repository
	gameTask    repositories.GameTaskRepository
	session     repositories.SessionRepository
	participant repositories.ParticipantRepository
	attempt     repositories.AttemptRepository
	question    repositories.QuestionRepository
}

func (s *stubRepository) GameTask() repositories.GameTaskRepository       { return s.gameTask }
func (s *stubRepository) Session() repositories.SessionRepository         { return s.session }
func (s *stubRepository) Participant() repositories.ParticipantRepository { return s.participant }
func (s *stubRepository) Attempt() repositories.AttemptRepository         { return s.attempt }
func (s *stubRepository) Question() repositories.QuestionRepository       { return s.question }
func (s *stubRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(s)
}

type stubGameTaskRepo struct {
	repositories.GameTaskRepository
	task          *models.GameTask
	questionCount int64
}

func (s *stubGameTaskRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTask, error) {
	return s.task, nil
}

func (s *stubGameTaskRepo) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTask, error) {
	return s.task, nil
}

func (s *stubGameTaskRepo) QuestionCount(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	return s.questionCount, nil
}

type stubSessionRepo struct {
	repositories.SessionRepository
	session      *models.GameTaskSession
	created      *models.GameTaskSession
	stats        *repositories.SessionStats
	pinChecks    int
	collisions   int
	pendingCount int64
}

func (s *stubSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.GameTaskSession) error {
	session.ID = 1
	s.created = session
	return nil
}

func (s *stubSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTaskSession, error) {
	if s.session == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.session, nil
}

func (s *stubSessionRepo) Update(ctx context.Context, tx *gorm.DB, session *models.GameTaskSession) error {
	s.session = session
	return nil
}

func (s *stubSessionRepo) Stats(ctx context.Context, tx *gorm.DB, sessionID uint) (*repositories.SessionStats, error) {
	return s.stats, nil
}

func (s *stubSessionRepo) ExistsByPin(ctx context.Context, tx *gorm.DB, pin string) (bool, error) {
	s.pinChecks++
	return s.pinChecks <= s.collisions, nil
}

func (s *stubSessionRepo) CountByTaskAndStatus(ctx context.Context, tx *gorm.DB, gameTaskID uint, status models.SessionStatus) (int64, error) {
	return s.pendingCount, nil
}

func TestSessionServiceGenerateUniquePin(t *testing.T) {
	ctx := context.Background()
	service := &sessionService{}

	t.Run("RetriesOnCollision", func(t *testing.T) {
		sessions := &stubSessionRepo{collisions: 2}
		repo := &stubRepository{session: sessions}

		pin, err := service.generateUniquePin(ctx, repo)
		if err != nil {
			t.Fatalf("generateUniquePin() error = %v", err)
		}
		if len(pin) != 6 {
			t.Errorf("pin %q should be 6 digits", pin)
		}
		if sessions.pinChecks != 3 {
			t.Errorf("expected 3 uniqueness checks, got %d", sessions.pinChecks)
		}
	})

	t.Run("GivesUpAfterExhaustion", func(t *testing.T) {
		sessions := &stubSessionRepo{collisions: pinAttempts + 1}
		repo := &stubRepository{session: sessions}

		_, err := service.generateUniquePin(ctx, repo)
		if !errors.Is(err, ErrPinGenerationFailed) {
			t.Errorf("expected ErrPinGenerationFailed, got %v", err)
		}
		if sessions.pinChecks != pinAttempts {
			t.Errorf("expected %d uniqueness checks, got %d", pinAttempts, sessions.pinChecks)
		}
	})
}

func TestSessionServiceCreateDefaultsDuration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	task := &models.GameTask{
		ID:      4,
		Title:   "Geometry sprint",
		Status:  models.GameTaskPublished,
		OwnerID: "teacher-1",
		Questions: []models.GameTaskQuestion{
			{Question: &models.Question{ID: 1, TimeLimit: 10}},
			{Question: &models.Question{ID: 2, TimeLimit: 20}},
			{Question: &models.Question{ID: 3, TimeLimit: 30}},
		},
	}
	sessions := &stubSessionRepo{}
	repo := &stubRepository{
		gameTask:    &stubGameTaskRepo{task: task, questionCount: 3},
		session:     sessions,
		participant: &stubParticipantRepo{},
	}

	service := &sessionService{
		repo:      repo,
		logger:    logger,
		validator: validator.New(),
	}

	req := &CreateSessionRequest{
		GameTaskID: task.ID,
		PlayMode:   models.PlayModeSpeed,
		Limit:      models.SessionLimited,
	}

	response, err := service.Create(context.Background(), req, "teacher-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sessions.created == nil {
		t.Fatal("no session was created")
	}
	if sessions.created.Duration != 60 {
		t.Errorf("Duration = %d, want sum of question time limits 60", sessions.created.Duration)
	}
	if response.Duration != 60 {
		t.Errorf("response Duration = %d, want 60", response.Duration)
	}
}

func TestSessionServiceStartTransitions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	newService := func(status models.SessionStatus) (*sessionService, *stubSessionRepo) {
		sessions := &stubSessionRepo{
			session: &models.GameTaskSession{
				ID:         7,
				GameTaskID: 4,
				Status:     status,
				PinCode:    "123456",
				CreatedBy:  "teacher-1",
			},
		}
		repo := &stubRepository{
			gameTask:    &stubGameTaskRepo{questionCount: 3},
			session:     sessions,
			participant: &stubParticipantRepo{},
		}
		return &sessionService{repo: repo, logger: logger, validator: validator.New()}, sessions
	}

	t.Run("PendingStarts", func(t *testing.T) {
		service, sessions := newService(models.SessionPending)

		response, err := service.Start(ctx, 7, "teacher-1")
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if response.Status != models.SessionActive {
			t.Errorf("Status = %s, want active", response.Status)
		}
		if sessions.session.StartedAt == nil {
			t.Error("StartedAt was not set")
		}
	})

	t.Run("ActiveStartIsNoOp", func(t *testing.T) {
		service, sessions := newService(models.SessionActive)

		response, err := service.Start(ctx, 7, "teacher-1")
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if response.Status != models.SessionActive {
			t.Errorf("Status = %s, want active", response.Status)
		}
		if sessions.session.StartedAt != nil {
			t.Error("repeated start must not touch StartedAt")
		}
	})

	t.Run("FinishedCannotStart", func(t *testing.T) {
		service, _ := newService(models.SessionFinished)

		_, err := service.Start(ctx, 7, "teacher-1")
		if !errors.Is(err, ErrSessionAlreadyFinished) {
			t.Errorf("expected ErrSessionAlreadyFinished, got %v", err)
		}
	})

	t.Run("PendingFinishes", func(t *testing.T) {
		service, sessions := newService(models.SessionPending)

		response, err := service.Finish(ctx, 7, "teacher-1")
		if err != nil {
			t.Fatalf("Finish() error = %v", err)
		}
		if response.Status != models.SessionFinished {
			t.Errorf("Status = %s, want finished", response.Status)
		}
		if sessions.session.FinishedAt == nil {
			t.Error("FinishedAt was not set")
		}
	})
}

func TestSessionServiceCreatePendingCap(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	task := &models.GameTask{
		ID:      3,
		Title:   "Fractions quiz",
		Status:  models.GameTaskPublished,
		OwnerID: "teacher-1",
	}
	repo := &stubRepository{
		gameTask: &stubGameTaskRepo{task: task, questionCount: 4},
		session:  &stubSessionRepo{pendingCount: maxPendingSessions},
	}

	service := &sessionService{
		repo:      repo,
		logger:    logger,
		validator: validator.New(),
	}

	req := &CreateSessionRequest{
		GameTaskID: task.ID,
		PlayMode:   models.PlayModeClassic,
		Limit:      models.SessionLimitless,
	}

	_, err := service.Create(context.Background(), req, "teacher-1")
	if !errors.Is(err, ErrPendingSessionLimit) {
		t.Errorf("expected ErrPendingSessionLimit, got %v", err)
	}
}
