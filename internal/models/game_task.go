package models

import (
	"time"
)

type GameTaskStatus string

const (
	GameTaskDraft     GameTaskStatus = "draft"
	GameTaskPublished GameTaskStatus = "published"
	GameTaskArchived  GameTaskStatus = "archived"
)

// GameTask is a reusable quiz definition: an ordered set of questions that a
// teacher runs as live sessions.
type GameTask struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null;size:255"`
	Description string         `json:"description" gorm:"type:text"`
	Status      GameTaskStatus `json:"status" gorm:"not null;default:draft;size:16;index"`
	OwnerID     string         `json:"owner_id" gorm:"not null;index;size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner     *User              `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Questions []GameTaskQuestion `json:"questions,omitempty" gorm:"foreignKey:GameTaskID;constraint:OnDelete:CASCADE"`
}

// GameTaskQuestion links a question into a game task at a fixed position.
// Ordering is (order asc, id asc) so ties resolve deterministically.
type GameTaskQuestion struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	GameTaskID uint `json:"game_task_id" gorm:"not null;index;uniqueIndex:idx_game_task_question"`
	QuestionID uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_game_task_question"`
	Order      int  `json:"order" gorm:"not null;default:0"`

	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (GameTask) TableName() string {
	return "game_tasks"
}

func (GameTaskQuestion) TableName() string {
	return "game_task_questions"
}
