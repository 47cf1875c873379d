package formats

import (
	"fmt"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// TestHandler grades single and multiple choice questions
type TestHandler struct{}

func NewTestHandler() *TestHandler {
	return &TestHandler{}
}

func (h *TestHandler) Code() models.FormatCode {
	return models.FormatTest
}

func (h *TestHandler) QuestionContext(question *models.Question, token string) (map[string]interface{}, error) {
	options := ShuffleOptions(question.Options, token, question.ID)

	rendered := make([]map[string]interface{}, len(options))
	for i, opt := range options {
		rendered[i] = map[string]interface{}{
			"id":     opt.ID,
			"answer": opt.Answer,
		}
	}

	return map[string]interface{}{
		"id":         question.ID,
		"body":       question.Body,
		"format":     question.Format,
		"variant":    question.Variant,
		"time_limit": question.TimeLimit,
		"options":    rendered,
	}, nil
}

// Grade checks the selected options against the correct set. Single variant
// requires exactly one correct selection; multiple variant requires the exact
// correct set. A question with no correct options can never be answered
// correctly.
func (h *TestHandler) Grade(question *models.Question, submission Submission) (*AnswerResult, error) {
	selected := filterOptionIDs(submission.OptionIDs, question.OptionIDSet())

	if len(selected) == 0 {
		return &AnswerResult{
			Answered: false,
			Payload: map[string]interface{}{
				"variant":             question.Variant,
				"selected_option_ids": []uint{},
			},
		}, nil
	}

	correctSet := make(map[uint]bool)
	for _, id := range question.CorrectOptionIDs() {
		correctSet[id] = true
	}

	var isCorrect bool
	switch question.Variant {
	case models.VariantMultiple:
		isCorrect = len(selected) == len(correctSet)
		for _, id := range selected {
			if !correctSet[id] {
				isCorrect = false
				break
			}
		}
	default:
		isCorrect = len(selected) == 1 && correctSet[selected[0]]
	}
	if len(correctSet) == 0 {
		isCorrect = false
	}

	return &AnswerResult{
		Answered:          true,
		IsCorrect:         &isCorrect,
		SelectedOptionIDs: selected,
		Payload: map[string]interface{}{
			"variant":             question.Variant,
			"selected_option_ids": selected,
		},
	}, nil
}

// Persist links the selected options to the attempt row for later review
func (h *TestHandler) Persist(attempt *models.QuestionAttempt, result *AnswerResult) []models.TestAnswer {
	answers := make([]models.TestAnswer, 0, len(result.SelectedOptionIDs))
	for _, optionID := range result.SelectedOptionIDs {
		answers = append(answers, models.TestAnswer{AttemptID: attempt.ID, OptionID: optionID})
	}
	return answers
}

func (h *TestHandler) ReviewContext(question *models.Question, attempt *models.QuestionAttempt) (map[string]interface{}, error) {
	if question == nil {
		return nil, fmt.Errorf("question is required for review")
	}

	options := make([]map[string]interface{}, len(question.Options))
	for i, opt := range question.Options {
		options[i] = map[string]interface{}{
			"id":         opt.ID,
			"answer":     opt.Answer,
			"is_correct": opt.IsCorrect,
		}
	}

	review := map[string]interface{}{
		"question_id": question.ID,
		"body":        question.Body,
		"variant":     question.Variant,
		"options":     options,
		"answered":    false,
		"score_delta": 0,
	}

	if attempt != nil {
		review["answered"] = attempt.Answered
		review["is_correct"] = attempt.IsCorrect
		review["score_delta"] = attempt.ScoreDelta
		review["time_spent"] = attempt.TimeSpent
	}

	return review, nil
}

// filterOptionIDs drops ids that do not belong to the question and collapses
// duplicates while preserving order.
func filterOptionIDs(ids []uint, valid map[uint]bool) []uint {
	seen := make(map[uint]bool, len(ids))
	filtered := make([]uint, 0, len(ids))
	for _, id := range ids {
		if valid[id] && !seen[id] {
			filtered = append(filtered, id)
			seen[id] = true
		}
	}
	return filtered
}
