package models

import (
	"time"

	"gorm.io/datatypes"
)

// Question types supported by quizzes.
const (
	QuestionTypeMCQ   = "MCQ"
	QuestionTypeShort = "SHORT"
)

// Quiz groups questions under a class; MCQ questions are auto-graded on submission.
type Quiz struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	ClassID   uint       `gorm:"not null;index" json:"class_id"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	DueDate   *time.Time `json:"due_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Class     Class      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"class"`
	Questions []Question `json:"questions"`
}

// Question belongs to a quiz. Options holds the MCQ choices; AnswerKey the expected answer.
type Question struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	QuizID    uint           `gorm:"not null;index" json:"quiz_id"`
	Prompt    string         `gorm:"type:text;not null" json:"prompt"`
	Type      string         `gorm:"size:16;not null" json:"type"`
	Options   datatypes.JSON `json:"options"`
	AnswerKey string         `gorm:"size:255" json:"answer_key"`
	CreatedAt time.Time      `json:"created_at"`
}
