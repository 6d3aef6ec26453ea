package models

import "time"

// Class is a teacher-owned group of enrolled students sharing assignments and quizzes.
type Class struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	JoinCode    string       `gorm:"size:16;uniqueIndex;not null" json:"join_code"`
	TeacherID   uint         `gorm:"not null;index" json:"teacher_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Teacher     User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"teacher"`
	Enrollments []Enrollment `json:"-"`
	Assignments []Assignment `json:"-"`
}

// Enrollment links a student to a class. At most one per (student, class) pair.
type Enrollment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_class" json:"student_id"`
	ClassID   uint      `gorm:"not null;uniqueIndex:idx_enrollment_student_class" json:"class_id"`
	CreatedAt time.Time `json:"created_at"`
	Student   User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Class     Class     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"class"`
}
