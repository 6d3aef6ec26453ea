package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/lumio-edu/lumio-api/internal/models"
)

// ClassRepository defines persistence operations for classes and enrollments.
type ClassRepository interface {
	GetByID(ctx context.Context, id uint) (models.Class, error)
	GetByJoinCode(ctx context.Context, code string) (models.Class, error)
	ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error)
	ListByStudent(ctx context.Context, studentID uint) ([]models.Class, error)
	Create(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id uint) error
	IsEnrolled(ctx context.Context, studentID, classID uint) (bool, error)
	Enroll(ctx context.Context, studentID, classID uint) error
	Unenroll(ctx context.Context, studentID, classID uint) error
	Roster(ctx context.Context, classID uint) ([]models.User, error)
}

type classRepository struct {
	db *gorm.DB
}

// NewClassRepository instantiates a GORM-backed repository.
func NewClassRepository(db *gorm.DB) ClassRepository {
	return &classRepository{db: db}
}

func (r *classRepository) GetByID(ctx context.Context, id uint) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Preload("Teacher").First(&class, id).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) GetByJoinCode(ctx context.Context, code string) (models.Class, error) {
	var class models.Class
	if err := r.db.WithContext(ctx).Where("join_code = ?", code).First(&class).Error; err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *classRepository) ListByTeacher(ctx context.Context, teacherID uint) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID).Order("created_at ASC").Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) ListByStudent(ctx context.Context, studentID uint) ([]models.Class, error) {
	var classes []models.Class
	if err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.class_id = classes.id").
		Where("enrollments.student_id = ?", studentID).
		Order("classes.created_at ASC").
		Find(&classes).Error; err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *classRepository) Create(ctx context.Context, class *models.Class) error {
	return r.db.WithContext(ctx).Create(class).Error
}

func (r *classRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Class{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *classRepository) IsEnrolled(ctx context.Context, studentID, classID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Enrollment{}).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *classRepository) Enroll(ctx context.Context, studentID, classID uint) error {
	enrolled, err := r.IsEnrolled(ctx, studentID, classID)
	if err != nil {
		return err
	}
	if enrolled {
		return nil
	}
	return r.db.WithContext(ctx).Create(&models.Enrollment{StudentID: studentID, ClassID: classID}).Error
}

func (r *classRepository) Unenroll(ctx context.Context, studentID, classID uint) error {
	return r.db.WithContext(ctx).
		Where("student_id = ? AND class_id = ?", studentID, classID).
		Delete(&models.Enrollment{}).Error
}

func (r *classRepository) Roster(ctx context.Context, classID uint) ([]models.User, error) {
	var students []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.student_id = users.id").
		Where("enrollments.class_id = ?", classID).
		Order("users.name ASC").
		Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}
