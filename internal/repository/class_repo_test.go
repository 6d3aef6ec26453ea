package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lumio-edu/lumio-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Quiz{},
		&models.Question{},
		&models.Submission{},
		&models.Notification{},
	))
	return db
}

func createUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: name + "@lumio.edu", Role: role, PasswordHash: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createClass(t *testing.T, db *gorm.DB, teacherID uint, name, code string) models.Class {
	t.Helper()
	class := models.Class{Name: name, JoinCode: code, TeacherID: teacherID}
	require.NoError(t, db.Create(&class).Error)
	return class
}

func TestClassRepositoryGetByJoinCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)
	teacher := createUser(t, db, "ada", models.RoleTeacher)
	created := createClass(t, db, teacher.ID, "Algebra", "abc123")

	found, err := repo.GetByJoinCode(context.Background(), "abc123")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = repo.GetByJoinCode(context.Background(), "zzzzzz")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClassRepositoryEnrollIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)
	teacher := createUser(t, db, "ada", models.RoleTeacher)
	student := createUser(t, db, "ben", models.RoleStudent)
	class := createClass(t, db, teacher.ID, "Algebra", "abc123")

	require.NoError(t, repo.Enroll(context.Background(), student.ID, class.ID))
	require.NoError(t, repo.Enroll(context.Background(), student.ID, class.ID))

	var count int64
	require.NoError(t, db.Model(&models.Enrollment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	enrolled, err := repo.IsEnrolled(context.Background(), student.ID, class.ID)
	require.NoError(t, err)
	require.True(t, enrolled)
}

func TestClassRepositoryListByStudent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)
	teacher := createUser(t, db, "ada", models.RoleTeacher)
	student := createUser(t, db, "ben", models.RoleStudent)
	joined := createClass(t, db, teacher.ID, "Algebra", "abc123")
	createClass(t, db, teacher.ID, "Biology", "def456")

	require.NoError(t, repo.Enroll(context.Background(), student.ID, joined.ID))

	classes, err := repo.ListByStudent(context.Background(), student.ID)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Equal(t, "Algebra", classes[0].Name)
}

func TestClassRepositoryRosterOrdersByName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)
	teacher := createUser(t, db, "ada", models.RoleTeacher)
	zoe := createUser(t, db, "zoe", models.RoleStudent)
	ben := createUser(t, db, "ben", models.RoleStudent)
	class := createClass(t, db, teacher.ID, "Algebra", "abc123")

	require.NoError(t, repo.Enroll(context.Background(), zoe.ID, class.ID))
	require.NoError(t, repo.Enroll(context.Background(), ben.ID, class.ID))

	roster, err := repo.Roster(context.Background(), class.ID)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, "ben", roster[0].Name)
	require.Equal(t, "zoe", roster[1].Name)
}

func TestClassRepositoryDeleteMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClassRepository(db)

	err := repo.Delete(context.Background(), 404)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
