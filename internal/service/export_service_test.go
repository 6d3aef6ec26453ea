package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newExportFixture(t *testing.T) (*memoryStore, ExportService) {
	t.Helper()
	store := newMemoryStore()
	svc := NewExportService(&fakeClassRepo{store: store}, &fakeSubmissionRepo{store: store}, testLogger())
	return store, svc
}

func TestExportClassGradesCSV(t *testing.T) {
	store, svc := newExportFixture(t)
	teacher := store.addUser("Ada", "ada@lumio.edu", "teacher")
	student := store.addUser("Ben", "ben@lumio.edu", "student")
	class := store.addClass("Algebra", teacher.ID)
	store.enroll(student.ID, class.ID)
	assignment := store.addAssignment(class.ID, "Homework 1", 100)
	store.addGradedSubmission(assignment.ID, student.ID, 87.5)

	file, err := svc.ClassGrades(context.Background(), teacher.ID, class.ID, ExportFormatCSV)
	require.NoError(t, err)
	require.Equal(t, "text/csv", file.ContentType)
	require.True(t, strings.HasSuffix(file.Name, ".csv"))

	body := string(file.Data)
	require.Contains(t, body, "Student,Assignment,Grade,Feedback,Submitted At")
	require.Contains(t, body, "Ben,Homework 1,87.5")
}

func TestExportClassGradesPDF(t *testing.T) {
	store, svc := newExportFixture(t)
	teacher := store.addUser("Ada", "ada@lumio.edu", "teacher")
	student := store.addUser("Ben", "ben@lumio.edu", "student")
	class := store.addClass("Algebra", teacher.ID)
	store.enroll(student.ID, class.ID)
	assignment := store.addAssignment(class.ID, "Homework 1", 100)
	store.addGradedSubmission(assignment.ID, student.ID, 90)

	file, err := svc.ClassGrades(context.Background(), teacher.ID, class.ID, ExportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", file.ContentType)
	require.True(t, strings.HasPrefix(string(file.Data), "%PDF"))
}

func TestExportRequiresClassOwner(t *testing.T) {
	store, svc := newExportFixture(t)
	teacher := store.addUser("Ada", "ada@lumio.edu", "teacher")
	other := store.addUser("Eve", "eve@lumio.edu", "teacher")
	class := store.addClass("Algebra", teacher.ID)

	_, err := svc.ClassGrades(context.Background(), other.ID, class.ID, ExportFormatCSV)
	require.ErrorIs(t, err, ErrNotClassOwner)
}

func TestExportUnknownFormat(t *testing.T) {
	store, svc := newExportFixture(t)
	teacher := store.addUser("Ada", "ada@lumio.edu", "teacher")
	class := store.addClass("Algebra", teacher.ID)

	_, err := svc.ClassGrades(context.Background(), teacher.ID, class.ID, "xlsx")
	require.ErrorIs(t, err, ErrUnsupportedExportFormat)

	_, err = svc.ClassGrades(context.Background(), teacher.ID, 999, ExportFormatCSV)
	require.ErrorIs(t, err, ErrClassNotFound)
}
