package dto

import "github.com/lumio-edu/lumio-api/internal/models"

// ClassCreateRequest is the payload for creating a class.
type ClassCreateRequest struct {
	Name string `json:"name" validate:"required,min=2,max=255"`
}

// ClassJoinRequest is the payload students send to join a class by code.
type ClassJoinRequest struct {
	Code string `json:"code" validate:"required"`
}

// ClassJoinResponse confirms a successful enrollment.
type ClassJoinResponse struct {
	Joined    bool   `json:"joined"`
	ClassName string `json:"class_name"`
}

// ClassAddStudentRequest is a teacher request to enroll a specific student.
type ClassAddStudentRequest struct {
	StudentID uint `json:"student_id" validate:"required,gt=0"`
}

// ClassResponse is the class view returned to API clients. JoinCode is only
// populated for the owning teacher.
type ClassResponse struct {
	ID       uint         `json:"id"`
	Name     string       `json:"name"`
	JoinCode string       `json:"join_code,omitempty"`
	Teacher  *UserPublic  `json:"teacher,omitempty"`
	Students []UserPublic `json:"students,omitempty"`
}

// UserPublic exposes the minimal identity of a user inside class payloads.
type UserPublic struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// NewClassResponse converts a Class model into a DTO without the join code.
func NewClassResponse(model models.Class) ClassResponse {
	response := ClassResponse{
		ID:   model.ID,
		Name: model.Name,
	}
	if model.Teacher.ID != 0 {
		response.Teacher = &UserPublic{ID: model.Teacher.ID, Name: model.Teacher.Name}
	}
	return response
}

// NewClassResponseSlice converts class models into DTOs.
func NewClassResponseSlice(classes []models.Class) []ClassResponse {
	responses := make([]ClassResponse, 0, len(classes))
	for _, class := range classes {
		responses = append(responses, NewClassResponse(class))
	}
	return responses
}

// NewUserPublicSlice converts users into their minimal identity view.
func NewUserPublicSlice(users []models.User) []UserPublic {
	result := make([]UserPublic, 0, len(users))
	for _, user := range users {
		result = append(result, UserPublic{ID: user.ID, Name: user.Name, Email: user.Email})
	}
	return result
}
