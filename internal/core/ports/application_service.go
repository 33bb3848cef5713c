package ports

import (
	"context"

	"github.com/sevakendra/portal-api/internal/core/domain"
)

// DocumentInput is one uploaded citizenship-document image.
type DocumentInput struct {
	Filename string
	Data     []byte
}

// SubmitApplicationInput carries the citizen form and both document images.
// Field names in validation errors come from the json tags.
type SubmitApplicationInput struct {
	UserID string `json:"-"`

	Service       string `json:"service"          validate:"required,oneof=nid dl voter passport"`
	FullName      string `json:"full_name"        validate:"required"`
	FullNameNe    string `json:"full_name_ne"`
	DateOfBirth   string `json:"date_of_birth"    validate:"omitempty,ymd"`
	DateOfBirthBS string `json:"date_of_birth_bs" validate:"omitempty,ymd"`

	CitizenshipNumber string `json:"citizenship_number" validate:"required"`
	Address           string `json:"address"            validate:"required"`
	Phone             string `json:"phone"              validate:"required"`
	Email             string `json:"email"              validate:"required,email"`

	FatherName        string `json:"father_name"`
	FatherNameNe      string `json:"father_name_ne"`
	MotherName        string `json:"mother_name"`
	MotherNameNe      string `json:"mother_name_ne"`
	GrandfatherName   string `json:"grandfather_name"`
	GrandfatherNameNe string `json:"grandfather_name_ne"`

	Front *DocumentInput `json:"citizenship_front"`
	Back  *DocumentInput `json:"citizenship_back"`

	IdempotencyKey string `json:"-"`
}

// SubmitResult is returned by Submit.
type SubmitResult struct {
	Application *domain.Application
	// Warnings lists non-fatal problems, e.g. a document that failed to upload.
	Warnings []string
	// Replayed is true when the Idempotency-Key matched an existing application.
	Replayed bool
}

// ListApplicationsInput carries the provider list parameters.
type ListApplicationsInput struct {
	Status  string
	Service string
	Page    int
	Limit   int
}

// ListApplicationsResult is returned by ListAll.
type ListApplicationsResult struct {
	Items      []*domain.Application
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TransitionInput carries a provider status change.
type TransitionInput struct {
	ID      string
	Status  string
	Notes   string
	ActorID string
}

// ApplicationService defines the application workflow use cases.
type ApplicationService interface {
	Submit(ctx context.Context, input SubmitApplicationInput) (*SubmitResult, error)
	ListOwn(ctx context.Context, userID string, limit int) ([]*domain.Application, error)
	GetOwn(ctx context.Context, userID, id string) (*domain.Application, error)

	ListAll(ctx context.Context, input ListApplicationsInput) (*ListApplicationsResult, error)
	GetByID(ctx context.Context, id string) (*domain.Application, error)
	Transition(ctx context.Context, input TransitionInput) (*domain.Application, error)
}
