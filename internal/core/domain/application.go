package domain

import "time"

// ApplicationStatus represents the lifecycle state of an application.
type ApplicationStatus string

const (
	StatusSubmitted ApplicationStatus = "submitted"
	StatusInReview  ApplicationStatus = "in_review"
	StatusApproved  ApplicationStatus = "approved"
	StatusRejected  ApplicationStatus = "rejected"
)

// validTransitions defines the allowed state machine transitions.
// Approved and rejected are terminal and have no entry.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusSubmitted: {StatusInReview, StatusApproved, StatusRejected},
	StatusInReview:  {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s, in display order.
func (s ApplicationStatus) AllowedTransitions() []ApplicationStatus {
	next := validTransitions[s]
	out := make([]ApplicationStatus, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether no transition leaves s.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is a known status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusInReview, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ServiceType is the government service an application targets.
type ServiceType string

const (
	ServiceNID      ServiceType = "nid"
	ServiceDL       ServiceType = "dl"
	ServiceVoter    ServiceType = "voter"
	ServicePassport ServiceType = "passport"
)

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceNID, ServiceDL, ServiceVoter, ServicePassport:
		return true
	}
	return false
}

// StatusHistoryEntry records a single status the application has held.
type StatusHistoryEntry struct {
	Status    ApplicationStatus `json:"status" bson:"status"`
	Timestamp time.Time         `json:"timestamp" bson:"timestamp"`
	ActorID   string            `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	Notes     string            `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Application is the core aggregate root: one filed request for a
// government service.
type Application struct {
	ID      string      `json:"id" bson:"_id,omitempty"`
	UserID  string      `json:"user_id" bson:"user_id"`
	Service ServiceType `json:"service" bson:"service"`

	FullName      string `json:"full_name" bson:"full_name"`
	FullNameNe    string `json:"full_name_ne,omitempty" bson:"full_name_ne,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty" bson:"date_of_birth,omitempty"`
	DateOfBirthBS string `json:"date_of_birth_bs,omitempty" bson:"date_of_birth_bs,omitempty"`

	CitizenshipNumber string `json:"citizenship_number" bson:"citizenship_number"`
	Address           string `json:"address" bson:"address"`
	Phone             string `json:"phone" bson:"phone"`
	Email             string `json:"email" bson:"email"`

	FatherName        string `json:"father_name,omitempty" bson:"father_name,omitempty"`
	FatherNameNe      string `json:"father_name_ne,omitempty" bson:"father_name_ne,omitempty"`
	MotherName        string `json:"mother_name,omitempty" bson:"mother_name,omitempty"`
	MotherNameNe      string `json:"mother_name_ne,omitempty" bson:"mother_name_ne,omitempty"`
	GrandfatherName   string `json:"grandfather_name,omitempty" bson:"grandfather_name,omitempty"`
	GrandfatherNameNe string `json:"grandfather_name_ne,omitempty" bson:"grandfather_name_ne,omitempty"`

	// Document references are absent when the upload failed.
	CitizenshipFrontURL string `json:"citizenship_front_url,omitempty" bson:"citizenship_front_url,omitempty"`
	CitizenshipBackURL  string `json:"citizenship_back_url,omitempty" bson:"citizenship_back_url,omitempty"`

	Status         ApplicationStatus    `json:"status" bson:"status"`
	CreatedAt      time.Time            `json:"created_at" bson:"created_at"`
	ProcessedAt    *time.Time           `json:"processed_at" bson:"processed_at"`
	Notes          string               `json:"notes,omitempty" bson:"notes,omitempty"`
	IdempotencyKey string               `json:"-" bson:"idempotency_key,omitempty"`
	StatusHistory  []StatusHistoryEntry `json:"status_history" bson:"status_history"`
}
