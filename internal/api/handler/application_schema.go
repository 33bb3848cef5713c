package handler

// --- Request types ---

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes"  validate:"max=2000"`
}

// --- Response types ---

type statusHistoryItem struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type applicationLinks struct {
	Self string `json:"self"`
}

type applicationResponse struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Service string `json:"service"`
	Status  string `json:"status"`

	FullName      string `json:"full_name"`
	FullNameNe    string `json:"full_name_ne,omitempty"`
	DateOfBirth   string `json:"date_of_birth,omitempty"`
	DateOfBirthBS string `json:"date_of_birth_bs,omitempty"`

	CitizenshipNumber string `json:"citizenship_number"`
	Address           string `json:"address"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`

	FatherName        string `json:"father_name,omitempty"`
	FatherNameNe      string `json:"father_name_ne,omitempty"`
	MotherName        string `json:"mother_name,omitempty"`
	MotherNameNe      string `json:"mother_name_ne,omitempty"`
	GrandfatherName   string `json:"grandfather_name,omitempty"`
	GrandfatherNameNe string `json:"grandfather_name_ne,omitempty"`

	CitizenshipFrontURL string `json:"citizenship_front_url,omitempty"`
	CitizenshipBackURL  string `json:"citizenship_back_url,omitempty"`

	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at"`
	Notes       string  `json:"notes,omitempty"`

	StatusHistory      []statusHistoryItem `json:"status_history"`
	AllowedTransitions []string            `json:"allowed_transitions,omitempty"`
	Links              applicationLinks    `json:"_links"`
}

type submitResponse struct {
	Application applicationResponse `json:"application"`
	Warnings    []string            `json:"warnings,omitempty"`
	Replayed    bool                `json:"replayed,omitempty"`
}

type listOwnResponse struct {
	Items []applicationResponse `json:"items"`
}

type listAllResponse struct {
	Items      []applicationResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}
