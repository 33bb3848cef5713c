package handler

import (
	"time"

	"github.com/sevakendra/portal-api/internal/core/domain"
)

const (
	citizenApplicationsPath  = "/v1/applications/"
	providerApplicationsPath = "/v1/admin/applications/"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// toApplicationResponse maps an application onto its API view. The provider
// view also lists the statuses the record may move to next.
func toApplicationResponse(app *domain.Application, providerView bool) applicationResponse {
	resp := applicationResponse{
		ID:                  app.ID,
		UserID:              app.UserID,
		Service:             string(app.Service),
		Status:              string(app.Status),
		FullName:            app.FullName,
		FullNameNe:          app.FullNameNe,
		DateOfBirth:         app.DateOfBirth,
		DateOfBirthBS:       app.DateOfBirthBS,
		CitizenshipNumber:   app.CitizenshipNumber,
		Address:             app.Address,
		Phone:               app.Phone,
		Email:               app.Email,
		FatherName:          app.FatherName,
		FatherNameNe:        app.FatherNameNe,
		MotherName:          app.MotherName,
		MotherNameNe:        app.MotherNameNe,
		GrandfatherName:     app.GrandfatherName,
		GrandfatherNameNe:   app.GrandfatherNameNe,
		CitizenshipFrontURL: app.CitizenshipFrontURL,
		CitizenshipBackURL:  app.CitizenshipBackURL,
		CreatedAt:           formatTime(app.CreatedAt),
		Notes:               app.Notes,
		StatusHistory:       make([]statusHistoryItem, 0, len(app.StatusHistory)),
		Links:               applicationLinks{Self: citizenApplicationsPath + app.ID},
	}

	if app.ProcessedAt != nil {
		processed := formatTime(*app.ProcessedAt)
		resp.ProcessedAt = &processed
	}

	for _, h := range app.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, statusHistoryItem{
			Status:    string(h.Status),
			Timestamp: formatTime(h.Timestamp),
			ActorID:   h.ActorID,
			Notes:     h.Notes,
		})
	}

	if providerView {
		resp.Links.Self = providerApplicationsPath + app.ID
		for _, next := range app.Status.AllowedTransitions() {
			resp.AllowedTransitions = append(resp.AllowedTransitions, string(next))
		}
	}

	return resp
}

func toApplicationResponses(apps []*domain.Application, providerView bool) []applicationResponse {
	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toApplicationResponse(app, providerView))
	}
	return out
}
