package handler

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sevakendra/portal-api/internal/api/middleware"
	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

type stubApplicationService struct {
	t *testing.T

	submitFn     func(ctx context.Context, in ports.SubmitApplicationInput) (*ports.SubmitResult, error)
	listOwnFn    func(ctx context.Context, userID string, limit int) ([]*domain.Application, error)
	getOwnFn     func(ctx context.Context, userID, id string) (*domain.Application, error)
	listAllFn    func(ctx context.Context, in ports.ListApplicationsInput) (*ports.ListApplicationsResult, error)
	getByIDFn    func(ctx context.Context, id string) (*domain.Application, error)
	transitionFn func(ctx context.Context, in ports.TransitionInput) (*domain.Application, error)
}

func (s *stubApplicationService) Submit(ctx context.Context, in ports.SubmitApplicationInput) (*ports.SubmitResult, error) {
	if s.submitFn == nil {
		s.t.Fatalf("Submit should not be called")
	}
	return s.submitFn(ctx, in)
}

func (s *stubApplicationService) ListOwn(ctx context.Context, userID string, limit int) ([]*domain.Application, error) {
	if s.listOwnFn == nil {
		s.t.Fatalf("ListOwn should not be called")
	}
	return s.listOwnFn(ctx, userID, limit)
}

func (s *stubApplicationService) GetOwn(ctx context.Context, userID, id string) (*domain.Application, error) {
	if s.getOwnFn == nil {
		s.t.Fatalf("GetOwn should not be called")
	}
	return s.getOwnFn(ctx, userID, id)
}

func (s *stubApplicationService) ListAll(ctx context.Context, in ports.ListApplicationsInput) (*ports.ListApplicationsResult, error) {
	if s.listAllFn == nil {
		s.t.Fatalf("ListAll should not be called")
	}
	return s.listAllFn(ctx, in)
}

func (s *stubApplicationService) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	if s.getByIDFn == nil {
		s.t.Fatalf("GetByID should not be called")
	}
	return s.getByIDFn(ctx, id)
}

func (s *stubApplicationService) Transition(ctx context.Context, in ports.TransitionInput) (*domain.Application, error) {
	if s.transitionFn == nil {
		s.t.Fatalf("Transition should not be called")
	}
	return s.transitionFn(ctx, in)
}

func sampleApplication(status domain.ApplicationStatus) *domain.Application {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Application{
		ID:                "65f0c0ffee",
		UserID:            "u1",
		Service:           domain.ServicePassport,
		FullName:          "Sita Sharma",
		DateOfBirth:       "2000/01/15",
		DateOfBirthBS:     "2056/10/01",
		CitizenshipNumber: "12-01-75-01234",
		Address:           "Lalitpur",
		Phone:             "9800000000",
		Email:             "sita@example.com",
		Status:            status,
		CreatedAt:         created,
		StatusHistory:     []domain.StatusHistoryEntry{{Status: domain.StatusSubmitted, Timestamp: created}},
	}
}

type multipartFile struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, fields map[string]string, files ...multipartFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = part.Write(f.data)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/applications", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestApplicationHandler_Submit_Success(t *testing.T) {
	e := newTestEcho()
	var got ports.SubmitApplicationInput
	svc := &stubApplicationService{t: t, submitFn: func(_ context.Context, in ports.SubmitApplicationInput) (*ports.SubmitResult, error) {
		got = in
		return &ports.SubmitResult{
			Application: sampleApplication(domain.StatusSubmitted),
			Warnings:    []string{"citizenship back image could not be uploaded"},
		}, nil
	}}
	h := NewApplicationHandler(svc, 1024)

	req := multipartRequest(t, map[string]string{
		"service":            "passport",
		"full_name":          "Sita Sharma",
		"date_of_birth":      "2000/01/15",
		"citizenship_number": "12-01-75-01234",
		"address":            "Lalitpur",
		"phone":              "9800000000",
		"email":              "sita@example.com",
	},
		multipartFile{"citizenship_front", "front.png", []byte("front-bytes")},
		multipartFile{"citizenship_back", "back.png", []byte("back-bytes")},
	)
	req.Header.Set("Idempotency-Key", "key-1")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxPrincipalID, "u1")

	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if got.UserID != "u1" || got.Service != "passport" || got.IdempotencyKey != "key-1" {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Front == nil || string(got.Front.Data) != "front-bytes" || got.Front.Filename != "front.png" {
		t.Fatalf("front document not forwarded: %+v", got.Front)
	}
	if got.Back == nil || string(got.Back.Data) != "back-bytes" {
		t.Fatalf("back document not forwarded")
	}

	resp := decodeBody(t, rec)
	app, _ := resp["application"].(map[string]any)
	if app["status"] != "submitted" || app["processed_at"] != nil {
		t.Fatalf("unexpected application payload: %+v", app)
	}
	if _, ok := app["allowed_transitions"]; ok {
		t.Errorf("citizen view must not list transitions")
	}
	warnings, _ := resp["warnings"].([]any)
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", resp["warnings"])
	}
}

func TestApplicationHandler_Submit_MissingImagePassedAsNil(t *testing.T) {
	e := newTestEcho()
	svc := &stubApplicationService{t: t, submitFn: func(_ context.Context, in ports.SubmitApplicationInput) (*ports.SubmitResult, error) {
		if in.Front != nil || in.Back == nil {
			t.Fatalf("expected only the back image, got front=%v back=%v", in.Front, in.Back)
		}
		return nil, domain.NewValidationError("citizenship_front", "is required")
	}}
	h := NewApplicationHandler(svc, 1024)

	req := multipartRequest(t, map[string]string{"service": "nid"},
		multipartFile{"citizenship_back", "back.png", []byte("back-bytes")})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxPrincipalID, "u1")

	var ve *domain.ValidationError
	if err := h.Submit(c); !errors.As(err, &ve) || ve.Field != "citizenship_front" {
		t.Fatalf("expected citizenship_front validation error, got %v", err)
	}
}

func TestApplicationHandler_Submit_OversizedImageTruncatedForService(t *testing.T) {
	e := newTestEcho()
	svc := &stubApplicationService{t: t, submitFn: func(_ context.Context, in ports.SubmitApplicationInput) (*ports.SubmitResult, error) {
		if len(in.Front.Data) != 9 {
			t.Fatalf("expected read capped at limit+1, got %d bytes", len(in.Front.Data))
		}
		return nil, domain.NewValidationError("citizenship_front", "must not exceed 8 bytes")
	}}
	h := NewApplicationHandler(svc, 8)

	req := multipartRequest(t, nil,
		multipartFile{"citizenship_front", "front.png", bytes.Repeat([]byte("x"), 64)},
		multipartFile{"citizenship_back", "back.png", []byte("b")})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxPrincipalID, "u1")

	var ve *domain.ValidationError
	if err := h.Submit(c); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestApplicationHandler_Submit_Replayed(t *testing.T) {
	e := newTestEcho()
	svc := &stubApplicationService{t: t, submitFn: func(context.Context, ports.SubmitApplicationInput) (*ports.SubmitResult, error) {
		return &ports.SubmitResult{Application: sampleApplication(domain.StatusInReview), Replayed: true}, nil
	}}
	h := NewApplicationHandler(svc, 1024)

	rec := httptest.NewRecorder()
	c := e.NewContext(multipartRequest(t, map[string]string{"service": "nid"}), rec)
	c.Set(middleware.CtxPrincipalID, "u1")

	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for replay, got %d", rec.Code)
	}
}

func TestApplicationHandler_Submit_Unauthenticated(t *testing.T) {
	e := newTestEcho()
	h := NewApplicationHandler(&stubApplicationService{t: t}, 1024)

	rec := httptest.NewRecorder()
	c := e.NewContext(multipartRequest(t, nil), rec)

	var he *echo.HTTPError
	if err := h.Submit(c); !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestApplicationHandler_ListOwn(t *testing.T) {
	e := newTestEcho()
	svc := &stubApplicationService{t: t, listOwnFn: func(_ context.Context, userID string, limit int) ([]*domain.Application, error) {
		if userID != "u1" || limit != 3 {
			t.Fatalf("unexpected args: %s %d", userID, limit)
		}
		return []*domain.Application{sampleApplication(domain.StatusSubmitted)}, nil
	}}
	h := NewApplicationHandler(svc, 1024)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/applications?limit=3", nil), rec)
	c.Set(middleware.CtxPrincipalID, "u1")

	if err := h.ListOwn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	items, _ := decodeBody(t, rec)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestApplicationHandler_ListOwn_BadLimit(t *testing.T) {
	e := newTestEcho()
	h := NewApplicationHandler(&stubApplicationService{t: t}, 1024)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/applications?limit=abc", nil), rec)
	c.Set(middleware.CtxPrincipalID, "u1")

	var ve *domain.ValidationError
	if err := h.ListOwn(c); !errors.As(err, &ve) || ve.Field != "limit" {
		t.Fatalf("expected limit validation error, got %v", err)
	}
}

func TestApplicationHandler_GetOwn_NotFound(t *testing.T) {
	e := newTestEcho()
	svc := &stubApplicationService{t: t, getOwnFn: func(context.Context, string, string) (*domain.Application, error) {
		return nil, domain.ErrApplicationNotFound
	}}
	h := NewApplicationHandler(svc, 1024)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.Set(middleware.CtxPrincipalID, "u1")
	c.SetParamNames("id")
	c.SetParamValues("someone-elses")

	if err := h.GetOwn(c); !errors.Is(err, domain.ErrApplicationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestApplicationHandler_ListAll(t *testing.T) {
	e := newTestEcho()
	svc := &stubApplicationService{t: t, listAllFn: func(_ context.Context, in ports.ListApplicationsInput) (*ports.ListApplicationsResult, error) {
		if in.Status != "submitted" || in.Service != "dl" || in.Page != 2 || in.Limit != 10 {
			t.Fatalf("unexpected input: %+v", in)
		}
		return &ports.ListApplicationsResult{
			Items:      []*domain.Application{sampleApplication(domain.StatusSubmitted)},
			Total:      11,
			Page:       2,
			Limit:      10,
			TotalPages: 2,
		}, nil
	}}
	h := NewApplicationHandler(svc, 1024)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/admin/applications?status=submitted&service=dl&page=2&limit=10", nil), rec)

	if err := h.ListAll(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if resp["total"] != float64(11) || resp["total_pages"] != float64(2) {
		t.Fatalf("unexpected paging: %+v", resp)
	}
	items, _ := resp["items"].([]any)
	first, _ := items[0].(map[string]any)
	transitions, _ := first["allowed_transitions"].([]any)
	if len(transitions) != 3 {
		t.Fatalf("expected 3 allowed transitions, got %v", first["allowed_transitions"])
	}
}

func TestApplicationHandler_Get_TerminalHasNoTransitions(t *testing.T) {
	e := newTestEcho()
	processed := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := &stubApplicationService{t: t, getByIDFn: func(_ context.Context, id string) (*domain.Application, error) {
		app := sampleApplication(domain.StatusApproved)
		app.ProcessedAt = &processed
		return app, nil
	}}
	h := NewApplicationHandler(svc, 1024)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("65f0c0ffee")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	resp := decodeBody(t, rec)
	if _, ok := resp["allowed_transitions"]; ok {
		t.Errorf("terminal record must not list transitions")
	}
	if resp["processed_at"] != "2026-03-02T09:00:00Z" {
		t.Errorf("processed_at = %v", resp["processed_at"])
	}
}

func TestApplicationHandler_UpdateStatus(t *testing.T) {
	e := newTestEcho()
	svc := &stubApplicationService{t: t, transitionFn: func(_ context.Context, in ports.TransitionInput) (*domain.Application, error) {
		if in.ID != "65f0c0ffee" || in.Status != "rejected" || in.Notes != "blurry photo" || in.ActorID != "p1" {
			t.Fatalf("unexpected input: %+v", in)
		}
		return sampleApplication(domain.StatusRejected), nil
	}}
	h := NewApplicationHandler(svc, 1024)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"status":"rejected","notes":"blurry photo"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxPrincipalID, "p1")
	c.SetParamNames("id")
	c.SetParamValues("65f0c0ffee")

	if err := h.UpdateStatus(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if decodeBody(t, rec)["status"] != "rejected" {
		t.Fatalf("status not returned")
	}
}

func TestApplicationHandler_UpdateStatus_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{"missing status", `{"notes":"x"}`, nil},
		{"illegal edge", `{"status":"submitted"}`, domain.ErrInvalidTransition},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			svc := &stubApplicationService{t: t}
			if tc.err != nil {
				svc.transitionFn = func(context.Context, ports.TransitionInput) (*domain.Application, error) {
					return nil, tc.err
				}
			}
			h := NewApplicationHandler(svc, 1024)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(tc.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			c := e.NewContext(req, rec)
			c.Set(middleware.CtxPrincipalID, "p1")
			c.SetParamNames("id")
			c.SetParamValues("65f0c0ffee")

			err := h.UpdateStatus(c)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != "status" {
				t.Fatalf("expected status validation error, got %v", err)
			}
		})
	}
}
