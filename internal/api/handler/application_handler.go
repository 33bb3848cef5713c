package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

// Multipart part names of the two citizenship document images.
const (
	formFrontImage = "citizenship_front"
	formBackImage  = "citizenship_back"
)

// ApplicationHandler handles HTTP requests for the application workflow.
type ApplicationHandler struct {
	service        ports.ApplicationService
	maxUploadBytes int64
}

// NewApplicationHandler returns an ApplicationHandler. Uploaded images are
// read up to one byte past maxUploadBytes so the service can reject them.
func NewApplicationHandler(service ports.ApplicationService, maxUploadBytes int64) *ApplicationHandler {
	return &ApplicationHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// Submit handles POST /v1/applications.
//
// @Summary      Submit an application
// @Tags         applications
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key     header    string  false  "Idempotency key to prevent duplicate submissions"
// @Param        service             formData  string  true   "nid, dl, voter or passport"
// @Param        full_name           formData  string  true   "Full name"
// @Param        date_of_birth       formData  string  false  "AD date of birth (YYYY/MM/DD)"
// @Param        date_of_birth_bs    formData  string  false  "BS date of birth (YYYY/MM/DD)"
// @Param        citizenship_number  formData  string  true   "Citizenship certificate number"
// @Param        address             formData  string  true   "Permanent address"
// @Param        phone               formData  string  true   "Phone number"
// @Param        email               formData  string  true   "Contact email"
// @Param        citizenship_front   formData  file    true   "Front image of the citizenship certificate"
// @Param        citizenship_back    formData  file    true   "Back image of the citizenship certificate"
// @Success      201  {object}  submitResponse
// @Success      200  {object}  submitResponse  "Replayed submission"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /v1/applications [post]
func (h *ApplicationHandler) Submit(c echo.Context) error {
	userID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}

	front, err := h.readDocument(c, formFrontImage)
	if err != nil {
		return err
	}
	back, err := h.readDocument(c, formBackImage)
	if err != nil {
		return err
	}

	result, err := h.service.Submit(c.Request().Context(), ports.SubmitApplicationInput{
		UserID:            userID,
		Service:           c.FormValue("service"),
		FullName:          c.FormValue("full_name"),
		FullNameNe:        c.FormValue("full_name_ne"),
		DateOfBirth:       c.FormValue("date_of_birth"),
		DateOfBirthBS:     c.FormValue("date_of_birth_bs"),
		CitizenshipNumber: c.FormValue("citizenship_number"),
		Address:           c.FormValue("address"),
		Phone:             c.FormValue("phone"),
		Email:             c.FormValue("email"),
		FatherName:        c.FormValue("father_name"),
		FatherNameNe:      c.FormValue("father_name_ne"),
		MotherName:        c.FormValue("mother_name"),
		MotherNameNe:      c.FormValue("mother_name_ne"),
		GrandfatherName:   c.FormValue("grandfather_name"),
		GrandfatherNameNe: c.FormValue("grandfather_name_ne"),
		Front:             front,
		Back:              back,
		IdempotencyKey:    c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, submitResponse{
		Application: toApplicationResponse(result.Application, false),
		Warnings:    result.Warnings,
		Replayed:    result.Replayed,
	})
}

// readDocument returns nil when the part is absent; the service reports it.
func (h *ApplicationHandler) readDocument(c echo.Context, field string) (*ports.DocumentInput, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart payload")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxUploadBytes > 0 {
		r = io.LimitReader(f, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	return &ports.DocumentInput{Filename: fh.Filename, Data: data}, nil
}

// ListOwn handles GET /v1/applications.
//
// @Summary      List my recent applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of records (default 5)"
// @Success      200    {object}  listOwnResponse
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /v1/applications [get]
func (h *ApplicationHandler) ListOwn(c echo.Context) error {
	userID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	apps, err := h.service.ListOwn(c.Request().Context(), userID, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listOwnResponse{Items: toApplicationResponses(apps, false)})
}

// GetOwn handles GET /v1/applications/:id.
//
// @Summary      Get one of my applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  applicationResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/applications/{id} [get]
func (h *ApplicationHandler) GetOwn(c echo.Context) error {
	userID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}
	app, err := h.service.GetOwn(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationResponse(app, false))
}

// ListAll handles GET /v1/admin/applications.
//
// @Summary      List all applications
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        status   query     string  false  "Filter by status"
// @Param        service  query     string  false  "Filter by service"
// @Param        page     query     int     false  "Page number (default 1)"
// @Param        limit    query     int     false  "Page size (default 20, max 100)"
// @Success      200      {object}  listAllResponse
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /v1/admin/applications [get]
func (h *ApplicationHandler) ListAll(c echo.Context) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}

	result, err := h.service.ListAll(c.Request().Context(), ports.ListApplicationsInput{
		Status:  c.QueryParam("status"),
		Service: c.QueryParam("service"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, listAllResponse{
		Items:      toApplicationResponses(result.Items, true),
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /v1/admin/applications/:id.
//
// @Summary      Get an application for review
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Application ID"
// @Success      200  {object}  applicationResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/admin/applications/{id} [get]
func (h *ApplicationHandler) Get(c echo.Context) error {
	app, err := h.service.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationResponse(app, true))
}

// UpdateStatus handles PATCH /v1/admin/applications/:id/status.
//
// @Summary      Change the status of an application
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Application ID"
// @Param        body  body      updateStatusRequest  true  "Target status and reviewer notes"
// @Success      200   {object}  applicationResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/admin/applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c echo.Context) error {
	actorID, err := ctxPrincipalID(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	app, err := h.service.Transition(c.Request().Context(), ports.TransitionInput{
		ID:      c.Param("id"),
		Status:  req.Status,
		Notes:   req.Notes,
		ActorID: actorID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toApplicationResponse(app, true))
}

// queryInt parses an optional integer query parameter; absent means zero.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer")
	}
	return n, nil
}
