package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sevakendra/portal-api/internal/api/metrics"
	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

const (
	defaultOwnLimit = 5
	maxOwnLimit     = 50

	defaultPageLimit = 20
	maxPageLimit     = 100

	defaultSubmitLockTTL = 2 * time.Minute
)

// ApplicationOptions tunes the workflow engine.
type ApplicationOptions struct {
	MaxUploadBytes int64
	SubmitLockTTL  time.Duration
}

// ApplicationService implements the citizen and provider application workflow.
type ApplicationService struct {
	repo  ports.ApplicationRepository
	docs  ports.DocumentStore
	lock  ports.SubmissionLock
	dates ports.DateConverter
	queue ports.NotificationQueue

	validate       *validator.Validate
	maxUploadBytes int64
	lockTTL        time.Duration
	log            zerolog.Logger
}

// NewApplicationService wires the workflow engine. queue may be nil, in which
// case no status notifications are sent.
func NewApplicationService(
	repo ports.ApplicationRepository,
	docs ports.DocumentStore,
	lock ports.SubmissionLock,
	dates ports.DateConverter,
	queue ports.NotificationQueue,
	opts ApplicationOptions,
	log zerolog.Logger,
) *ApplicationService {
	if opts.SubmitLockTTL <= 0 {
		opts.SubmitLockTTL = defaultSubmitLockTTL
	}
	return &ApplicationService{
		repo:           repo,
		docs:           docs,
		lock:           lock,
		dates:          dates,
		queue:          queue,
		validate:       newSubmitValidator(),
		maxUploadBytes: opts.MaxUploadBytes,
		lockTTL:        opts.SubmitLockTTL,
		log:            log,
	}
}

// Submit validates the form, uploads both documents and writes exactly one
// application record in status submitted. A document that fails to upload is
// reported in the result warnings and left off the record.
func (s *ApplicationService) Submit(ctx context.Context, input ports.SubmitApplicationInput) (*ports.SubmitResult, error) {
	if input.UserID == "" {
		return nil, domain.ErrForbidden
	}
	if err := s.validateSubmission(&input); err != nil {
		return nil, err
	}

	if input.IdempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, input.UserID, input.IdempotencyKey)
		switch {
		case err == nil && existing != nil:
			s.log.Info().Str("idempotency_key", input.IdempotencyKey).Str("application_id", existing.ID).Msg("idempotent replay")
			return &ports.SubmitResult{Application: existing, Replayed: true}, nil
		case err != nil && !errors.Is(err, domain.ErrApplicationNotFound):
			return nil, domain.NewStorageError("find application by idempotency key", err)
		}
	}

	acquired, err := s.lock.Acquire(ctx, input.UserID, s.lockTTL)
	if err != nil {
		return nil, domain.NewStorageError("acquire submit lock", err)
	}
	if !acquired {
		return nil, domain.ErrSubmissionInProgress
	}

	// The submission is not abandoned once side effects begin.
	writeCtx := context.WithoutCancel(ctx)
	defer func() {
		if err := s.lock.Release(writeCtx, input.UserID); err != nil {
			s.log.Warn().Err(err).Str("user_id", input.UserID).Msg("failed to release submit lock")
		}
	}()

	now := time.Now().UTC()
	frontURL, backURL, warnings := s.uploadDocuments(writeCtx, input, now)

	app := &domain.Application{
		UserID:              input.UserID,
		Service:             domain.ServiceType(input.Service),
		FullName:            input.FullName,
		FullNameNe:          input.FullNameNe,
		DateOfBirth:         input.DateOfBirth,
		DateOfBirthBS:       input.DateOfBirthBS,
		CitizenshipNumber:   input.CitizenshipNumber,
		Address:             input.Address,
		Phone:               input.Phone,
		Email:               input.Email,
		FatherName:          input.FatherName,
		FatherNameNe:        input.FatherNameNe,
		MotherName:          input.MotherName,
		MotherNameNe:        input.MotherNameNe,
		GrandfatherName:     input.GrandfatherName,
		GrandfatherNameNe:   input.GrandfatherNameNe,
		CitizenshipFrontURL: frontURL,
		CitizenshipBackURL:  backURL,
		Status:              domain.StatusSubmitted,
		CreatedAt:           now,
		IdempotencyKey:      input.IdempotencyKey,
		StatusHistory: []domain.StatusHistoryEntry{
			{Status: domain.StatusSubmitted, Timestamp: now, ActorID: input.UserID},
		},
	}

	if err := s.repo.Create(writeCtx, app); err != nil {
		s.log.Error().Err(err).Str("user_id", input.UserID).Msg("failed to create application")
		return nil, domain.NewStorageError("insert application", err)
	}

	metrics.ApplicationsSubmittedTotal.WithLabelValues(string(app.Service)).Inc()
	s.log.Info().
		Str("application_id", app.ID).
		Str("user_id", app.UserID).
		Str("service", string(app.Service)).
		Int("warnings", len(warnings)).
		Msg("application submitted")

	return &ports.SubmitResult{Application: app, Warnings: warnings}, nil
}

// uploadDocuments stores both images concurrently. Failures are logged and
// returned as warnings; the matching URL is left empty.
func (s *ApplicationService) uploadDocuments(ctx context.Context, input ports.SubmitApplicationInput, now time.Time) (string, string, []string) {
	var (
		g        errgroup.Group
		mu       sync.Mutex
		warnings []string
		urls     [2]string
	)

	for i, doc := range []struct {
		side string
		data []byte
	}{
		{sideFront, input.Front.Data},
		{sideBack, input.Back.Data},
	} {
		g.Go(func() error {
			contentType, ext := documentType(doc.data)
			key := fmt.Sprintf("%s/%s-%d.%s", input.UserID, doc.side, now.UnixMilli(), ext)
			if err := s.docs.Upload(ctx, key, doc.data, contentType); err != nil {
				metrics.DocumentUploadFailuresTotal.WithLabelValues(doc.side).Inc()
				s.log.Warn().Err(err).Str("user_id", input.UserID).Str("side", doc.side).Msg("document upload failed")
				mu.Lock()
				warnings = append(warnings, fmt.Sprintf("citizenship %s image could not be uploaded", doc.side))
				mu.Unlock()
				return nil
			}
			urls[i] = s.docs.PublicURL(key)
			return nil
		})
	}
	_ = g.Wait()

	return urls[0], urls[1], warnings
}

// ListOwn returns the newest applications of userID. limit defaults to 5 and
// is capped at 50.
func (s *ApplicationService) ListOwn(ctx context.Context, userID string, limit int) ([]*domain.Application, error) {
	if userID == "" {
		return nil, domain.ErrForbidden
	}
	if limit <= 0 {
		limit = defaultOwnLimit
	}
	if limit > maxOwnLimit {
		limit = maxOwnLimit
	}

	items, _, err := s.repo.List(ctx, ports.ListApplicationsFilter{UserID: userID, Page: 1, Limit: limit})
	if err != nil {
		return nil, domain.NewStorageError("list own applications", err)
	}
	return items, nil
}

// GetOwn returns one application owned by userID. Applications of other
// principals are reported as not found.
func (s *ApplicationService) GetOwn(ctx context.Context, userID, id string) (*domain.Application, error) {
	if userID == "" {
		return nil, domain.ErrForbidden
	}
	app, err := s.repo.FindByID(ctx, id, userID)
	if err != nil {
		return nil, domain.NewStorageError("find application", err)
	}
	return app, nil
}

// ListAll returns a page of every application, newest first.
func (s *ApplicationService) ListAll(ctx context.Context, input ports.ListApplicationsInput) (*ports.ListApplicationsResult, error) {
	if input.Status != "" && !domain.ApplicationStatus(input.Status).Valid() {
		return nil, domain.NewValidationError("status", "must be one of: submitted in_review approved rejected")
	}
	if input.Service != "" && !domain.ServiceType(input.Service).Valid() {
		return nil, domain.NewValidationError("service", "must be one of: nid dl voter passport")
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListApplicationsFilter{
		Status:  input.Status,
		Service: input.Service,
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		return nil, domain.NewStorageError("list applications", err)
	}

	totalPages := int(total) / limit
	if int(total)%limit != 0 {
		totalPages++
	}

	return &ports.ListApplicationsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetByID returns any application.
func (s *ApplicationService) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	app, err := s.repo.FindByID(ctx, id, "")
	if err != nil {
		return nil, domain.NewStorageError("find application", err)
	}
	return app, nil
}

// Transition moves an application to input.Status. Only the edges of the
// lifecycle are accepted; anything else returns domain.ErrInvalidTransition and
// leaves the record untouched.
func (s *ApplicationService) Transition(ctx context.Context, input ports.TransitionInput) (*domain.Application, error) {
	target := domain.ApplicationStatus(input.Status)
	if !target.Valid() {
		return nil, domain.NewValidationError("status", "must be one of: submitted in_review approved rejected")
	}

	app, err := s.repo.FindByID(ctx, input.ID, "")
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			metrics.ApplicationTransitionErrorsTotal.WithLabelValues("not_found").Inc()
		}
		return nil, domain.NewStorageError("find application", err)
	}

	if !app.Status.CanTransitionTo(target) {
		metrics.ApplicationTransitionErrorsTotal.WithLabelValues("invalid_transition").Inc()
		return nil, fmt.Errorf("transition %s: %w (from %s to %s)", input.ID, domain.ErrInvalidTransition, app.Status, target)
	}

	now := time.Now().UTC()
	update := ports.StatusUpdate{
		Status: target,
		Notes:  input.Notes,
		History: domain.StatusHistoryEntry{
			Status:    target,
			Timestamp: now,
			ActorID:   input.ActorID,
			Notes:     input.Notes,
		},
	}
	if target.IsTerminal() {
		update.ProcessedAt = &now
	}

	updated, err := s.repo.UpdateStatus(ctx, input.ID, app.Status, update)
	if errors.Is(err, domain.ErrApplicationNotFound) {
		// Someone else moved the record first; judge the edge against its new state.
		current, rerr := s.repo.FindByID(ctx, input.ID, "")
		if rerr != nil {
			return nil, domain.NewStorageError("find application", rerr)
		}
		metrics.ApplicationTransitionErrorsTotal.WithLabelValues("invalid_transition").Inc()
		return nil, fmt.Errorf("transition %s: %w (from %s to %s)", input.ID, domain.ErrInvalidTransition, current.Status, target)
	}
	if err != nil {
		metrics.ApplicationTransitionErrorsTotal.WithLabelValues("storage").Inc()
		return nil, domain.NewStorageError("update application status", err)
	}

	metrics.ApplicationTransitionsTotal.WithLabelValues(string(app.Status), string(target)).Inc()
	s.log.Info().
		Str("application_id", updated.ID).
		Str("from", string(app.Status)).
		Str("status", string(target)).
		Str("actor_id", input.ActorID).
		Msg("application status changed")

	s.notify(app.Status, updated, now)
	return updated, nil
}

func (s *ApplicationService) notify(from domain.ApplicationStatus, app *domain.Application, at time.Time) {
	if s.queue == nil {
		return
	}
	ok := s.queue.Enqueue(ports.StatusNotification{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		Email:         app.Email,
		Service:       app.Service,
		From:          from,
		To:            app.Status,
		Notes:         app.Notes,
		At:            at,
	})
	if !ok {
		s.log.Warn().Str("application_id", app.ID).Msg("status notification dropped")
	}
}
