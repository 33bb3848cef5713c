package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sevakendra/portal-api/internal/api/metrics"
	"github.com/sevakendra/portal-api/internal/core/domain"
	"github.com/sevakendra/portal-api/internal/core/ports"
)

type roleResolver struct {
	profiles ports.ProfileRepository
	log      zerolog.Logger
}

// NewRoleResolver returns a RoleResolver that prefers the stored profile and
// falls back to identity metadata, writing the fallback through to the profile.
func NewRoleResolver(profiles ports.ProfileRepository, log zerolog.Logger) ports.RoleResolver {
	return &roleResolver{profiles: profiles, log: log}
}

func (r *roleResolver) Resolve(ctx context.Context, principal domain.Principal) (domain.Role, error) {
	profile, err := r.profiles.FindByID(ctx, principal.ID)
	switch {
	case err == nil:
		if role := domain.NormalizeRole(string(profile.Role)); role != "" {
			metrics.RoleResolutionsTotal.WithLabelValues("profile").Inc()
			return role, nil
		}
		r.log.Warn().Str("user_id", principal.ID).Str("role", string(profile.Role)).Msg("profile has unknown role, using metadata")
	case errors.Is(err, domain.ErrProfileNotFound):
	default:
		return "", domain.NewStorageError("find profile", err)
	}

	role := domain.NormalizeRole(principal.Metadata.Role)
	if role == "" {
		metrics.RoleResolutionsTotal.WithLabelValues("undetermined").Inc()
		return "", domain.ErrRoleUndetermined
	}

	now := time.Now().UTC()
	syncErr := r.profiles.Upsert(ctx, &domain.Profile{
		ID:        principal.ID,
		Role:      role,
		FullName:  principal.Metadata.FullName,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if syncErr != nil {
		r.log.Warn().Err(syncErr).Str("user_id", principal.ID).Msg("failed to sync profile from metadata")
	}

	metrics.RoleResolutionsTotal.WithLabelValues("metadata").Inc()
	return role, nil
}
