package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sevakendra/portal-api/internal/core/domain"
)

func TestRoleResolver_ProfileWins(t *testing.T) {
	profiles := newStubProfileRepo()
	profiles.profiles["u1"] = &domain.Profile{ID: "u1", Role: domain.RoleServiceProvider}
	r := NewRoleResolver(profiles, zerolog.Nop())

	role, err := r.Resolve(context.Background(), domain.Principal{ID: "u1", Metadata: domain.Metadata{Role: "citizen"}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if role != domain.RoleServiceProvider {
		t.Errorf("role = %q, want service_provider", role)
	}
	if profiles.upserts != 0 {
		t.Errorf("expected no write-through, got %d upserts", profiles.upserts)
	}
}

func TestRoleResolver_MetadataFallbackWritesThrough(t *testing.T) {
	profiles := newStubProfileRepo()
	r := NewRoleResolver(profiles, zerolog.Nop())
	p := domain.Principal{ID: "u1", Metadata: domain.Metadata{Role: "service_provider", FullName: "Ward Officer"}}

	for i := 0; i < 2; i++ {
		role, err := r.Resolve(context.Background(), p)
		if err != nil {
			t.Fatalf("call %d: Resolve returned error: %v", i, err)
		}
		if role != domain.RoleServiceProvider {
			t.Fatalf("call %d: role = %q", i, role)
		}
	}

	created := profiles.profiles["u1"]
	if created == nil || created.Role != domain.RoleServiceProvider || created.FullName != "Ward Officer" {
		t.Fatalf("expected provider profile, got %+v", created)
	}
	if len(profiles.profiles) != 1 || profiles.upserts != 1 {
		t.Errorf("expected exactly one profile written once, got %d profiles / %d upserts", len(profiles.profiles), profiles.upserts)
	}
}

func TestRoleResolver_AdminNormalised(t *testing.T) {
	profiles := newStubProfileRepo()
	profiles.profiles["u1"] = &domain.Profile{ID: "u1", Role: "admin"}
	r := NewRoleResolver(profiles, zerolog.Nop())

	role, err := r.Resolve(context.Background(), domain.Principal{ID: "u1"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if role != domain.RoleServiceProvider {
		t.Errorf("role = %q, want service_provider", role)
	}

	role, _ = r.Resolve(context.Background(), domain.Principal{ID: "u2", Metadata: domain.Metadata{Role: "ADMIN"}})
	if role != domain.RoleServiceProvider {
		t.Errorf("metadata admin: role = %q, want service_provider", role)
	}
}

func TestRoleResolver_Undetermined(t *testing.T) {
	r := NewRoleResolver(newStubProfileRepo(), zerolog.Nop())

	role, err := r.Resolve(context.Background(), domain.Principal{ID: "u1"})
	if !errors.Is(err, domain.ErrRoleUndetermined) {
		t.Fatalf("expected ErrRoleUndetermined, got %v", err)
	}
	if role != "" {
		t.Errorf("expected empty role, got %q", role)
	}
}

func TestRoleResolver_ProfileStoreFailure(t *testing.T) {
	profiles := newStubProfileRepo()
	cause := errors.New("mongo unreachable")
	profiles.findErr = cause
	r := NewRoleResolver(profiles, zerolog.Nop())

	_, err := r.Resolve(context.Background(), domain.Principal{ID: "u1", Metadata: domain.Metadata{Role: "citizen"}})
	var se *domain.StorageError
	if !errors.As(err, &se) || !errors.Is(err, cause) {
		t.Fatalf("expected storage error wrapping cause, got %v", err)
	}
	if profiles.upserts != 0 {
		t.Error("expected no fallback write on store failure")
	}
}

func TestRoleResolver_SyncFailureDoesNotFail(t *testing.T) {
	profiles := newStubProfileRepo()
	profiles.upsertErr = errors.New("write refused")
	r := NewRoleResolver(profiles, zerolog.Nop())

	role, err := r.Resolve(context.Background(), domain.Principal{ID: "u1", Metadata: domain.Metadata{Role: "citizen"}})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if role != domain.RoleCitizen {
		t.Errorf("role = %q, want citizen", role)
	}
}
