package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevakendra/portal-api/internal/core/domain"
)

func TestState_StartsPending(t *testing.T) {
	s := New()
	assert.True(t, s.Current().Loading)
	assert.Equal(t, domain.DecisionPending, s.Decide(false))
	assert.Equal(t, domain.DecisionPending, s.Decide(true))
}

func TestState_DecisionsFollowChanges(t *testing.T) {
	s := New()
	citizen := &domain.Principal{ID: "u1", Email: "sita@example.com"}

	s.Set(citizen, domain.RoleCitizen)
	assert.Equal(t, domain.DecisionAllow, s.Decide(false))
	assert.Equal(t, domain.DecisionRedirectCitizenDashboard, s.Decide(true))

	s.Set(citizen, domain.RoleServiceProvider)
	assert.Equal(t, domain.DecisionAllow, s.Decide(true))

	s.Set(nil, domain.RoleServiceProvider)
	assert.Equal(t, domain.DecisionRedirectHome, s.Decide(true))
	assert.Empty(t, s.Current().Role)
}

func TestState_UndeterminedRoleIsNotProvider(t *testing.T) {
	s := New()
	s.Set(&domain.Principal{ID: "u1"}, "")
	assert.Equal(t, domain.DecisionAllow, s.Decide(false))
	assert.Equal(t, domain.DecisionRedirectCitizenDashboard, s.Decide(true))
}

func TestState_SubscribeAndUnsubscribe(t *testing.T) {
	s := New()
	var seen []Snapshot
	unsubscribe := s.Subscribe(func(snap Snapshot) { seen = append(seen, snap) })

	s.Set(&domain.Principal{ID: "u1"}, domain.RoleCitizen)
	s.Reset()
	require.Len(t, seen, 2)
	assert.False(t, seen[0].Loading)
	assert.Equal(t, domain.RoleCitizen, seen[0].Role)
	assert.True(t, seen[1].Loading)

	unsubscribe()
	unsubscribe()
	s.Set(nil, "")
	assert.Len(t, seen, 2)
}
