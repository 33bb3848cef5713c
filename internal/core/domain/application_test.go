package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationStatus_CanTransitionTo(t *testing.T) {
	legal := map[[2]ApplicationStatus]bool{
		{StatusSubmitted, StatusInReview}: true,
		{StatusSubmitted, StatusApproved}: true,
		{StatusSubmitted, StatusRejected}: true,
		{StatusInReview, StatusApproved}:  true,
		{StatusInReview, StatusRejected}:  true,
	}
	all := []ApplicationStatus{StatusSubmitted, StatusInReview, StatusApproved, StatusRejected}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]ApplicationStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestApplicationStatus_AllowedTransitions(t *testing.T) {
	assert.Equal(t, []ApplicationStatus{StatusApproved, StatusRejected}, StatusInReview.AllowedTransitions())
	assert.Empty(t, StatusApproved.AllowedTransitions())

	next := StatusSubmitted.AllowedTransitions()
	next[0] = StatusRejected
	assert.True(t, StatusSubmitted.CanTransitionTo(StatusInReview), "returned slice must be a copy")
}

func TestApplicationStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusApproved.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())
	assert.False(t, StatusInReview.IsTerminal())
}

func TestValid(t *testing.T) {
	assert.True(t, StatusInReview.Valid())
	assert.False(t, ApplicationStatus("archived").Valid())
	assert.True(t, ServicePassport.Valid())
	assert.False(t, ServiceType("pan").Valid())
}
