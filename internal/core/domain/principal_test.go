package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRole(t *testing.T) {
	assert.Equal(t, RoleCitizen, NormalizeRole("citizen"))
	assert.Equal(t, RoleServiceProvider, NormalizeRole("service_provider"))
	assert.Equal(t, RoleServiceProvider, NormalizeRole(" Admin "))
	assert.Equal(t, Role(""), NormalizeRole("superuser"))
	assert.Equal(t, Role(""), NormalizeRole(""))
}

func TestUser_Principal(t *testing.T) {
	u := &User{ID: "u1", Email: "ram@example.com", Metadata: Metadata{Role: "citizen", FullName: "Ram"}}
	p := u.Principal()

	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "Ram", p.FullName)
	assert.Equal(t, "citizen", p.Metadata.Role)
	assert.Empty(t, p.Role, "role is filled in by the resolver")
}

func TestNewStorageError(t *testing.T) {
	assert.NoError(t, NewStorageError("op", nil))

	cause := errors.New("connection reset")
	err := NewStorageError("insert application", cause)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert application", se.Op)
	assert.ErrorIs(t, err, cause)

	assert.Same(t, err, NewStorageError("outer", err), "already wrapped errors are returned as is")

	notFound := fmt.Errorf("find: %w", ErrApplicationNotFound)
	assert.Equal(t, notFound, NewStorageError("find", notFound))
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("email", "is required")
	assert.EqualError(t, err, "email is required")
}
