package access

import (
	"testing"

	"CareerConnect/internal/apperr"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newChecker(t *testing.T) *Checker {
	c, err := NewChecker(zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestRequireRolePolicy(t *testing.T) {
	c := newChecker(t)
	student := Identity{ID: primitive.NewObjectID(), Role: RoleStudent}
	recruiter := Identity{ID: primitive.NewObjectID(), Role: RoleRecruiter}
	admin := Identity{ID: primitive.NewObjectID(), Role: RoleAdmin}

	require.NoError(t, c.Require(student, ObjApplication, ActSubmit))
	require.True(t, apperr.Is(c.Require(recruiter, ObjApplication, ActSubmit), apperr.KindForbidden))
	require.NoError(t, c.Require(recruiter, ObjJob, ActCreate))
	require.True(t, apperr.Is(c.Require(student, ObjJob, ActCreate), apperr.KindForbidden))
	require.NoError(t, c.Require(admin, ObjStats, ActReadAdmin))
	require.True(t, apperr.Is(c.Require(recruiter, ObjStats, ActReadAdmin), apperr.KindForbidden))
}

func TestRequireMemberInheritance(t *testing.T) {
	c := newChecker(t)
	for _, role := range []Role{RoleStudent, RoleRecruiter, RoleAdmin} {
		id := Identity{ID: primitive.NewObjectID(), Role: role}
		require.NoError(t, c.Require(id, ObjNotification, ActRead), role)
		require.NoError(t, c.Require(id, ObjNotification, ActMarkRead), role)
	}
}

func TestRequireAnonymous(t *testing.T) {
	c := newChecker(t)
	err := c.Require(Identity{}, ObjNotification, ActRead)
	require.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestRequireOwnership(t *testing.T) {
	c := newChecker(t)
	owner := Identity{ID: primitive.NewObjectID(), Role: RoleRecruiter}
	other := Identity{ID: primitive.NewObjectID(), Role: RoleRecruiter}

	require.NoError(t, c.Require(owner, ObjJob, ActUpdate, Owns(owner.ID)))
	err := c.Require(other, ObjJob, ActUpdate, Owns(owner.ID))
	require.True(t, apperr.Is(err, apperr.KindForbidden))
	require.False(t, Owns(primitive.NilObjectID)(owner))
}
