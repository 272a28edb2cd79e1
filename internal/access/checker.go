package access

import (
	"CareerConnect/internal/apperr"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Objects and actions checked by the services.
const (
	ObjApplication  = "application"
	ObjJob          = "job"
	ObjNotification = "notification"
	ObjProfile      = "profile"
	ObjUser         = "user"
	ObjStats        = "stats"

	ActSubmit       = "submit"
	ActListOwn      = "list_own"
	ActListForJob   = "list_for_job"
	ActUpdateStatus = "update_status"
	ActCreate       = "create"
	ActUpdate       = "update"
	ActDelete       = "delete"
	ActRead         = "read"
	ActReadAdmin    = "read_admin"
	ActReadOwn      = "read_own"
	ActMarkRead     = "mark_read"
	ActList         = "list"
	ActApprove      = "approve"
	ActBlock        = "block"
)

// every authenticated role inherits the "member" policies.
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var defaultPolicies = [][]string{
	{string(RoleStudent), ObjApplication, ActSubmit},
	{string(RoleStudent), ObjApplication, ActListOwn},
	{string(RoleStudent), ObjStats, ActReadOwn},

	{string(RoleRecruiter), ObjJob, ActCreate},
	{string(RoleRecruiter), ObjJob, ActUpdate},
	{string(RoleRecruiter), ObjJob, ActDelete},
	{string(RoleRecruiter), ObjJob, ActListOwn},
	{string(RoleRecruiter), ObjApplication, ActListForJob},
	{string(RoleRecruiter), ObjApplication, ActUpdateStatus},
	{string(RoleRecruiter), ObjStats, ActReadOwn},

	{string(RoleAdmin), ObjStats, ActReadAdmin},
	{string(RoleAdmin), ObjUser, ActList},
	{string(RoleAdmin), ObjUser, ActBlock},
	{string(RoleAdmin), ObjProfile, ActApprove},

	{"member", ObjNotification, ActRead},
	{"member", ObjNotification, ActMarkRead},
	{"member", ObjProfile, ActRead},
	{"member", ObjProfile, ActUpdate},
	{"member", ObjUser, ActRead},
	{"member", ObjUser, ActUpdate},
}

var defaultGroups = [][]string{
	{string(RoleStudent), "member"},
	{string(RoleRecruiter), "member"},
	{string(RoleAdmin), "member"},
}

// OwnerPredicate is an ownership check evaluated after the role policy allows.
type OwnerPredicate func(Identity) bool

// Owns allows only the identity whose id equals owner.
func Owns(owner primitive.ObjectID) OwnerPredicate {
	return func(id Identity) bool {
		return !owner.IsZero() && id.ID == owner
	}
}

// Checker is the single capability check applied before each operation.
type Checker struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewChecker(logger *zap.Logger) (*Checker, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, err
	}
	if _, err := enforcer.AddGroupingPolicies(defaultGroups); err != nil {
		return nil, err
	}
	logger.Debug("casbin enforcer ready", zap.Int("policies", len(defaultPolicies)))
	return &Checker{enforcer: enforcer, logger: logger}, nil
}

// Require allows the call only if the role policy grants (obj, act) and every predicate holds.
func (c *Checker) Require(id Identity, obj, act string, owns ...OwnerPredicate) error {
	if id.Anonymous() {
		return apperr.Unauthorized("Not authenticated")
	}
	allowed, err := c.enforcer.Enforce(string(id.Role), obj, act)
	if err != nil {
		return apperr.Internal(err)
	}
	if !allowed {
		c.logger.Debug("casbin denied",
			zap.String("role", string(id.Role)), zap.String("obj", obj), zap.String("act", act))
		return apperr.Forbidden("Forbidden: insufficient permissions")
	}
	for _, owned := range owns {
		if !owned(id) {
			return apperr.Forbidden("Not authorized to access this " + obj)
		}
	}
	return nil
}
