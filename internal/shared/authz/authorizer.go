package authz

import (
	"slices"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/samber/lo"
)

const policyModel = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act
`

// Authorizer answers capability checks for role sets.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer loads the role to capability table into an in-memory enforcer.
func NewAuthorizer() (*Authorizer, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for role, caps := range grants {
		for _, c := range caps {
			if _, err := e.AddPolicy(role.String(), c.String()); err != nil {
				return nil, err
			}
		}
	}

	return &Authorizer{enforcer: e}, nil
}

// Allowed reports whether any of roles grants c.
func (a *Authorizer) Allowed(roles []Role, c Capability) (bool, error) {
	for _, r := range roles {
		ok, err := a.enforcer.Enforce(r.String(), c.String())
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Capabilities returns the sorted union of capabilities granted by roles.
func (a *Authorizer) Capabilities(roles []Role) ([]Capability, error) {
	var out []Capability
	for _, r := range lo.Uniq(roles) {
		policies, err := a.enforcer.GetFilteredPolicy(0, r.String())
		if err != nil {
			return nil, err
		}
		for _, p := range policies {
			out = append(out, Capability(p[1]))
		}
	}

	out = lo.Uniq(out)
	slices.Sort(out)
	return out, nil
}

// ParseRoles converts role names, dropping unknown ones.
func ParseRoles(names []string) []Role {
	return lo.Without(lo.Map(names, func(s string, _ int) Role { return ParseRole(s) }), RoleUnknown)
}

// RoleNames converts roles to their names.
func RoleNames(roles []Role) []string {
	return lo.Map(roles, func(r Role, _ int) string { return r.String() })
}
