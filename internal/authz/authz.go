// Package authz decides, per request, whether a caller may invoke an operation.
//
// Every route declares a Rule. The decision order is fixed: public rules allow
// without reading the token; everything else needs a valid token; an
// authenticated-only rule then allows; a permission rule needs the exact
// "resource:action" key in the token. A zero Rule is undeclared and is denied
// unless the engine was built to allow undeclared routes.
package authz

import (
	"fmt"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/models"
)

type ruleKind int

const (
	ruleUndeclared ruleKind = iota
	rulePublic
	ruleAuthenticated
	rulePermission
)

// Rule is the authorization requirement attached to one route.
type Rule struct {
	kind     ruleKind
	Resource models.Resource
	Action   models.Action
}

func Public() Rule {
	return Rule{kind: rulePublic}
}

func Authenticated() Rule {
	return Rule{kind: ruleAuthenticated}
}

func Require(resource models.Resource, action models.Action) Rule {
	return Rule{kind: rulePermission, Resource: resource, Action: action}
}

func (r Rule) IsPublic() bool {
	return r.kind == rulePublic
}

// Key is the permission key the rule requires, or "" when it requires none.
func (r Rule) Key() string {
	if r.kind != rulePermission {
		return ""
	}
	return models.PermissionKey(r.Resource, r.Action)
}

func (r Rule) String() string {
	switch r.kind {
	case rulePublic:
		return "public"
	case ruleAuthenticated:
		return "authenticated"
	case rulePermission:
		return r.Key()
	default:
		return "undeclared"
	}
}

type TokenVerifier interface {
	Parse(token string) (*auth.Claims, error)
}

type Engine struct {
	verifier        TokenVerifier
	allowUndeclared bool
}

func NewEngine(verifier TokenVerifier, allowUndeclared bool) *Engine {
	return &Engine{verifier: verifier, allowUndeclared: allowUndeclared}
}

// Authorize returns the verified claims, or nil claims for a public rule.
func (e *Engine) Authorize(rule Rule, token string) (*auth.Claims, error) {
	if rule.kind == rulePublic {
		return nil, nil
	}

	claims, err := e.verifier.Parse(token)
	if err != nil {
		return nil, err
	}

	switch rule.kind {
	case ruleAuthenticated:
		return claims, nil
	case rulePermission:
		if !claims.HasPermission(rule.Key()) {
			return nil, fmt.Errorf("missing permission %s: %w", rule.Key(), apperrors.ErrForbidden)
		}
		return claims, nil
	default:
		if e.allowUndeclared {
			return claims, nil
		}
		return nil, fmt.Errorf("operation has no declared requirement: %w", apperrors.ErrForbidden)
	}
}
