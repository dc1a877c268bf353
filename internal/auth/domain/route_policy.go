package domain

import (
	"fmt"
	"path"
	"slices"
	"sort"
	"strings"

	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
)

// Access is the kind of requirement a route policy entry imposes.
type Access string

const (
	// AccessPublic always allows the request.
	AccessPublic Access = "public"

	// AccessAuthenticated allows any established principal.
	AccessAuthenticated Access = "authenticated"

	// AccessCapability allows principals holding the entry's capability.
	AccessCapability Access = "capability"
)

// RouteRule maps a request path pattern to its access requirement.
//
// Pattern syntax:
//   - "*" matches every path
//   - "/api/v1/auth/*" matches any path below "/api/v1/auth/" (greedy)
//   - "/api/v1/auth/**" matches "/api/v1/auth" itself and any path below it
//   - "/api/v1/*/index" matches exactly one segment in place of the "*"
type RouteRule struct {
	Pattern    string                    `yaml:"pattern"`
	Methods    []string                  `yaml:"methods,omitempty"`
	Access     Access                    `yaml:"access"`
	Capability identityDomain.Capability `yaml:"capability,omitempty"`
	Exact      bool                      `yaml:"exact,omitempty"`
}

// Decision is the outcome of a route authorization.
type Decision struct {
	Allowed bool
	// Reason is ErrUnauthenticated, ErrForbidden or ErrNoRouteMatch when denied.
	Reason error
	// Rule is the entry that decided, nil when nothing matched.
	Rule *RouteRule
}

// Err returns nil for an allow and the denial reason otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason
}

// RoutePolicy is an immutable, ordered route table evaluated first-match-wins.
// It is safe for concurrent use.
type RoutePolicy struct {
	rules []RouteRule
}

// NewRoutePolicy validates rules and orders them most-specific-first.
// Rules of equal specificity keep their declaration order.
func NewRoutePolicy(rules []RouteRule) (*RoutePolicy, error) {
	normalized := make([]RouteRule, 0, len(rules))
	for i, rule := range rules {
		r, err := normalizeRule(rule)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %s", ErrInvalidRoutePolicy, i, err.Error())
		}
		normalized = append(normalized, r)
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return moreSpecific(normalized[i], normalized[j])
	})

	return &RoutePolicy{rules: normalized}, nil
}

// DefaultRoutePolicy returns the built-in route table.
func DefaultRoutePolicy() *RoutePolicy {
	policy, err := NewRoutePolicy(DefaultRouteRules())
	if err != nil {
		panic(err)
	}
	return policy
}

// DefaultRouteRules returns the entries of the built-in route table.
func DefaultRouteRules() []RouteRule {
	return []RouteRule{
		{Pattern: "/api/v1/auth/me", Access: AccessAuthenticated},
		{Pattern: "/api/v1/auth/**", Access: AccessPublic},
		{Pattern: "/api/v1/greeting-controller/**", Access: AccessPublic},
		{
			Pattern:    "/api/v1/demo-controller/with-auth",
			Access:     AccessCapability,
			Capability: identityDomain.CapabilityUser,
		},
		{
			Pattern:    "/api/v1/index-controller/**",
			Access:     AccessCapability,
			Capability: identityDomain.CapabilityUser,
		},
		{Pattern: "/api/v1/demo-controller/**", Access: AccessPublic},
		{
			Pattern:    "/api/v1/admin/**",
			Access:     AccessCapability,
			Capability: identityDomain.CapabilityAdmin,
		},
		{Pattern: "/logout", Methods: []string{"POST"}, Access: AccessPublic},
	}
}

// Rules returns a copy of the ordered entries.
func (p *RoutePolicy) Rules() []RouteRule {
	return slices.Clone(p.rules)
}

// Authorize decides whether principal may call method on route. A nil principal means the
// request is unauthenticated. Paths are cleaned before matching.
func (p *RoutePolicy) Authorize(route, method string, principal *Principal) Decision {
	if route == "" {
		route = "/"
	}
	route = path.Clean(route)
	method = strings.ToUpper(method)

	for i := range p.rules {
		rule := &p.rules[i]
		if !rule.matchesMethod(method) || !matchPath(rule.Pattern, route) {
			continue
		}

		switch rule.Access {
		case AccessPublic:
			return Decision{Allowed: true, Rule: rule}
		case AccessAuthenticated:
			if principal == nil {
				return Decision{Reason: ErrUnauthenticated, Rule: rule}
			}
			return Decision{Allowed: true, Rule: rule}
		default:
			if principal == nil {
				return Decision{Reason: ErrUnauthenticated, Rule: rule}
			}
			if !principal.Capability.Satisfies(rule.Capability, rule.Exact) {
				return Decision{Reason: ErrForbidden, Rule: rule}
			}
			return Decision{Allowed: true, Rule: rule}
		}
	}

	return Decision{Reason: ErrNoRouteMatch}
}

func (r *RouteRule) matchesMethod(method string) bool {
	return len(r.Methods) == 0 || slices.Contains(r.Methods, method)
}

func normalizeRule(rule RouteRule) (RouteRule, error) {
	rule.Pattern = strings.TrimSpace(rule.Pattern)
	if rule.Pattern == "" {
		return rule, fmt.Errorf("pattern is required")
	}
	if rule.Pattern != "*" && !strings.HasPrefix(rule.Pattern, "/") {
		return rule, fmt.Errorf("pattern %q must start with /", rule.Pattern)
	}

	methods := make([]string, 0, len(rule.Methods))
	for _, m := range rule.Methods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m == "" {
			return rule, fmt.Errorf("pattern %q has an empty method", rule.Pattern)
		}
		methods = append(methods, m)
	}
	rule.Methods = methods

	switch rule.Access {
	case AccessPublic, AccessAuthenticated:
		rule.Capability = ""
		rule.Exact = false
	case AccessCapability:
		capability, err := identityDomain.ParseCapability(string(rule.Capability))
		if err != nil || rule.Capability == "" {
			return rule, fmt.Errorf("pattern %q needs a valid capability", rule.Pattern)
		}
		rule.Capability = capability
	default:
		return rule, fmt.Errorf("pattern %q has unknown access %q", rule.Pattern, rule.Access)
	}

	return rule, nil
}

// specificity ranks a pattern: exact paths first, then single-segment wildcards,
// then greedy prefixes, then the catch-all. Literal segment count breaks ties.
func specificity(pattern string) (class int, literals int) {
	if pattern == "*" {
		return 0, 0
	}
	for _, segment := range strings.Split(pattern, "/") {
		if segment != "" && segment != "*" && segment != "**" {
			literals++
		}
	}
	switch {
	case strings.HasSuffix(pattern, "/*"), strings.HasSuffix(pattern, "/**"):
		return 1, literals
	case strings.Contains(pattern, "*"):
		return 2, literals
	default:
		return 3, literals
	}
}

func moreSpecific(a, b RouteRule) bool {
	aClass, aLiterals := specificity(a.Pattern)
	bClass, bLiterals := specificity(b.Pattern)
	if aClass != bClass {
		return aClass > bClass
	}
	if aLiterals != bLiterals {
		return aLiterals > bLiterals
	}
	return len(a.Methods) > 0 && len(b.Methods) == 0
}

// matchPath checks if the request path matches the route pattern.
func matchPath(pattern, requestPath string) bool {
	// Special case: full wildcard matches everything
	if pattern == "*" {
		return true
	}

	// No wildcard: exact match required
	if !strings.Contains(pattern, "*") {
		return pattern == requestPath
	}

	// Double-star suffix: the prefix itself or anything below it
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		return requestPath == prefix || strings.HasPrefix(requestPath, prefix+"/")
	}

	// Trailing wildcard (/*): prefix match (greedy - matches remaining path)
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		return strings.HasPrefix(requestPath, prefix+"/")
	}

	// Mid-path wildcards: each * matches exactly one segment
	patternParts := strings.Split(pattern, "/")
	requestParts := strings.Split(requestPath, "/")
	if len(patternParts) != len(requestParts) {
		return false
	}

	for i := range patternParts {
		if patternParts[i] == "*" {
			if requestParts[i] == "" {
				return false
			}
			continue
		}
		if patternParts[i] != requestParts[i] {
			return false
		}
	}

	return true
}
