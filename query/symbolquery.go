package query

import "github.com/avkit/avpolicy/policy"

// TypeQuery filters the type/attribute store by name (spec §4.5: type
// and attribute are themselves query kinds, sharing the builder skeleton).
type TypeQuery struct {
	pattern     string
	regex       bool
	attrsOnly   bool
	concreteOnly bool
}

func NewTypeQuery() *TypeQuery { return &TypeQuery{} }

func (q *TypeQuery) SetName(pattern string, regex bool) *TypeQuery {
	q.pattern = pattern
	q.regex = regex
	return q
}
func (q *TypeQuery) SetAttributesOnly(v bool) *TypeQuery { q.attrsOnly = v; return q }
func (q *TypeQuery) SetConcreteOnly(v bool) *TypeQuery   { q.concreteOnly = v; return q }

func (q *TypeQuery) Run(p *policy.Policy) ([]policy.TypeID, error) {
	cache := newRegexCache()
	var re matcher
	if q.pattern != "" {
		var err error
		re, err = compileMatcher(cache, q.pattern, q.regex)
		if err != nil {
			return nil, err
		}
	}
	var candidates []policy.Type
	switch {
	case q.attrsOnly:
		candidates = p.Attributes()
	case q.concreteOnly:
		candidates = p.ConcreteTypes()
	default:
		candidates = p.Types()
	}
	var out []policy.TypeID
	for _, t := range candidates {
		if re != nil && !re(t.Name) {
			continue
		}
		out = append(out, t.ID)
	}
	return out, nil
}

// RoleQuery filters the role store by name.
type RoleQuery struct {
	pattern string
	regex   bool
}

func NewRoleQuery() *RoleQuery { return &RoleQuery{} }
func (q *RoleQuery) SetName(pattern string, regex bool) *RoleQuery {
	q.pattern = pattern
	q.regex = regex
	return q
}

func (q *RoleQuery) Run(p *policy.Policy) ([]policy.RoleID, error) {
	cache := newRegexCache()
	re, err := optionalMatcher(cache, q.pattern, q.regex)
	if err != nil {
		return nil, err
	}
	var out []policy.RoleID
	for _, r := range p.Roles() {
		if re != nil && !re(r.Name) {
			continue
		}
		out = append(out, r.ID)
	}
	return out, nil
}

// UserQuery filters the user store by name.
type UserQuery struct {
	pattern string
	regex   bool
}

func NewUserQuery() *UserQuery { return &UserQuery{} }
func (q *UserQuery) SetName(pattern string, regex bool) *UserQuery {
	q.pattern = pattern
	q.regex = regex
	return q
}

func (q *UserQuery) Run(p *policy.Policy) ([]policy.UserID, error) {
	cache := newRegexCache()
	re, err := optionalMatcher(cache, q.pattern, q.regex)
	if err != nil {
		return nil, err
	}
	var out []policy.UserID
	for _, u := range p.Users() {
		if re != nil && !re(u.Name) {
			continue
		}
		out = append(out, u.ID)
	}
	return out, nil
}

// ClassQuery filters the object class store by name.
type ClassQuery struct {
	pattern string
	regex   bool
}

func NewClassQuery() *ClassQuery { return &ClassQuery{} }
func (q *ClassQuery) SetName(pattern string, regex bool) *ClassQuery {
	q.pattern = pattern
	q.regex = regex
	return q
}

func (q *ClassQuery) Run(p *policy.Policy) ([]policy.ClassID, error) {
	cache := newRegexCache()
	re, err := optionalMatcher(cache, q.pattern, q.regex)
	if err != nil {
		return nil, err
	}
	var out []policy.ClassID
	for _, c := range p.Classes() {
		if re != nil && !re(c.Name) {
			continue
		}
		out = append(out, c.ID)
	}
	return out, nil
}

type matcher func(string) bool

func compileMatcher(cache *regexCache, pattern string, regex bool) (matcher, error) {
	if !regex {
		return func(s string) bool { return s == pattern }, nil
	}
	re, err := cache.compile(pattern)
	if err != nil {
		return nil, err
	}
	return re.MatchString, nil
}

func optionalMatcher(cache *regexCache, pattern string, regex bool) (matcher, error) {
	if pattern == "" {
		return nil, nil
	}
	return compileMatcher(cache, pattern, regex)
}
