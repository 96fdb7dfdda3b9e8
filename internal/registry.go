package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrRegistrySealed is returned when registering an endpoint after the
// route table has been sealed. Registration is a startup-only
// operation; the table is read-only once the application serves
// traffic.
var ErrRegistrySealed = errors.New("endpoint registry is sealed")

// DuplicateRouteError reports a second registration for a
// (normalized route, verb) pair. Exactly one definition may own a
// pair; this is a startup-time fatal condition.
type DuplicateRouteError struct {
	Method   string
	Route    string
	Existing string
	Incoming string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("duplicate route %s %s: %q conflicts with already registered %q",
		e.Method, e.Route, e.Incoming, e.Existing)
}

// RouteNotFoundError reports that no registered route template matches
// the request path under any verb.
type RouteNotFoundError struct {
	Path string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route matches path %q", e.Path)
}

// MethodNotAllowedError reports that the path matches a registered
// route template, but not under the requested verb. Allowed lists the
// verbs the template is registered for, sorted for determinism.
type MethodNotAllowedError struct {
	Path    string
	Method  string
	Allowed []string
}

func (e *MethodNotAllowedError) Error() string {
	return fmt.Sprintf("method %s not allowed for path %q (allowed: %s)",
		e.Method, e.Path, strings.Join(e.Allowed, ", "))
}

type segmentKind uint8

const (
	segmentStatic segmentKind = iota
	segmentParam
	segmentWildcard
)

// segment is one slash-delimited element of a route template.
type segment struct {
	literal string
	name    string
	kind    segmentKind
}

// routeEntry groups all verbs registered under one route shape.
// Templates that differ only in parameter names (e.g. /users/{id} and
// /users/{userID}) share an entry; they match the same paths.
type routeEntry struct {
	route    string
	segments []segment
	methods  map[string]*Definition
}

func (e *routeEntry) allowedMethods() []string {
	allowed := make([]string, 0, len(e.methods))
	for m := range e.methods {
		allowed = append(allowed, m)
	}
	sort.Strings(allowed)
	return allowed
}

// Registry holds the route table keyed by (normalized route, verb).
// It is populated during startup and sealed before the application
// serves traffic, after which it is safe for unsynchronized concurrent
// reads.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*routeEntry
	sealed  bool
}

// NewRegistry creates an empty endpoint registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*routeEntry)}
}

// Register adds a definition to the route table. It fails with a
// DuplicateRouteError when the (normalized route, verb) pair is
// already taken, and with ErrRegistrySealed after Seal.
func (reg *Registry) Register(def *Definition) error {
	if err := def.validate(); err != nil {
		return err
	}

	route := normalizeRoute(def.route)
	segments, err := parseRoute(route)
	if err != nil {
		return fmt.Errorf("endpoint %q: %w", def.Name(), err)
	}
	def.route = route

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.sealed {
		return ErrRegistrySealed
	}

	key := shapeKey(segments)
	entry, ok := reg.entries[key]
	if !ok {
		entry = &routeEntry{route: route, segments: segments, methods: make(map[string]*Definition)}
		reg.entries[key] = entry
	}
	if existing, taken := entry.methods[def.method]; taken {
		return &DuplicateRouteError{
			Method:   def.method,
			Route:    entry.route,
			Existing: existing.Name(),
			Incoming: def.Name(),
		}
	}
	entry.methods[def.method] = def
	return nil
}

// Seal marks the registry read-only. Further Register calls fail.
func (reg *Registry) Seal() {
	reg.mu.Lock()
	reg.sealed = true
	reg.mu.Unlock()
}

// Resolve returns the definition matching the request path and verb.
// When no template matches the path it returns a RouteNotFoundError;
// when a template matches but not under the requested verb it returns
// a MethodNotAllowedError carrying the allowed verbs.
//
// When several templates match the same path, the one with the longest
// static prefix wins: walking segments left to right, a static segment
// beats a parameter, and a parameter beats a wildcard, at the first
// position where the templates differ. So /users/me is preferred over
// /users/{id} for a request to /users/me.
func (reg *Registry) Resolve(path, method string) (*Definition, error) {
	parts := splitPath(normalizeRoute(path))

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	var best *routeEntry
	for _, entry := range reg.entries {
		if !matchSegments(entry.segments, parts) {
			continue
		}
		if best == nil || moreSpecific(entry.segments, best.segments) {
			best = entry
		}
	}
	if best == nil {
		return nil, &RouteNotFoundError{Path: path}
	}
	def, ok := best.methods[method]
	if !ok {
		return nil, &MethodNotAllowedError{Path: path, Method: method, Allowed: best.allowedMethods()}
	}
	return def, nil
}

// Definitions returns every registered definition sorted by route
// template, then verb. The order is deterministic so diagnostic output
// and generated documentation are reproducible.
func (reg *Registry) Definitions() []*Definition {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	defs := make([]*Definition, 0, len(reg.entries))
	for _, entry := range reg.entries {
		for _, def := range entry.methods {
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].route != defs[j].route {
			return defs[i].route < defs[j].route
		}
		return defs[i].method < defs[j].method
	})
	return defs
}

// normalizeRoute ensures a leading slash and strips a trailing slash,
// so /orders and /orders/ register and resolve as the same route.
func normalizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
		if route == "" {
			route = "/"
		}
	}
	return route
}

// parseRoute splits a template into segments. Parameters use chi's
// {name} syntax (an optional :regexp suffix is tolerated and ignored
// for matching). A bare * may appear as the final segment only.
func parseRoute(route string) ([]segment, error) {
	parts := splitPath(route)
	segments := make([]segment, 0, len(parts))
	for i, part := range parts {
		switch {
		case part == "*":
			if i != len(parts)-1 {
				return nil, fmt.Errorf("route %q: wildcard must be the final segment", route)
			}
			segments = append(segments, segment{kind: segmentWildcard, literal: "*"})
		case strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}"):
			name := part[1 : len(part)-1]
			if idx := strings.Index(name, ":"); idx >= 0 {
				name = name[:idx]
			}
			if name == "" {
				return nil, fmt.Errorf("route %q: parameter segment %q has no name", route, part)
			}
			segments = append(segments, segment{kind: segmentParam, name: name, literal: part})
		case strings.ContainsAny(part, "{}"):
			return nil, fmt.Errorf("route %q: malformed segment %q", route, part)
		default:
			segments = append(segments, segment{kind: segmentStatic, literal: part})
		}
	}
	return segments, nil
}

// shapeKey is the duplicate-detection key: parameter names are erased
// so templates that match the same paths collide.
func shapeKey(segments []segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		switch s.kind {
		case segmentStatic:
			b.WriteString(s.literal)
		case segmentParam:
			b.WriteString("{}")
		case segmentWildcard:
			b.WriteByte('*')
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// matchSegments reports whether a concrete request path matches the
// template. Parameters match any single non-empty segment; a trailing
// wildcard matches the rest of the path, including nothing.
func matchSegments(segments []segment, parts []string) bool {
	for i, s := range segments {
		if s.kind == segmentWildcard {
			return true
		}
		if i >= len(parts) {
			return false
		}
		switch s.kind {
		case segmentStatic:
			if s.literal != parts[i] {
				return false
			}
		case segmentParam:
			if parts[i] == "" {
				return false
			}
		}
	}
	return len(segments) == len(parts)
}

// moreSpecific reports whether template a should win over template b
// for a path both match. Static beats parameter beats wildcard at the
// first differing position; templates identical in shape cannot both
// exist (shapeKey collides), so the walk always decides.
func moreSpecific(a, b []segment) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i].kind != b[i].kind {
			return a[i].kind < b[i].kind
		}
		if a[i].kind == segmentStatic && a[i].literal != b[i].literal {
			// Both match the path, so differing literals cannot
			// happen; keep the comparison total regardless.
			return a[i].literal < b[i].literal
		}
	}
	// A longer template is more specific than a shorter one ending in
	// a wildcard.
	return len(a) > len(b)
}
