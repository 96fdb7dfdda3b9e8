package openapi

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/sciocoder/FastEndpoints/pkg/slug"
)

// Operation is the read-only view of a registered endpoint handed to the
// generator. It carries everything the documentation needs and nothing the
// pipeline uses at request time.
type Operation struct {
	Method      string
	Route       string
	Name        string
	Summary     string
	Description string
	Tags        []string
	RequestType reflect.Type
	Anonymous   bool
	Security    Security
}

// Security lists the declarative authorization requirements of an
// operation as registered, without evaluating them.
type Security struct {
	Roles       []string
	Permissions []string
	Policies    []string
	Claims      []string
}

func (s Security) empty() bool {
	return len(s.Roles) == 0 && len(s.Permissions) == 0 && len(s.Policies) == 0 && len(s.Claims) == 0
}

// Generator builds OpenAPI documents from operations.
type Generator struct {
	title       string
	version     string
	description string
	servers     []Server
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the document title. Defaults to "API".
func WithTitle(title string) Option {
	return func(g *Generator) {
		if title != "" {
			g.title = title
		}
	}
}

// WithVersion sets the documented API version. Defaults to "1.0.0".
func WithVersion(version string) Option {
	return func(g *Generator) {
		if version != "" {
			g.version = version
		}
	}
}

// WithDescription sets the document description. Markdown is allowed; the
// docs page renders it, and OpenAPI viewers do the same.
func WithDescription(description string) Option {
	return func(g *Generator) {
		g.description = description
	}
}

// WithServer adds a base URL the API is reachable at.
func WithServer(url string) Option {
	return func(g *Generator) {
		if url != "" {
			g.servers = append(g.servers, Server{URL: url})
		}
	}
}

// NewGenerator creates a generator with the given options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		title:   "API",
		version: "1.0.0",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Title returns the configured document title.
func (g *Generator) Title() string {
	return g.title
}

// securitySchemeName is the single scheme emitted for authenticated
// operations. The pipeline authenticates bearer tokens, so that is what
// gets documented.
const securitySchemeName = "bearerAuth"

// Names of the shared error payload schemas. They are registered before
// request types so an application type with the same name gets a
// qualified component name instead of clobbering these.
const (
	errorSchemaName      = "ErrorResponse"
	validationSchemaName = "ValidationProblem"
)

// Document builds an OpenAPI 3.0 document from the given operations.
// Output is deterministic: paths, verbs, and component names serialize in
// sorted order regardless of registration order.
func (g *Generator) Document(ops []Operation) (*Document, error) {
	doc := &Document{
		OpenAPI: "3.0.3",
		Info: Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Servers: g.servers,
		Paths:   map[string]PathItem{},
	}

	sb := newSchemaBuilder()
	sb.schemas[errorSchemaName] = errorResponseSchema()
	sb.schemas[validationSchemaName] = validationProblemSchema()

	ids := map[string]int{}
	secured := false
	validated := false

	for _, op := range ops {
		pathKey := routeToPath(op.Route)
		verb := strings.ToLower(op.Method)

		item, ok := doc.Paths[pathKey]
		if !ok {
			item = PathItem{}
			doc.Paths[pathKey] = item
		}
		if _, dup := item[verb]; dup {
			return nil, fmt.Errorf("openapi: %s %s collides with an operation already documented at %s", op.Method, op.Route, pathKey)
		}

		oo := &OperationObject{
			OperationID:         uniqueOperationID(ids, op),
			Summary:             op.Summary,
			Description:         op.Description,
			Tags:                op.Tags,
			Responses:           map[string]Response{},
			RequiredRoles:       op.Security.Roles,
			RequiredPermissions: op.Security.Permissions,
			RequiredPolicies:    op.Security.Policies,
			RequiredClaims:      op.Security.Claims,
		}

		if op.RequestType != nil {
			params, body, err := sb.requestParts(op.RequestType)
			if err != nil {
				return nil, fmt.Errorf("openapi: %s %s: %w", op.Method, op.Route, err)
			}
			oo.Parameters = params
			if body != nil {
				oo.RequestBody = &RequestBody{
					Required: len(body.Required) > 0,
					Content:  map[string]MediaType{"application/json": {Schema: body}},
				}
			}
		}
		declarePathParams(oo, pathKey)

		oo.Responses["200"] = Response{Description: "Success"}
		if op.RequestType != nil {
			validated = true
			oo.Responses["400"] = Response{
				Description: "Request binding or validation failed",
				Content:     map[string]MediaType{"application/json": {Schema: &Schema{Ref: componentRef(validationSchemaName)}}},
			}
		}
		if !op.Anonymous {
			secured = true
			errContent := map[string]MediaType{"application/json": {Schema: &Schema{Ref: componentRef(errorSchemaName)}}}
			oo.Security = []SecurityRequirement{{securitySchemeName: {}}}
			oo.Responses["401"] = Response{Description: "Authentication required", Content: errContent}
			if !op.Security.empty() {
				oo.Responses["403"] = Response{Description: "Authorization failed", Content: errContent}
			}
		}

		item[verb] = oo
	}

	if !validated {
		delete(sb.schemas, validationSchemaName)
	}
	if !secured {
		delete(sb.schemas, errorSchemaName)
	}

	components := &Components{}
	if len(sb.schemas) > 0 {
		components.Schemas = sb.schemas
	}
	if secured {
		components.SecuritySchemes = map[string]SecurityScheme{
			securitySchemeName: {
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
			},
		}
	}
	if components.Schemas != nil || components.SecuritySchemes != nil {
		doc.Components = components
	}

	return doc, nil
}

// routeToPath converts a route template to OpenAPI path syntax. Named
// parameters already share the {name} form; a trailing wildcard becomes a
// {wildcard} path parameter since OpenAPI has no catch-all notation.
func routeToPath(route string) string {
	if !strings.HasSuffix(route, "*") {
		return route
	}
	return strings.TrimSuffix(route, "*") + "{wildcard}"
}

// declarePathParams appends path parameters present in the template that
// the request model did not declare. OpenAPI requires every {name} in the
// path to have a matching parameter object.
func declarePathParams(oo *OperationObject, pathKey string) {
	for _, seg := range strings.Split(pathKey, "/") {
		if len(seg) < 2 || seg[0] != '{' || seg[len(seg)-1] != '}' {
			continue
		}
		name := seg[1 : len(seg)-1]
		declared := false
		for _, p := range oo.Parameters {
			if p.In == "path" && p.Name == name {
				declared = true
				break
			}
		}
		if declared {
			continue
		}
		p := Parameter{Name: name, In: "path", Required: true, Schema: &Schema{Type: "string"}}
		if name == "wildcard" {
			p.Description = "Remaining request path"
		}
		oo.Parameters = append(oo.Parameters, p)
	}
}

// uniqueOperationID derives a slug from the operation name, numbering
// repeats so every operationId in the document stays unique.
func uniqueOperationID(seen map[string]int, op Operation) string {
	id := slug.Make(op.Name)
	if id == "" {
		id = slug.Make(op.Method + " " + op.Route)
	}
	if id == "" {
		id = "operation"
	}
	seen[id]++
	if n := seen[id]; n > 1 {
		return id + "-" + strconv.Itoa(n)
	}
	return id
}

// errorResponseSchema mirrors the JSON error payload the pipeline renders
// for status-coded failures.
func errorResponseSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"error":      {Type: "string"},
			"code":       {Type: "string"},
			"detail":     {Type: "string"},
			"request_id": {Type: "string"},
		},
		Required: []string{"error"},
	}
}

// validationProblemSchema mirrors the 400 payload: a summary message plus
// the ordered field failures.
func validationProblemSchema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]*Schema{
			"error": {Type: "string"},
			"errors": {
				Type: "array",
				Items: &Schema{
					Type: "object",
					Properties: map[string]*Schema{
						"field":   {Type: "string"},
						"message": {Type: "string"},
					},
					Required: []string{"field", "message"},
				},
			},
		},
		Required: []string{"error", "errors"},
	}
}
