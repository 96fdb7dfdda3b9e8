package openapi

import (
	"bytes"
	"encoding/json"
	"html/template"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"github.com/sciocoder/FastEndpoints/pkg/sanitizer"
)

// SpecHandler serves the document as JSON, or as YAML when the client
// asks for it with ?format=yaml or an Accept header naming yaml. The
// document is encoded once on first request and cached; it cannot change
// after startup.
func SpecHandler(doc *Document) http.HandlerFunc {
	var (
		once     sync.Once
		jsonBody []byte
		yamlBody []byte
		encErr   error
	)
	encode := func() {
		jsonBody, encErr = json.MarshalIndent(doc, "", "  ")
		if encErr != nil {
			return
		}
		yamlBody, encErr = yaml.Marshal(doc)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		once.Do(encode)
		if encErr != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if wantsYAML(r) {
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write(yamlBody)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(jsonBody)
	}
}

func wantsYAML(r *http.Request) bool {
	switch r.URL.Query().Get("format") {
	case "yaml", "yml":
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "yaml")
}

// UIHandler serves a server-rendered reference page for the document.
// Operation descriptions are treated as markdown, converted to HTML, and
// sanitized before embedding. The page links to the raw document at
// specPath.
func UIHandler(doc *Document, specPath string) http.HandlerFunc {
	page, err := renderDocsPage(doc, specPath)
	return func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(page)
	}
}

type docsPage struct {
	Title       string
	Version     string
	Description template.HTML
	SpecPath    string
	Operations  []docsOperation
}

type docsOperation struct {
	Method      string
	MethodClass string
	Path        string
	Summary     string
	Description template.HTML
	Tags        []string
	Auth        string
}

func renderDocsPage(doc *Document, specPath string) ([]byte, error) {
	md := goldmark.New()

	description, err := renderMarkdown(md, doc.Info.Description)
	if err != nil {
		return nil, err
	}
	page := docsPage{
		Title:       doc.Info.Title,
		Version:     doc.Info.Version,
		Description: description,
		SpecPath:    specPath,
	}

	for _, pathKey := range slices.Sorted(maps.Keys(doc.Paths)) {
		item := doc.Paths[pathKey]
		for _, verb := range slices.Sorted(maps.Keys(item)) {
			oo := item[verb]
			opDescription, err := renderMarkdown(md, oo.Description)
			if err != nil {
				return nil, err
			}
			page.Operations = append(page.Operations, docsOperation{
				Method:      strings.ToUpper(verb),
				MethodClass: verb,
				Path:        pathKey,
				Summary:     oo.Summary,
				Description: opDescription,
				Tags:        oo.Tags,
				Auth:        authSummary(oo),
			})
		}
	}

	var buf bytes.Buffer
	if err := docsTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderMarkdown converts markdown to HTML and strips anything outside
// the sanitizer's allowlist before the template embeds it verbatim.
func renderMarkdown(md goldmark.Markdown, source string) (template.HTML, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeHTML(buf.String())), nil
}

// authSummary renders the operation's access requirements as one line.
func authSummary(oo *OperationObject) string {
	var parts []string
	if len(oo.RequiredRoles) > 0 {
		parts = append(parts, "role "+strings.Join(oo.RequiredRoles, " or "))
	}
	if len(oo.RequiredPermissions) > 0 {
		parts = append(parts, "permissions "+strings.Join(oo.RequiredPermissions, ", "))
	}
	if len(oo.RequiredPolicies) > 0 {
		parts = append(parts, "policies "+strings.Join(oo.RequiredPolicies, ", "))
	}
	if len(oo.RequiredClaims) > 0 {
		parts = append(parts, "claims "+strings.Join(oo.RequiredClaims, ", "))
	}
	if len(parts) == 0 {
		if len(oo.Security) > 0 {
			return "authenticated"
		}
		return ""
	}
	return "authenticated, " + strings.Join(parts, "; ")
}

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root { color-scheme: light dark; }
body { font-family: ui-sans-serif, system-ui, sans-serif; max-width: 56rem; margin: 0 auto; padding: 2rem 1rem; line-height: 1.5; }
header { margin-bottom: 2rem; }
h1 { margin: 0 0 .25rem; }
.meta { color: gray; font-size: .875rem; }
.op { border: 1px solid rgba(128,128,128,.35); border-radius: .5rem; margin: .75rem 0; padding: .75rem 1rem; }
.op p { margin: .5rem 0 0; }
.method { display: inline-block; min-width: 3.5rem; text-align: center; font-family: ui-monospace, monospace; font-weight: 700; font-size: .75rem; padding: .125rem .5rem; border-radius: .25rem; color: #fff; background: #6b7280; }
.method.get { background: #2563eb; }
.method.post { background: #16a34a; }
.method.put { background: #d97706; }
.method.patch { background: #9333ea; }
.method.delete { background: #dc2626; }
.path { font-family: ui-monospace, monospace; margin-left: .5rem; }
.tags { float: right; color: gray; font-size: .8125rem; }
.auth { color: gray; font-size: .8125rem; }
</style>
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<p class="meta">version {{.Version}} &middot; <a href="{{.SpecPath}}">openapi document</a></p>
{{with .Description}}<div>{{.}}</div>{{end}}
</header>
<main>
{{range .Operations}}<section class="op">
{{with .Tags}}<span class="tags">{{range $i, $t := .}}{{if $i}}, {{end}}{{$t}}{{end}}</span>{{end}}
<span class="method {{.MethodClass}}">{{.Method}}</span><span class="path">{{.Path}}</span>
{{with .Summary}}<p><strong>{{.}}</strong></p>{{end}}
{{with .Description}}<div>{{.}}</div>{{end}}
{{with .Auth}}<p class="auth">requires: {{.}}</p>{{end}}
</section>
{{end}}</main>
</body>
</html>
`))
