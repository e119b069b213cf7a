package views

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"rocket-admin/internal/metadata"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"dashboard", "index", "show", "form", "not_found", "login", "error"}

// Renderer turns page data into HTML. It holds no per-request state and is
// safe for concurrent use.
type Renderer struct {
	theme    Theme
	basePath string
	md       *markdownRenderer
	pages    map[string]*template.Template
}

// New parses the embedded templates. basePath is where the admin panel is
// mounted, "" for the root.
func New(theme Theme, basePath string) (*Renderer, error) {
	r := &Renderer{
		theme:    theme,
		basePath: strings.TrimRight(basePath, "/"),
		md:       newMarkdownRenderer(),
		pages:    make(map[string]*template.Template, len(pageNames)),
	}
	funcs := template.FuncMap{
		"url": r.URL,
	}
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) BasePath() string { return r.basePath }

// URL joins path segments under the base path. Segments are path-escaped.
func (r *Renderer) URL(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return r.basePath + "/" + strings.Join(escaped, "/")
}

// ModalID names the confirmation dialog of one action on one record.
func ModalID(routePath, id, slug string) string {
	return "confirm-" + metadata.Slugify(routePath+"-"+id+"-"+slug)
}

func (r *Renderer) base(b Base, title string) Base {
	b.Theme = r.theme
	b.BasePath = r.basePath
	if b.Title == "" {
		b.Title = title
	}
	return b
}

func (r *Renderer) render(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := r.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) Dashboard(w io.Writer, p DashboardPage) error {
	p.Base = r.base(p.Base, "Dashboard")
	return r.render(w, "dashboard", dashboardView{p})
}

func (r *Renderer) Index(w io.Writer, p IndexPage) error {
	res := p.Resource
	p.Base = r.base(p.Base, res.PluralName)

	cols := res.IndexColumns()
	v := indexView{
		IndexPage:  p,
		IndexURL:   r.URL(res.RoutePath),
		NewURL:     r.URL(res.RoutePath, "new"),
		Pagination: RenderPagination(r.URL(res.RoutePath), p.Page, p.TotalPages),
	}
	for _, c := range cols {
		v.Headers = append(v.Headers, c.Label())
	}
	for _, rec := range p.Rows {
		row := rowView{URL: r.URL(res.RoutePath, res.RecordID(rec))}
		for _, c := range cols {
			row.Cells = append(row.Cells, truncate(FormatCell(c, rec[c.Name]), indexCellMaxRunes))
		}
		v.RowViews = append(v.RowViews, row)
	}
	if len(p.Rows) == 0 {
		if p.Page > 1 {
			v.Empty = fmt.Sprintf("No %s on page %d.", strings.ToLower(res.PluralName), p.Page)
		} else {
			v.Empty = fmt.Sprintf("No %s yet.", strings.ToLower(res.PluralName))
		}
	}
	for _, a := range res.Options.CollectionActions {
		v.Actions = append(v.Actions, actionView{Name: a.Name, URL: r.URL(res.RoutePath, "actions", a.Slug())})
	}
	return r.render(w, "index", v)
}

func (r *Renderer) Show(w io.Writer, p ShowPage) error {
	res := p.Resource
	id := res.RecordID(p.Record)
	p.Base = r.base(p.Base, fmt.Sprintf("%s #%s", res.DisplayName, id))

	v := showView{
		ShowPage:  p,
		IndexURL:  r.URL(res.RoutePath),
		EditURL:   r.URL(res.RoutePath, id, "edit"),
		DeleteURL: r.URL(res.RoutePath, id) + "?_method=DELETE",
		DeleteID:  ModalID(res.RoutePath, id, "delete"),
	}
	for _, c := range res.ShowColumns() {
		v.Fields = append(v.Fields, displayField{Label: c.Label(), Value: r.displayValue(res, c, p.Record[c.Name])})
	}
	for _, a := range res.Options.MemberActions {
		if ok, err := a.Allowed(p.Record); err != nil || !ok {
			continue
		}
		v.Actions = append(v.Actions, actionView{
			Name:        a.Name,
			URL:         r.URL(res.RoutePath, id, "actions", a.Slug()),
			Destructive: a.Destructive,
			ModalID:     ModalID(res.RoutePath, id, a.Slug()),
		})
	}
	return r.render(w, "show", v)
}

func (r *Renderer) displayValue(res *metadata.ResourceDefinition, c metadata.ColumnMeta, v any) template.HTML {
	if s, ok := v.(string); ok && res.IsMarkdown(c.Name) {
		return r.md.Render(s)
	}
	if c.DataType == metadata.TypeJSON && v != nil {
		b, err := json.MarshalIndent(v, "", "  ")
		if err == nil {
			return template.HTML("<pre>" + template.HTMLEscapeString(string(b)) + "</pre>")
		}
	}
	return template.HTML(template.HTMLEscapeString(FormatCell(c, v)))
}

func (r *Renderer) Form(w io.Writer, p FormPage) error {
	res := p.Resource
	values := p.Record
	if p.Values != nil {
		values = p.Values
	}
	v := formView{
		FormPage: p,
		IsEdit:   p.Record != nil,
		Fields:   BuildFields(res.FormColumns(), values, p.Record != nil, p.Errors),
	}
	if v.IsEdit {
		id := res.RecordID(p.Record)
		v.Heading = fmt.Sprintf("Edit %s #%s", res.DisplayName, id)
		v.ActionURL = r.URL(res.RoutePath, id) + "?_method=PUT"
		v.CancelURL = r.URL(res.RoutePath, id)
	} else {
		v.Heading = "New " + res.DisplayName
		v.ActionURL = r.URL(res.RoutePath)
		v.CancelURL = r.URL(res.RoutePath)
	}
	v.Base = r.base(p.Base, v.Heading)
	return r.render(w, "form", v)
}

func (r *Renderer) NotFound(w io.Writer, p NotFoundPage) error {
	p.Base = r.base(p.Base, "Not found")
	if p.BackURL == "" {
		p.BackURL = r.URL()
		p.BackLabel = "Dashboard"
	}
	return r.render(w, "not_found", p)
}

func (r *Renderer) Login(w io.Writer, p LoginPage) error {
	p.Base = r.base(p.Base, "Sign in")
	if p.Action == "" {
		p.Action = r.URL("login")
	}
	return r.render(w, "login", p)
}

func (r *Renderer) Error(w io.Writer, p ErrorPage) error {
	p.Base = r.base(p.Base, "Error")
	return r.render(w, "error", p)
}
