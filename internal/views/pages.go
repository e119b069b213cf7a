package views

import (
	"html/template"

	"rocket-admin/internal/metadata"
)

type Flash struct {
	Type    string `json:"type"` // success, error, info
	Message string `json:"message"`
}

type NavItem struct {
	Label  string
	URL    string
	Active bool
}

// Base is shared by every page. Theme and BasePath are filled in by the Renderer.
type Base struct {
	Title    string
	Theme    Theme
	BasePath string
	Nav      []NavItem
	Admin    string
	Flash    *Flash
}

type DashboardItem struct {
	Label string
	URL   string
	Count int64
}

type DashboardPage struct {
	Base
	Items []DashboardItem
}

type IndexPage struct {
	Base
	Resource   *metadata.ResourceDefinition
	Rows       []metadata.Record
	Page       int
	TotalPages int
	TotalCount int64
	CSRFToken  string
}

type ShowPage struct {
	Base
	Resource  *metadata.ResourceDefinition
	Record    metadata.Record
	CSRFToken string
}

// FormPage renders the new form when Record is nil and the edit form otherwise.
// Values holds a rejected submission and takes precedence over Record when
// filling inputs; Errors are shown next to their fields.
type FormPage struct {
	Base
	Resource  *metadata.ResourceDefinition
	Record    metadata.Record
	Values    metadata.Record
	CSRFToken string
	Errors    []metadata.FieldError
}

type NotFoundPage struct {
	Base
	Message   string
	BackURL   string
	BackLabel string
}

type LoginPage struct {
	Base
	Action    string
	Email     string
	Error     string
	CSRFToken string
}

type ErrorPage struct {
	Base
	Status  int
	Message string
}

type actionView struct {
	Name        string
	URL         string
	Destructive bool
	ModalID     string
}

type rowView struct {
	URL   string
	Cells []string
}

type displayField struct {
	Label string
	Value template.HTML
}

type dashboardView struct{ DashboardPage }

type indexView struct {
	IndexPage
	Headers    []string
	RowViews   []rowView
	Pagination template.HTML
	Empty      string
	IndexURL   string
	NewURL     string
	Actions    []actionView
}

type showView struct {
	ShowPage
	Fields     []displayField
	IndexURL   string
	EditURL    string
	DeleteURL  string
	DeleteID   string
	Actions    []actionView
}

type formView struct {
	FormPage
	IsEdit    bool
	ActionURL string
	CancelURL string
	Fields    []FieldInput
	Heading   string
}
