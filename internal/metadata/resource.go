package metadata

import (
	"fmt"
	"strconv"
)

const DefaultPerPage = 20

// ViewOptions narrows the columns of one view. Columns is a whitelist and
// takes precedence over Exclude.
type ViewOptions struct {
	Columns []string `mapstructure:"columns" json:"columns,omitempty"`
	Exclude []string `mapstructure:"exclude" json:"exclude,omitempty"`
}

type Options struct {
	Label             string
	PerPage           int
	Index             ViewOptions
	Show              ViewOptions
	Form              ViewOptions
	PermitParams      []string
	Markdown          []string
	MemberActions     []*MemberAction
	CollectionActions []*CollectionAction
}

// ResourceDefinition pairs a table with its display and behavior options.
// It is built once at startup and never mutated.
type ResourceDefinition struct {
	Table       Table
	TableName   string
	RoutePath   string
	DisplayName string
	PluralName  string
	Columns     Columns
	Options     Options
	Source      string // file the definition came from, empty for code
}

// NewResource builds a resource from a table handle, the columns an adapter
// extracted from it, and its options. Member action conditions are compiled
// here so a bad expression fails at startup.
func NewResource(table Table, cols Columns, opts Options) (*ResourceDefinition, error) {
	if table == nil {
		return nil, ConfigError("resource: nil table")
	}
	name := table.SQLName()
	if name == "" {
		return nil, ConfigError("resource: table has no SQL name")
	}
	if len(cols) == 0 {
		return nil, ConfigError("resource %s: no columns", name)
	}
	if cols.PrimaryKey() == nil {
		return nil, ConfigError("resource %s: table has no primary key column", name)
	}
	for _, a := range opts.MemberActions {
		if err := a.compile(); err != nil {
			return nil, ConfigError("resource %s: action %q: %v", name, a.Name, err)
		}
	}

	r := &ResourceDefinition{
		Table:       table,
		TableName:   name,
		RoutePath:   TableNameToRoutePath(name),
		DisplayName: TableNameToDisplayName(name),
		PluralName:  TableNameToPluralName(name),
		Columns:     cols,
		Options:     opts,
	}
	if opts.Label != "" {
		r.DisplayName = opts.Label
	}
	return r, nil
}

// PrimaryKey returns the primary key column.
func (r *ResourceDefinition) PrimaryKey() ColumnMeta {
	return *r.Columns.PrimaryKey()
}

func (r *ResourceDefinition) PerPage() int {
	if r.Options.PerPage > 0 {
		return r.Options.PerPage
	}
	return DefaultPerPage
}

func (r *ResourceDefinition) IndexColumns() Columns {
	return VisibleColumns(r.Columns, r.Options.Index)
}

func (r *ResourceDefinition) ShowColumns() Columns {
	return VisibleColumns(r.Columns, r.Options.Show)
}

func (r *ResourceDefinition) FormColumns() Columns {
	return FormColumns(r.Columns, r.Options.Form, r.Options.PermitParams)
}

// IsMarkdown reports whether a column renders as markdown on the show view.
func (r *ResourceDefinition) IsMarkdown(name string) bool {
	for _, m := range r.Options.Markdown {
		if m == name {
			return true
		}
	}
	return false
}

// ParseID coerces a path id to the primary key's type.
func (r *ResourceDefinition) ParseID(id string) (any, error) {
	pk := r.PrimaryKey()
	if pk.DataType != TypeInteger {
		return id, nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, NotFoundError(r.DisplayName, id)
	}
	return n, nil
}

// RecordID returns the primary key value of a record as a string.
func (r *ResourceDefinition) RecordID(rec Record) string {
	v := rec[r.PrimaryKey().Name]
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// FindMemberAction resolves a member action by its derived slug.
func (r *ResourceDefinition) FindMemberAction(slug string) *MemberAction {
	for _, a := range r.Options.MemberActions {
		if a.Slug() == slug {
			return a
		}
	}
	return nil
}

// FindCollectionAction resolves a collection action by its derived slug.
func (r *ResourceDefinition) FindCollectionAction(slug string) *CollectionAction {
	for _, a := range r.Options.CollectionActions {
		if a.Slug() == slug {
			return a
		}
	}
	return nil
}
