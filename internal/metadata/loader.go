package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ResourceKind is the marker a definition file must carry to be loaded.
const ResourceKind = "resource"

var resourceFileTypes = map[string]string{
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
}

// TableSource resolves a table handle by SQL name.
type TableSource interface {
	Table(ctx context.Context, name string) (Table, error)
}

type resourceFile struct {
	Kind              string       `mapstructure:"kind"`
	Table             string       `mapstructure:"table"`
	Label             string       `mapstructure:"label"`
	PerPage           int          `mapstructure:"per_page"`
	Index             ViewOptions  `mapstructure:"index"`
	Show              ViewOptions  `mapstructure:"show"`
	Form              ViewOptions  `mapstructure:"form"`
	PermitParams      []string     `mapstructure:"permit_params"`
	Markdown          []string     `mapstructure:"markdown"`
	MemberActions     []actionFile `mapstructure:"member_actions"`
	CollectionActions []actionFile `mapstructure:"collection_actions"`
}

type actionFile struct {
	Name        string `mapstructure:"name"`
	Handler     string `mapstructure:"handler"`
	Destructive *bool  `mapstructure:"destructive"`
	If          string `mapstructure:"if"`
}

// Loader discovers resource definition files in a directory.
type Loader struct {
	Dir     string
	Tables  TableSource
	Adapter Adapter
	Actions *ActionRegistry
	Logger  *slog.Logger
}

type LoadResult struct {
	Resources []*ResourceDefinition
	Errors    []string
}

// Load reads every definition file directly inside Dir. Per-file problems are
// collected in Errors and never stop the scan; the caller decides whether
// they are fatal.
func (l *Loader) Load(ctx context.Context) LoadResult {
	var result LoadResult

	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("read resources directory %s: %v", l.Dir, err))
		return result
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		configType, ok := resourceFileTypes[ext]
		if !ok {
			continue
		}
		path := filepath.Join(l.Dir, entry.Name())
		res, err := l.loadFile(ctx, path, configType)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Name(), err))
			continue
		}
		result.Resources = append(result.Resources, res)
	}

	if l.Logger != nil {
		l.Logger.Info("resources loaded", "dir", l.Dir, "resources", len(result.Resources), "errors", len(result.Errors))
	}
	return result
}

func (l *Loader) loadFile(ctx context.Context, path, configType string) (*ResourceDefinition, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(configType)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	var rf resourceFile
	if err := v.Unmarshal(&rf); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if rf.Kind != ResourceKind {
		return nil, fmt.Errorf("not a resource export (expected kind: %s)", ResourceKind)
	}
	if rf.Table == "" {
		return nil, fmt.Errorf("missing table")
	}
	if v.IsSet("permit_params") && rf.PermitParams == nil {
		rf.PermitParams = []string{}
	}

	table, err := l.Tables.Table(ctx, rf.Table)
	if err != nil {
		return nil, fmt.Errorf("resolve table %s: %w", rf.Table, err)
	}
	cols, err := l.Adapter.ExtractColumns(table)
	if err != nil {
		return nil, err
	}

	opts := Options{
		Label:        rf.Label,
		PerPage:      rf.PerPage,
		Index:        rf.Index,
		Show:         rf.Show,
		Form:         rf.Form,
		PermitParams: rf.PermitParams,
		Markdown:     rf.Markdown,
	}
	for _, af := range rf.MemberActions {
		h, ok := l.Actions.Member(af.Handler)
		if !ok {
			return nil, fmt.Errorf("member action %q: unknown handler %q", af.Name, af.Handler)
		}
		action := NewMemberAction(af.Name, h)
		if af.Destructive != nil {
			action.Destructive = *af.Destructive
		}
		action.Condition = af.If
		opts.MemberActions = append(opts.MemberActions, action)
	}
	for _, af := range rf.CollectionActions {
		h, ok := l.Actions.Collection(af.Handler)
		if !ok {
			return nil, fmt.Errorf("collection action %q: unknown handler %q", af.Name, af.Handler)
		}
		opts.CollectionActions = append(opts.CollectionActions, NewCollectionAction(af.Name, h))
	}

	res, err := NewResource(table, cols, opts)
	if err != nil {
		return nil, err
	}
	res.Source = path
	return res, nil
}
