package metadata

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// MemberHandler runs a custom operation on one record.
type MemberHandler func(ctx context.Context, id string, db Database) error

// CollectionHandler runs a custom operation on a whole resource. A non-nil
// response replaces the default flash-and-redirect.
type CollectionHandler func(req *ActionRequest, db Database) (*ActionResponse, error)

type ActionRequest struct {
	Context  context.Context
	Resource *ResourceDefinition
	Query    map[string]string
	Form     map[string]string
}

// ActionResponse is emitted verbatim, e.g. a file download.
type ActionResponse struct {
	Status      int
	ContentType string
	Filename    string
	Body        []byte
}

type MemberAction struct {
	Name        string
	Handler     MemberHandler
	Destructive bool
	// Condition is an expr-lang boolean expression over the record's columns.
	// An empty condition always allows the action.
	Condition string

	program *vm.Program
}

// NewMemberAction returns a destructive member action; set Destructive to
// false to skip the confirmation step.
func NewMemberAction(name string, h MemberHandler) *MemberAction {
	return &MemberAction{Name: name, Handler: h, Destructive: true}
}

func (a *MemberAction) Slug() string { return Slugify(a.Name) }

func (a *MemberAction) compile() error {
	if a.Handler == nil {
		return fmt.Errorf("no handler")
	}
	if a.Condition == "" || a.program != nil {
		return nil
	}
	prog, err := expr.Compile(a.Condition, expr.AsBool())
	if err != nil {
		return fmt.Errorf("compile condition: %w", err)
	}
	a.program = prog
	return nil
}

// Allowed evaluates the action's condition against a record.
func (a *MemberAction) Allowed(rec Record) (bool, error) {
	if a.Condition == "" {
		return true, nil
	}
	prog := a.program
	if prog == nil {
		var err error
		prog, err = expr.Compile(a.Condition, expr.AsBool())
		if err != nil {
			return false, fmt.Errorf("compile condition: %w", err)
		}
	}
	env := make(map[string]any, len(rec))
	for k, v := range rec {
		env[k] = v
	}
	result, err := expr.Run(prog, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition: %w", err)
	}
	ok, isBool := result.(bool)
	if !isBool {
		return false, fmt.Errorf("condition did not return bool")
	}
	return ok, nil
}

type CollectionAction struct {
	Name    string
	Handler CollectionHandler
}

func NewCollectionAction(name string, h CollectionHandler) *CollectionAction {
	return &CollectionAction{Name: name, Handler: h}
}

func (a *CollectionAction) Slug() string { return Slugify(a.Name) }

// ActionRegistry maps handler names used in resource files to Go handlers.
type ActionRegistry struct {
	mu         sync.RWMutex
	member     map[string]MemberHandler
	collection map[string]CollectionHandler
}

func NewActionRegistry() *ActionRegistry {
	return &ActionRegistry{
		member:     make(map[string]MemberHandler),
		collection: make(map[string]CollectionHandler),
	}
}

func (r *ActionRegistry) RegisterMember(name string, h MemberHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.member[name] = h
}

func (r *ActionRegistry) RegisterCollection(name string, h CollectionHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collection[name] = h
}

func (r *ActionRegistry) Member(name string) (MemberHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.member[name]
	return h, ok
}

func (r *ActionRegistry) Collection(name string) (CollectionHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.collection[name]
	return h, ok
}

// Names lists every registered handler name, sorted.
func (r *ActionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.member)+len(r.collection))
	for n := range r.member {
		names = append(names, n)
	}
	for n := range r.collection {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
