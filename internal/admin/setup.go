package admin

import (
	"context"
	"log/slog"

	"rocket-admin/internal/metadata"
)

// LoadResources discovers the resource files in dir, validates them as a set
// and returns the filled registry. Any problem lands in problems; callers
// must not serve traffic when it is non-empty.
func LoadResources(ctx context.Context, dir, dialect string, tables metadata.TableSource, actions *metadata.ActionRegistry, logger *slog.Logger) (reg *metadata.Registry, problems []string) {
	reg = metadata.NewRegistry()

	adapter, err := metadata.AdapterFor(dialect)
	if err != nil {
		return reg, []string{err.Error()}
	}
	loader := &metadata.Loader{
		Dir:     dir,
		Tables:  tables,
		Adapter: adapter,
		Actions: actions,
		Logger:  logger,
	}
	result := loader.Load(ctx)
	problems = append(problems, result.Errors...)
	problems = append(problems, metadata.ValidateResources(result.Resources)...)
	if len(result.Resources) == 0 && len(problems) == 0 {
		logger.Warn("no resources found", "dir", dir)
	}

	reg.Load(result.Resources)
	return reg, problems
}
