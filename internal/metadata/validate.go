package metadata

import (
	"fmt"
	"slices"
	"strings"
)

// ReservedRoutePaths are served by the login handler under the same base
// path as resources. Routing ignores case, so neither may any variant.
var ReservedRoutePaths = []string{"login", "logout"}

// ValidateResources checks a loaded resource set before routes are
// registered. Every returned string is a fatal configuration problem: one
// entry per pair of resources sharing a route path, one per resource on a
// reserved path, duplicate action slugs within a resource, and column lists
// naming unknown columns.
func ValidateResources(resources []*ResourceDefinition) []string {
	var errs []string

	for _, r := range resources {
		if slices.ContainsFunc(ReservedRoutePaths, func(p string) bool { return strings.EqualFold(p, r.RoutePath) }) {
			errs = append(errs, fmt.Sprintf("table %q: route path %q is reserved", r.TableName, r.RoutePath))
		}
	}

	for i := 0; i < len(resources); i++ {
		for j := i + 1; j < len(resources); j++ {
			a, b := resources[i], resources[j]
			if a.RoutePath == b.RoutePath {
				errs = append(errs, fmt.Sprintf(
					"duplicate route path %q: tables %q and %q", a.RoutePath, a.TableName, b.TableName))
			}
		}
	}

	for _, r := range resources {
		errs = append(errs, validateActionSlugs(r)...)
		errs = append(errs, validateColumnLists(r)...)
	}
	return errs
}

func validateActionSlugs(r *ResourceDefinition) []string {
	var errs []string

	memberSlugs := make(map[string]string)
	for _, a := range r.Options.MemberActions {
		slug := a.Slug()
		if slug == "" {
			errs = append(errs, fmt.Sprintf("%s: member action %q has an empty slug", r.TableName, a.Name))
			continue
		}
		if prev, ok := memberSlugs[slug]; ok {
			errs = append(errs, fmt.Sprintf("%s: member actions %q and %q share slug %q", r.TableName, prev, a.Name, slug))
			continue
		}
		memberSlugs[slug] = a.Name
	}

	collectionSlugs := make(map[string]string)
	for _, a := range r.Options.CollectionActions {
		slug := a.Slug()
		if slug == "" {
			errs = append(errs, fmt.Sprintf("%s: collection action %q has an empty slug", r.TableName, a.Name))
			continue
		}
		if prev, ok := collectionSlugs[slug]; ok {
			errs = append(errs, fmt.Sprintf("%s: collection actions %q and %q share slug %q", r.TableName, prev, a.Name, slug))
			continue
		}
		collectionSlugs[slug] = a.Name
	}
	return errs
}

func validateColumnLists(r *ResourceDefinition) []string {
	var errs []string
	check := func(list string, names []string) {
		for _, n := range names {
			if !r.Columns.Has(n) {
				errs = append(errs, fmt.Sprintf("%s: %s names unknown column %q", r.TableName, list, n))
			}
		}
	}
	check("index.columns", r.Options.Index.Columns)
	check("index.exclude", r.Options.Index.Exclude)
	check("show.columns", r.Options.Show.Columns)
	check("show.exclude", r.Options.Show.Exclude)
	check("form.columns", r.Options.Form.Columns)
	check("form.exclude", r.Options.Form.Exclude)
	check("permit_params", r.Options.PermitParams)
	check("markdown", r.Options.Markdown)
	return errs
}
