package views

import (
	"fmt"
	"html/template"
	"strings"
)

const paginationWindow = 2

// RenderPagination returns the pager for an index page, or "" when there is
// at most one page. baseURL is the index path without a query string.
func RenderPagination(baseURL string, current, total int) template.HTML {
	if total <= 1 {
		return ""
	}
	esc := template.HTMLEscapeString
	link := func(page int) string {
		return esc(fmt.Sprintf("%s?page=%d", baseURL, page))
	}

	var b strings.Builder
	b.WriteString(`<nav class="pagination" aria-label="Pagination">`)

	if current <= 1 {
		b.WriteString(`<span class="disabled">Previous</span>`)
	} else {
		fmt.Fprintf(&b, `<a href="%s" rel="prev">Previous</a>`, link(current-1))
	}

	last := 0
	for _, p := range pageNumbers(current, total) {
		if last != 0 && p > last+1 {
			b.WriteString(`<span class="ellipsis">…</span>`)
		}
		if p == current {
			fmt.Fprintf(&b, `<span class="current" aria-current="page">%d</span>`, p)
		} else {
			fmt.Fprintf(&b, `<a href="%s">%d</a>`, link(p), p)
		}
		last = p
	}

	if current >= total {
		b.WriteString(`<span class="disabled">Next</span>`)
	} else {
		fmt.Fprintf(&b, `<a href="%s" rel="next">Next</a>`, link(current+1))
	}

	b.WriteString(`</nav>`)
	return template.HTML(b.String())
}

// pageNumbers lists the first page, the last page, and a window around the
// current one, ascending and without duplicates.
func pageNumbers(current, total int) []int {
	pages := []int{1}
	for p := current - paginationWindow; p <= current+paginationWindow; p++ {
		if p > 1 && p < total {
			pages = append(pages, p)
		}
	}
	return append(pages, total)
}
