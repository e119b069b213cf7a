package views

// Theme carries the styling tokens every page is rendered with. It is set
// once when the Renderer is built and never changes afterwards.
type Theme struct {
	Title       string
	AccentColor string
	DangerColor string
	MutedColor  string
}

func DefaultTheme(title string) Theme {
	if title == "" {
		title = "Admin"
	}
	return Theme{
		Title:       title,
		AccentColor: "#2563eb",
		DangerColor: "#dc2626",
		MutedColor:  "#6b7280",
	}
}
