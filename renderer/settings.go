package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/folio"
)

// SettingsMarkdown renders the user settings.
func SettingsMarkdown(s folio.Settings) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Settings\n\n")
	fmt.Fprintln(&b, "| Setting | Value |")
	fmt.Fprintln(&b, "|:---|:---|")
	order := "ascending"
	if s.SortDesc {
		order = "descending"
	}
	fmt.Fprintf(&b, "| Currency | %s |\n", s.Currency)
	fmt.Fprintf(&b, "| Refresh Interval | %s |\n", s.Refresh())
	fmt.Fprintf(&b, "| Mock Data | %t |\n", s.MockData)
	fmt.Fprintf(&b, "| News Country | %s |\n", s.NewsCountry)
	fmt.Fprintf(&b, "| News Category | %s |\n", s.NewsCategory)
	fmt.Fprintf(&b, "| Sort | %s, %s |\n", s.SortBy, order)
	return b.String()
}
