package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/folio/news"
)

// NewsMarkdown renders 'articles' as a numbered list of links.
func NewsMarkdown(title string, articles []news.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(articles) == 0 {
		fmt.Fprintln(&b, "_No article found._")
		return b.String()
	}
	for i, a := range articles {
		fmt.Fprintf(&b, "%d. [%s](%s)", i+1, linkText(a.Title), a.URL)
		var meta []string
		if a.Source.Name != "" {
			meta = append(meta, a.Source.Name)
		}
		if !a.PublishedAt.IsZero() {
			meta = append(meta, a.PublishedAt.Format("2006-01-02 15:04"))
		}
		if len(meta) > 0 {
			fmt.Fprintf(&b, " - %s", strings.Join(meta, ", "))
		}
		fmt.Fprintln(&b)
		if d := strings.Join(strings.Fields(a.Description), " "); d != "" {
			fmt.Fprintf(&b, "   %s\n", d)
		}
	}
	return b.String()
}

func linkText(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
