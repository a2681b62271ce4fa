package news

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Mock synthesizes articles without any network access.
type Mock struct {
	Now func() time.Time // defaults to time.Now
}

func (m Mock) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

var mockHeadlines = []string{
	"%s shares move as investors weigh latest quarterly results",
	"Analysts revise price targets for %s ahead of earnings",
	"%s announces new product lineup, stock reacts",
	"What the latest market rally means for %s holders",
	"%s trading volume climbs amid sector rotation",
}

var quotedTermRE = regexp.MustCompile(`"([^"]+)"|(\S+)`)

// Everything returns articles about each term of the query.
func (m Mock) Everything(ctx context.Context, q Query) ([]Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var subjects []string
	for _, match := range quotedTermRE.FindAllStringSubmatch(q.Q, -1) {
		term := match[1] + match[2]
		if term == "OR" || term == "AND" || term == "NOT" {
			continue
		}
		subjects = append(subjects, term)
	}
	return m.articles(subjects, pageSize(q.PageSize)), nil
}

// TopHeadlines returns generic market articles.
func (m Mock) TopHeadlines(ctx context.Context, h Headlines) ([]Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	category := withDefault(h.Category, "business")
	return m.articles([]string{"Markets", "Wall Street", strings.ToUpper(category[:1]) + category[1:]}, pageSize(h.PageSize)), nil
}

func (m Mock) articles(subjects []string, n int) []Article {
	if len(subjects) == 0 {
		return nil
	}
	now := m.now().Truncate(time.Hour)
	var out []Article
	for i := 0; i < n && i < len(subjects)*len(mockHeadlines); i++ {
		subject := subjects[i%len(subjects)]
		headline := fmt.Sprintf(mockHeadlines[(i/len(subjects))%len(mockHeadlines)], subject)
		out = append(out, Article{
			Source:      Source{ID: "mock", Name: "Mock Financial News"},
			Author:      "Mock Reporter",
			Title:       headline,
			Description: fmt.Sprintf("Sample news about %s, generated while mock data is enabled.", subject),
			URL:         fmt.Sprintf("https://example.com/news/%s/%d", strings.ToLower(strings.ReplaceAll(subject, " ", "-")), i),
			PublishedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return out
}
