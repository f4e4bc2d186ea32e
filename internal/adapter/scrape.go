package adapter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobhub/internal/config"
	"github.com/amishk599/jobhub/internal/model"
)

// ScrapeAdapter turns a search results page into records using CSS
// selectors. The URL template may contain {query}, {location} and {page}.
type ScrapeAdapter struct {
	name      string
	template  string
	selectors config.ScrapeSelectors
	client    *http.Client
	now       func() time.Time
}

// NewScrapeAdapter creates a selector-driven page scraper.
func NewScrapeAdapter(name, urlTemplate string, selectors config.ScrapeSelectors, client *http.Client) (*ScrapeAdapter, error) {
	if _, err := url.Parse(expandTemplate(urlTemplate, "q", "", 1)); err != nil {
		return nil, fmt.Errorf("scrape %s: bad url template: %w", name, err)
	}
	for _, sel := range []string{selectors.Item, selectors.Title} {
		if strings.TrimSpace(sel) == "" {
			return nil, fmt.Errorf("scrape %s: item and title selectors are required", name)
		}
	}
	return &ScrapeAdapter{
		name:      name,
		template:  urlTemplate,
		selectors: selectors,
		client:    client,
		now:       time.Now,
	}, nil
}

func (a *ScrapeAdapter) Name() string { return a.name }

func (a *ScrapeAdapter) Fetch(ctx context.Context, query, location string, page int) ([]model.JobRecord, error) {
	if page < 1 {
		page = 1
	}
	pageURL := expandTemplate(a.template, query, location, page)
	what := "scrape " + a.name

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, statusError(resp, what)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", what, err)
	}

	base := resp.Request.URL
	now := a.now()
	var records []model.JobRecord
	doc.Find(a.selectors.Item).Each(func(_ int, s *goquery.Selection) {
		title := text(s, a.selectors.Title)
		if title == "" {
			return
		}
		rec := model.JobRecord{
			Title:       title,
			Company:     text(s, a.selectors.Company),
			Location:    text(s, a.selectors.Location),
			Description: text(s, a.selectors.Description),
			Salary:      text(s, a.selectors.Salary),
			URL:         a.link(s, base),
		}
		if posted := text(s, a.selectors.Posted); posted != "" {
			rec.PostedAt = parseScrapedDate(posted, now)
		}
		finish(&rec, a.name)
		records = append(records, rec)
	})

	return records, nil
}

// link resolves the listing href against the page URL. Without a url
// selector the item itself or its first anchor is used.
func (a *ScrapeAdapter) link(s *goquery.Selection, base *url.URL) string {
	sel := s
	if a.selectors.URL != "" {
		sel = s.Find(a.selectors.URL).First()
	} else if _, ok := s.Attr("href"); !ok {
		sel = s.Find("a[href]").First()
	}
	href, ok := sel.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func text(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.Join(strings.Fields(s.Find(selector).First().Text()), " ")
}

func expandTemplate(tmpl, query, location string, page int) string {
	r := strings.NewReplacer(
		"{query}", url.QueryEscape(query),
		"{location}", url.QueryEscape(location),
		"{page}", strconv.Itoa(page),
	)
	return r.Replace(tmpl)
}

var relativeDateRegex = regexp.MustCompile(`(\d+)\+?\s*(minute|hour|day|week|month)s?\s+ago`)

// parseScrapedDate understands absolute dates plus the relative phrases job
// sites print ("3 days ago", "today").
func parseScrapedDate(s string, now time.Time) *time.Time {
	if t := model.ParsePostedAt(s); t != nil {
		return t
	}

	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "just now"), strings.Contains(lower, "today"):
		return &now
	case strings.Contains(lower, "yesterday"):
		t := now.AddDate(0, 0, -1)
		return &t
	}

	m := relativeDateRegex.FindStringSubmatch(lower)
	if m == nil {
		return nil
	}
	n, _ := strconv.Atoi(m[1])
	var t time.Time
	switch m[2] {
	case "minute":
		t = now.Add(-time.Duration(n) * time.Minute)
	case "hour":
		t = now.Add(-time.Duration(n) * time.Hour)
	case "day":
		t = now.AddDate(0, 0, -n)
	case "week":
		t = now.AddDate(0, 0, -7*n)
	case "month":
		t = now.AddDate(0, -n, 0)
	}
	return &t
}
