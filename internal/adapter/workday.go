package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/jobhub/internal/filter"
	"github.com/amishk599/jobhub/internal/model"
)

const workdayPageSize = 20

type workdayListingResponse struct {
	Total       int              `json:"total"`
	JobPostings []workdayListing `json:"jobPostings"`
}

type workdayListing struct {
	Title         string   `json:"title"`
	ExternalPath  string   `json:"externalPath"`
	LocationsText string   `json:"locationsText"`
	PostedOn      string   `json:"postedOn"`
	BulletFields  []string `json:"bulletFields"` // first entry is the requisition id
}

type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

// WorkdayAdapter searches a Workday career site through its CXS jobs API.
// baseURL is the API root, e.g.
// https://acme.wd5.myworkdayjobs.com/wday/cxs/acme/External.
type WorkdayAdapter struct {
	name        string
	baseURL     string
	siteURL     string // public site root listing paths are relative to
	companyName string
	client      *http.Client
	now         func() time.Time
}

// NewWorkdayAdapter creates a provider for a Workday career site.
func NewWorkdayAdapter(name, baseURL, companyName string, client *http.Client) *WorkdayAdapter {
	baseURL = strings.TrimRight(baseURL, "/")
	return &WorkdayAdapter{
		name:        name,
		baseURL:     baseURL,
		siteURL:     workdaySiteURL(baseURL),
		companyName: companyName,
		client:      client,
		now:         time.Now,
	}
}

func (a *WorkdayAdapter) Name() string { return a.name }

// Fetch runs one upstream search page. Workday does the keyword matching;
// location is narrowed locally because its location facets are site-specific ids.
func (a *WorkdayAdapter) Fetch(ctx context.Context, query, location string, page int) ([]model.JobRecord, error) {
	if page < 1 {
		page = 1
	}
	body, err := json.Marshal(workdayListingRequest{
		AppliedFacets: map[string]any{},
		Limit:         workdayPageSize,
		Offset:        (page - 1) * workdayPageSize,
		SearchText:    query,
	})
	if err != nil {
		return nil, fmt.Errorf("workday listing marshal for %s: %w", a.companyName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("workday listing request for %s: %w", a.companyName, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var listResp workdayListingResponse
	if err := do(a.client, req, "workday listing fetch for "+a.companyName, &listResp); err != nil {
		return nil, err
	}

	locMatcher := filter.NewQueryMatcher("", location)
	records := make([]model.JobRecord, 0, len(listResp.JobPostings))
	for _, l := range listResp.JobPostings {
		rec := a.recordFromListing(l)
		// "3 Locations" says nothing about where; let it through.
		if !isAmbiguousLocation(l.LocationsText) && !locMatcher.Match(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (a *WorkdayAdapter) recordFromListing(l workdayListing) model.JobRecord {
	rec := model.JobRecord{
		ID:       l.ExternalPath,
		Title:    l.Title,
		Company:  a.companyName,
		Location: l.LocationsText,
		PostedAt: parsePostedOn(l.PostedOn, a.now()),
	}
	if len(l.BulletFields) > 0 {
		rec.ID = l.BulletFields[0]
	}
	if l.ExternalPath != "" {
		rec.URL = a.siteURL + "/" + strings.TrimLeft(l.ExternalPath, "/")
	}
	finish(&rec, a.name)
	return rec
}

// workdaySiteURL maps the CXS API root to the public career site:
// https://host/wday/cxs/{tenant}/{site} -> https://host/{site}.
func workdaySiteURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) == 4 && parts[0] == "wday" && parts[1] == "cxs" {
		u.Path = "/" + parts[3]
		return u.String()
	}
	return baseURL
}

var ambiguousLocationRegex = regexp.MustCompile(`^\d+ Locations?$`)

// isAmbiguousLocation returns true for Workday location strings like
// "2 Locations" or "5 Locations" where the actual location is unknown.
func isAmbiguousLocation(loc string) bool {
	return ambiguousLocationRegex.MatchString(loc)
}

var daysAgoRegex = regexp.MustCompile(`^Posted (\d+) Days? Ago$`)

// parsePostedOn converts a Workday relative date string to an approximate
// timestamp at midnight UTC. "Posted 30+ Days Ago" and unknown values yield nil.
func parsePostedOn(postedOn string, now time.Time) *time.Time {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch postedOn {
	case "Posted Today":
		return &today
	case "Posted Yesterday":
		t := today.AddDate(0, 0, -1)
		return &t
	}

	if n, ok := parseDaysAgo(postedOn); ok {
		t := today.AddDate(0, 0, -n)
		return &t
	}
	return nil
}

func parseDaysAgo(s string) (int, bool) {
	matches := daysAgoRegex.FindStringSubmatch(s)
	if matches == nil {
		return 0, false
	}
	n, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
