package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/amishk599/jobhub/internal/model"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
)

type adzunaResponse struct {
	Results []adzunaResult `json:"results"`
	Count   int            `json:"count"`
}

type adzunaResult struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Company      adzunaName     `json:"company"`
	Location     adzunaName     `json:"location"`
	SalaryMin    float64        `json:"salary_min"`
	SalaryMax    float64        `json:"salary_max"`
	RedirectURL  string         `json:"redirect_url"`
	Created      string         `json:"created"`
	ContractTime string         `json:"contract_time"`
	ContractType string         `json:"contract_type"`
	Category     adzunaCategory `json:"category"`
}

type adzunaName struct {
	DisplayName string `json:"display_name"`
}

type adzunaCategory struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

var adzunaCurrency = map[string]string{
	"za": "R", "gb": "£", "us": "$", "au": "A$", "ca": "C$", "in": "₹",
	"de": "€", "fr": "€", "nl": "€", "it": "€", "es": "€", "at": "€",
}

// AdzunaAdapter is the primary structured search API.
type AdzunaAdapter struct {
	name    string
	appID   string
	appKey  string
	country string
	baseURL string
	client  *http.Client
}

// NewAdzunaAdapter creates the Adzuna provider. Missing credentials are not
// an error here; Fetch reports them as model.ErrNoCredentials.
func NewAdzunaAdapter(name, appID, appKey, country string, client *http.Client) *AdzunaAdapter {
	if country == "" {
		country = "za"
	}
	return &AdzunaAdapter{
		name:    name,
		appID:   appID,
		appKey:  appKey,
		country: strings.ToLower(country),
		baseURL: adzunaBaseURL,
		client:  client,
	}
}

func (a *AdzunaAdapter) Name() string { return a.name }

// Fetch requests one page of upstream search results, newest first.
func (a *AdzunaAdapter) Fetch(ctx context.Context, query, location string, page int) ([]model.JobRecord, error) {
	if a.appID == "" || a.appKey == "" {
		return nil, fmt.Errorf("adzuna: %w", model.ErrNoCredentials)
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(adzunaPageSize))
	params.Set("what", query)
	if location != "" {
		params.Set("where", location)
	}
	params.Set("content-type", "application/json")
	params.Set("sort_by", "date")

	endpoint := fmt.Sprintf("%s/%s/search/%d?%s", a.baseURL, a.country, page, params.Encode())
	var resp adzunaResponse
	if err := getJSON(ctx, a.client, endpoint, "adzuna search", &resp); err != nil {
		return nil, err
	}

	records := make([]model.JobRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		rec := model.JobRecord{
			ID:          r.ID,
			Title:       extractText(r.Title),
			Company:     r.Company.DisplayName,
			Location:    r.Location.DisplayName,
			Description: extractText(r.Description),
			URL:         r.RedirectURL,
			PostedAt:    model.ParsePostedAt(r.Created),
			Salary:      a.salary(r.SalaryMin, r.SalaryMax),
		}
		if r.Category.Tag == "graduate-jobs" {
			rec.Kind = model.KindGraduateProgram
		}
		finish(&rec, a.name)
		records = append(records, rec)
	}
	return records, nil
}

func (a *AdzunaAdapter) salary(lo, hi float64) string {
	cur := adzunaCurrency[a.country]
	switch {
	case lo > 0 && hi > 0 && lo != hi:
		return fmt.Sprintf("%s%.0f - %s%.0f", cur, lo, cur, hi)
	case hi > 0:
		return fmt.Sprintf("%s%.0f", cur, hi)
	case lo > 0:
		return fmt.Sprintf("%s%.0f", cur, lo)
	}
	return ""
}
