package filter

import "strings"

// QueryClass selects the freshness window for a search.
type QueryClass int

const (
	ClassJob QueryClass = iota
	ClassFunding
)

func (c QueryClass) String() string {
	switch c {
	case ClassFunding:
		return "funding"
	default:
		return "job"
	}
}

// fundingTerms mark funding and training opportunities, which stay open far
// longer than ordinary job postings.
var fundingTerms = []string{
	"bursary",
	"bursaries",
	"scholarship",
	"funding",
	"learnership",
	"internship",
	"graduate-program",
	"graduate program",
	"graduate programme",
	"trainee",
}

// Classify is a pure function of the query text: the same query always
// yields the same class.
func Classify(query string) QueryClass {
	q := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	for _, term := range fundingTerms {
		if strings.Contains(q, term) {
			return ClassFunding
		}
	}
	return ClassJob
}

// Default freshness windows in days.
const (
	DefaultJobMaxAgeDays     = 7
	DefaultFundingMaxAgeDays = 90
)

// Policy maps a query class to its freshness window.
type Policy struct {
	JobMaxAgeDays     int
	FundingMaxAgeDays int
}

// DefaultPolicy returns the 7 / 90 day windows.
func DefaultPolicy() Policy {
	return Policy{
		JobMaxAgeDays:     DefaultJobMaxAgeDays,
		FundingMaxAgeDays: DefaultFundingMaxAgeDays,
	}
}

// MaxAgeDays returns the window for a class.
func (p Policy) MaxAgeDays(c QueryClass) int {
	if c == ClassFunding {
		return p.FundingMaxAgeDays
	}
	return p.JobMaxAgeDays
}

// MaxAgeFor classifies query and returns its window.
func (p Policy) MaxAgeFor(query string) int {
	return p.MaxAgeDays(Classify(query))
}
