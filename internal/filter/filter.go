package filter

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/samber/lo"
)

var (
	ErrExcludedCompany = errors.New("company is excluded")
	ErrSalaryTooLow    = errors.New("salary is below minimum")
	ErrMissingKeyword  = errors.New("no required keyword")
	ErrExcludedKeyword = errors.New("contains excluded keyword")
)

var salaryNumber = regexp.MustCompile(`\d+\.?\d*`)

type Config struct {
	SalaryMin         float64
	ExcludedCompanies []string
	RequiredKeywords  []string
	ExcludedKeywords  []string
}

// Filter decides whether a new listing is worth posting. Companies match
// exactly, keywords match case-insensitively against title and teaser.
type Filter struct {
	salaryMin         float64
	excludedCompanies map[string]struct{}
	requiredKeywords  []string
	excludedKeywords  []string
}

func New(cfg Config) *Filter {
	return &Filter{
		salaryMin:         cfg.SalaryMin,
		excludedCompanies: lo.SliceToMap(cfg.ExcludedCompanies, func(c string) (string, struct{}) { return c, struct{}{} }),
		requiredKeywords:  normalizeKeywords(cfg.RequiredKeywords),
		excludedKeywords:  normalizeKeywords(cfg.ExcludedKeywords),
	}
}

// Check returns the first rule the listing breaks, or nil.
func (f *Filter) Check(listing entities.Listing) error {
	if _, excluded := f.excludedCompanies[listing.Company]; excluded {
		return ErrExcludedCompany
	}

	if salary, ok := ParseSalary(listing.SalaryLabel); ok && salary < f.salaryMin {
		return ErrSalaryTooLow
	}

	text := strings.ToLower(listing.Title + " " + listing.Teaser)
	contains := func(keyword string) bool { return strings.Contains(text, keyword) }

	if len(f.requiredKeywords) > 0 && !lo.SomeBy(f.requiredKeywords, contains) {
		return ErrMissingKeyword
	}
	if lo.SomeBy(f.excludedKeywords, contains) {
		return ErrExcludedKeyword
	}
	return nil
}

func (f *Filter) ShouldProcess(listing entities.Listing) bool {
	return f.Check(listing) == nil
}

// ParseSalary reads the first number in a free-text salary label,
// so "$80,000 - $90,000" gives 80 and "$45.50 per hour" gives 45.5.
func ParseSalary(label string) (float64, bool) {
	token := salaryNumber.FindString(label)
	if token == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.TrimSuffix(token, "."), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func normalizeKeywords(keywords []string) []string {
	return lo.Uniq(lo.FilterMap(keywords, func(k string, _ int) (string, bool) {
		k = strings.ToLower(strings.TrimSpace(k))
		return k, k != ""
	}))
}
