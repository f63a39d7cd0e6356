package filter

import (
	"testing"

	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/stretchr/testify/assert"
)

func listing(title, company, salary, teaser string) entities.Listing {
	return entities.Listing{ID: "1", Title: title, Company: company, SalaryLabel: salary, Teaser: teaser}
}

func Test_Filter_Check(t *testing.T) {
	cfg := Config{
		SalaryMin:         50,
		ExcludedCompanies: []string{"Bad Corp"},
		RequiredKeywords:  []string{"Developer", "engineer"},
		ExcludedKeywords:  []string{"senior", " "},
	}

	tests := []struct {
		name    string
		listing entities.Listing
		want    error
	}{
		{"hourly rate above minimum", listing("Go Developer", "Acme", "$80 per hour", ""), nil},
		{"no salary label", listing("Go Developer", "Acme", "", ""), nil},
		{"salary without number", listing("Go Developer", "Acme", "Competitive", ""), nil},
		{"salary below minimum", listing("Go Developer", "Acme", "$45.50 per hour", ""), ErrSalaryTooLow},
		{"excluded company wins", listing("Go Developer", "Bad Corp", "$100", "senior"), ErrExcludedCompany},
		{"company match is case-sensitive", listing("Go Developer", "bad corp", "", ""), nil},
		{"keyword in teaser", listing("Tasmania role", "Acme", "", "Looking for an ENGINEER"), nil},
		{"no required keyword", listing("Barista", "Acme", "", "coffee"), ErrMissingKeyword},
		{"excluded keyword", listing("Senior Developer", "Acme", "", ""), ErrExcludedKeyword},
	}

	f := New(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Check(tt.listing))
			assert.Equal(t, tt.want == nil, f.ShouldProcess(tt.listing))
		})
	}
}

func Test_Filter_WhenNoKeywords_ShouldPassEverything(t *testing.T) {
	f := New(Config{})
	assert.True(t, f.ShouldProcess(listing("Anything", "Anyone", "$1", "")))
}

func Test_ParseSalary(t *testing.T) {

	assert := assert.New(t)

	value, ok := ParseSalary("$80,000 - $90,000 + super")
	assert.True(ok)
	assert.Equal(80.0, value)

	value, ok = ParseSalary("$45.50 per hour")
	assert.True(ok)
	assert.Equal(45.5, value)

	value, ok = ParseSalary("Up to 120k")
	assert.True(ok)
	assert.Equal(120.0, value)

	_, ok = ParseSalary("Competitive package")
	assert.False(ok)
}
