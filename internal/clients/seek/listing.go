package seek

import (
	"strings"
	"time"

	"github.com/maxaizer/seekret-bot/internal/entities"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

const (
	unknownCompany = "Unknown Company"
	notSpecified   = "Not Specified"
)

type searchResponse struct {
	Data []rawListing `json:"data"`
}

type label struct {
	Label string `json:"label"`
}

type description struct {
	Description string `json:"description"`
}

type workArrangement struct {
	Label struct {
		Text string `json:"text"`
	} `json:"label"`
}

type rawListing struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CompanyName string `json:"companyName"`
	Advertiser  struct {
		ID          string `json:"id"`
		Description string `json:"description"`
	} `json:"advertiser"`
	Locations        []label  `json:"locations"`
	SalaryLabel      string   `json:"salaryLabel"`
	WorkTypes        []string `json:"workTypes"`
	WorkArrangements struct {
		DisplayText string            `json:"displayText"`
		Data        []workArrangement `json:"data"`
	} `json:"workArrangements"`
	Classifications []struct {
		Classification    description `json:"classification"`
		Subclassification description `json:"subclassification"`
	} `json:"classifications"`
	Teaser             string   `json:"teaser"`
	BulletPoints       []string `json:"bulletPoints"`
	Tags               []label  `json:"tags"`
	ListingDate        string   `json:"listingDate"`
	ListingDateDisplay string   `json:"listingDateDisplay"`
	DisplayType        string   `json:"displayType"`
	IsFeatured         bool     `json:"isFeatured"`
	Branding           struct {
		SerpLogoURL string `json:"serpLogoUrl"`
	} `json:"branding"`
}

// toListing resolves the fields the rest of the bot relies on, falling back
// to placeholder values the way the search page itself does.
func (r rawListing) toListing() (entities.Listing, error) {
	if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.Title) == "" {
		return entities.Listing{}, errors.Wrapf(ErrMalformedListing, "listing %q has no id or title", r.ID)
	}

	listing := entities.Listing{
		ID:                r.ID,
		Title:             r.Title,
		Company:           lo.CoalesceOrEmpty(r.Advertiser.Description, r.CompanyName, unknownCompany),
		CompanyID:         r.Advertiser.ID,
		Location:          notSpecified,
		SalaryLabel:       r.SalaryLabel,
		WorkType:          notSpecified,
		WorkArrangement:   r.WorkArrangements.DisplayText,
		Classification:    notSpecified,
		Subclassification: notSpecified,
		Teaser:            r.Teaser,
		BulletPoints:      r.BulletPoints,
		Tags:              lo.Compact(lo.Map(r.Tags, labelText)),
		DisplayType:       r.DisplayType,
		IsFeatured:        r.IsFeatured,
		PostedAtDisplay:   r.ListingDateDisplay,
		LogoURL:           r.Branding.SerpLogoURL,
	}

	if len(r.Locations) > 0 && r.Locations[0].Label != "" {
		listing.Location = r.Locations[0].Label
	}
	if len(r.Classifications) > 0 {
		first := r.Classifications[0]
		listing.Classification = lo.CoalesceOrEmpty(first.Classification.Description, notSpecified)
		listing.Subclassification = lo.CoalesceOrEmpty(first.Subclassification.Description, notSpecified)
	}
	if workTypes := lo.Compact(r.WorkTypes); len(workTypes) > 0 {
		listing.WorkType = strings.Join(workTypes, " & ")
	}
	if listing.WorkArrangement == "" {
		arrangements := lo.Compact(lo.Map(r.WorkArrangements.Data, func(a workArrangement, _ int) string {
			return a.Label.Text
		}))
		listing.WorkArrangement = lo.CoalesceOrEmpty(strings.Join(arrangements, ", "), notSpecified)
	}

	return listing, nil
}

func (r rawListing) postedAt() (time.Time, error) {
	if r.ListingDate == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, r.ListingDate)
}

func labelText(l label, _ int) string {
	return l.Label
}
