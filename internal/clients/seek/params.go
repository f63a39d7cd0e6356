package seek

import (
	"errors"
	"net/url"
	"strconv"
)

const (
	siteKey      = "AU-Main"
	sourceSystem = "houston"
	includeData  = "seodata,joracrosslink,gptTargeting"
	locale       = "en-AU"
)

type SearchParameters struct {
	Where    string
	Page     int
	PageSize int
	SortMode string
}

func (p SearchParameters) Validate() error {
	var errs []error
	if p.Where == "" {
		errs = append(errs, errors.New("where is required"))
	}
	if p.Page < 1 {
		errs = append(errs, errors.New("page must be positive"))
	}
	if p.PageSize < 1 || p.PageSize > 100 {
		errs = append(errs, errors.New("page size must be between 1 and 100"))
	}
	if p.SortMode == "" {
		errs = append(errs, errors.New("sort mode is required"))
	}
	return errors.Join(errs...)
}

func (p SearchParameters) ToUrlParams() url.Values {
	params := url.Values{}
	params.Set("siteKey", siteKey)
	params.Set("sourcesystem", sourceSystem)
	params.Set("where", p.Where)
	params.Set("page", strconv.Itoa(p.Page))
	params.Set("sortmode", p.SortMode)
	params.Set("pageSize", strconv.Itoa(p.PageSize))
	params.Set("include", includeData)
	params.Set("locale", locale)
	return params
}
