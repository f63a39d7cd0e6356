package entities

import "time"

const jobBaseURL = "https://www.seek.com.au/job/"

type Listing struct {
	ID                string `gorm:"primaryKey"`
	Title             string
	Company           string `gorm:"index"`
	CompanyID         string
	Location          string
	SalaryLabel       string
	WorkType          string
	WorkArrangement   string
	Classification    string
	Subclassification string
	Teaser            string
	BulletPoints      []string `gorm:"serializer:json"`
	Tags              []string `gorm:"serializer:json"`
	PostedAt          time.Time
	ProcessedAt       time.Time `gorm:"index"`
	DisplayType       string
	IsFeatured        bool

	// presentation only, not persisted
	PostedAtDisplay string `gorm:"-"`
	LogoURL         string `gorm:"-"`
}

func (l Listing) URL() string {
	return jobBaseURL + l.ID
}
