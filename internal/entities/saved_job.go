package entities

import "time"

const (
	MaxReminders     = 3
	ReminderCooldown = 24 * time.Hour
	ReminderPeriod   = time.Hour
)

type SavedJobStatus string

const (
	StatusSaved     SavedJobStatus = "saved"
	StatusApplied   SavedJobStatus = "applied"
	StatusDismissed SavedJobStatus = "dismissed"
)

func (s SavedJobStatus) IsTerminal() bool {
	return s == StatusApplied || s == StatusDismissed
}

type SavedJob struct {
	ListingID        string `gorm:"primaryKey"`
	UserID           int64  `gorm:"primaryKey"`
	UserName         string
	SavedAt          time.Time
	LastReminderAt   *time.Time
	ReminderCount    int            `gorm:"not null;default:0"`
	Status           SavedJobStatus `gorm:"not null;default:saved;index"`
	OriginMessageRef MessageRef     `gorm:"embedded;embeddedPrefix:origin_"`
}

// MessageRef points back at the chat message a listing was posted as.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

func (r MessageRef) IsZero() bool {
	return r.ChatID == 0 && r.MessageID == 0
}

func NewSavedJob(listingID string, userID int64, userName string, origin MessageRef, now time.Time) SavedJob {
	return SavedJob{
		ListingID:        listingID,
		UserID:           userID,
		UserName:         userName,
		SavedAt:          now.UTC(),
		Status:           StatusSaved,
		OriginMessageRef: origin,
	}
}

// DueForReminder mirrors the eligibility query used by the saved jobs repository.
func (s SavedJob) DueForReminder(now time.Time) bool {
	if s.Status != StatusSaved || s.ReminderCount >= MaxReminders {
		return false
	}
	return s.LastReminderAt == nil || now.Sub(*s.LastReminderAt) >= ReminderCooldown
}

// Dormant reports a saved job that used up its reminders without any user action.
func (s SavedJob) Dormant() bool {
	return s.Status == StatusSaved && s.ReminderCount >= MaxReminders
}
