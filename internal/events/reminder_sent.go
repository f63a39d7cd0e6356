package events

import (
	"time"

	"github.com/maxaizer/seekret-bot/internal/entities"
)

var ReminderSentTopic = "ReminderSentEvent"

type ReminderSent struct {
	Job     entities.SavedJob
	Attempt int
	SentAt  time.Time
}
