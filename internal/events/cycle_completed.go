package events

import "github.com/maxaizer/seekret-bot/internal/entities"

var CycleCompletedTopic = "CycleCompletedEvent"

type CycleCompleted struct {
	Result entities.CycleResult
}
