package bot

import (
	"fmt"
	"strconv"
	"strings"

	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/seekret-bot/internal/entities"
)

const (
	actionSave       = "save"
	actionHide       = "hide"
	actionApplied    = "applied"
	actionLater      = "later"
	actionDismiss    = "dismiss"
	callbackSplitter = ":"
)

var reminderMessages = []string{
	"Hey! 👋 Just checking in about that job you saved. Have you had a chance to apply yet?",
	"Don't forget about this opportunity! The perfect job won't wait forever. 🚀",
	"Still interested in this position? Now might be the perfect time to apply! ✨",
	"Quick reminder about this job you saved - it's still waiting for your application! 📝",
	"This job caught your eye earlier. Why not take the next step and apply? 🎯",
}

func escape(text string) string {
	return botApi.EscapeText(botApi.ModeHTML, text)
}

func renderListing(listing entities.Listing) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<b><a href=\"%s\">%s</a></b>\n\n", listing.URL(), escape(listing.Title))
	fmt.Fprintf(&sb, "🏢 <b>Company:</b> %s\n", escape(listing.Company))
	fmt.Fprintf(&sb, "📍 <b>Location:</b> %s\n", escape(listing.Location))
	fmt.Fprintf(&sb, "💼 <b>Work Type:</b> %s (%s)\n", escape(listing.WorkType), escape(listing.WorkArrangement))

	if listing.SalaryLabel != "" {
		fmt.Fprintf(&sb, "💰 <b>Salary:</b> %s\n", escape(listing.SalaryLabel))
	}
	if listing.Teaser != "" {
		fmt.Fprintf(&sb, "\n%s\n", escape(listing.Teaser))
	}
	if len(listing.BulletPoints) > 0 {
		sb.WriteString("\n<b>Key Points:</b>\n")
		for _, point := range listing.BulletPoints {
			fmt.Fprintf(&sb, "• %s\n", escape(point))
		}
	}

	footer := "Posted"
	if listing.PostedAtDisplay != "" {
		footer += " " + listing.PostedAtDisplay
	} else if !listing.PostedAt.IsZero() {
		footer += " " + listing.PostedAt.Format("2 Jan 2006 15:04")
	}
	if len(listing.Tags) > 0 {
		footer += " | " + strings.Join(listing.Tags, ", ")
	}
	fmt.Fprintf(&sb, "\n<i>%s</i>", escape(footer))

	return sb.String()
}

func listingKeyboard(listing entities.Listing) botApi.InlineKeyboardMarkup {
	return botApi.NewInlineKeyboardMarkup(
		botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonURL("📝 Apply", listing.URL()),
			botApi.NewInlineKeyboardButtonData("🔖 Save", callbackData(actionSave, listing.ID)),
			botApi.NewInlineKeyboardButtonData("✖️ Not interested", callbackData(actionHide, listing.ID)),
		),
	)
}

func renderReminder(job entities.SavedJob, listing entities.Listing) string {
	var sb strings.Builder

	name := job.UserName
	if name == "" {
		name = strconv.FormatInt(job.UserID, 10)
	}
	fmt.Fprintf(&sb, "<a href=\"tg://user?id=%d\">%s</a>\n", job.UserID, escape(name))
	sb.WriteString("<b>Job Application Reminder</b>\n\n")
	sb.WriteString(escape(reminderMessages[job.ReminderCount%len(reminderMessages)]))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "<b><a href=\"%s\">%s</a></b>", listing.URL(), escape(listing.Title))
	if listing.Company != "" {
		fmt.Fprintf(&sb, " at %s", escape(listing.Company))
	}
	if link := messageLink(job.OriginMessageRef); link != "" {
		fmt.Fprintf(&sb, "\n<a href=\"%s\">View original post</a>", link)
	}
	fmt.Fprintf(&sb, "\n\n<i>Reminder %d of %d</i>", job.ReminderCount+1, entities.MaxReminders)

	return sb.String()
}

func reminderKeyboard(listing entities.Listing) botApi.InlineKeyboardMarkup {
	return botApi.NewInlineKeyboardMarkup(
		botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonURL("📝 Apply Now", listing.URL()),
		),
		botApi.NewInlineKeyboardRow(
			botApi.NewInlineKeyboardButtonData("✅ I've Applied!", callbackData(actionApplied, listing.ID)),
			botApi.NewInlineKeyboardButtonData("⏰ Remind Later", callbackData(actionLater, listing.ID)),
			botApi.NewInlineKeyboardButtonData("✖️ Not Interested", callbackData(actionDismiss, listing.ID)),
		),
	)
}

// messageLink builds a t.me link to a message in a supergroup or channel.
// Other chats have no public message links.
func messageLink(ref entities.MessageRef) string {
	if ref.IsZero() {
		return ""
	}
	chat := strconv.FormatInt(ref.ChatID, 10)
	if !strings.HasPrefix(chat, "-100") {
		return ""
	}
	return fmt.Sprintf("https://t.me/c/%s/%d", strings.TrimPrefix(chat, "-100"), ref.MessageID)
}

func callbackData(action, listingID string) string {
	return action + callbackSplitter + listingID
}

func parseCallbackData(data string) (action, listingID string, ok bool) {
	action, listingID, ok = strings.Cut(data, callbackSplitter)
	return action, listingID, ok && listingID != ""
}
