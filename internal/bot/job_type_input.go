package bot

import (
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/realjobs/internal/entities"
	"strings"
)

type jobTypeInput struct {
	chatID   int64
	onFinish func(jobType entities.JobType)
}

func newJobTypeInput(chatID int64, onFinish func(jobType entities.JobType)) *jobTypeInput {
	return &jobTypeInput{chatID: chatID, onFinish: onFinish}
}

func (a *jobTypeInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, "Is the position remote, hybrid or onsite?")
	msg.ReplyMarkup = jobTypeKeyboard()
	return msg
}

func (a *jobTypeInput) HandleInput(input string) botApi.Chattable {
	jobType, err := entities.ToJobType(strings.ToLower(strings.TrimSpace(input)))
	if err != nil {
		return botApi.NewMessage(a.chatID, "Please pick one of the buttons.")
	}

	a.onFinish(jobType)
	return nil
}

func jobTypeKeyboard() botApi.ReplyKeyboardMarkup {
	return botApi.NewReplyKeyboard(
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(string(entities.Remote)),
			botApi.NewKeyboardButton(string(entities.Hybrid)),
			botApi.NewKeyboardButton(string(entities.Onsite)),
		),
		botApi.NewKeyboardButtonRow(
			botApi.NewKeyboardButton(backToMenuCommandName),
		))
}
