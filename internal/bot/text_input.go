package bot

import (
	"fmt"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"strings"
	"unicode/utf8"
)

// skipInput leaves an optional field empty.
const skipInput = "-"

type validation struct {
	function     func(input string) bool
	errorMessage string
}

type textInput struct {
	chatID      int64
	initMessage string
	optional    bool
	onFinish    func(input string)
	validations []validation
}

func newTextInput(chatID int64, initMessage string, onFinish func(input string)) *textInput {
	return &textInput{chatID: chatID, initMessage: initMessage, onFinish: onFinish}
}

func newOptionalTextInput(chatID int64, initMessage string, onFinish func(input string)) *textInput {
	input := newTextInput(chatID, initMessage+"\nSend \""+skipInput+"\" to skip.", onFinish)
	input.optional = true
	return input
}

func (a *textInput) AddValidation(validation validation) {
	a.validations = append(a.validations, validation)
}

func (a *textInput) InitMessage() botApi.Chattable {
	msg := botApi.NewMessage(a.chatID, a.initMessage)
	msg.ReplyMarkup = keyboardWithExit()
	return msg
}

func (a *textInput) HandleInput(input string) botApi.Chattable {

	input = strings.TrimSpace(input)
	if a.optional && input == skipInput {
		a.onFinish("")
		return nil
	}

	for _, _validation := range a.validations {
		if !_validation.function(input) {
			return botApi.NewMessage(a.chatID, _validation.errorMessage)
		}
	}

	a.onFinish(input)
	return nil
}

func lengthBetween(minLen, maxLen int) validation {
	return validation{
		function: func(input string) bool {
			length := utf8.RuneCountInString(input)
			return length >= minLen && length <= maxLen
		},
		errorMessage: fmt.Sprintf("Length must be between %d and %d characters.", minLen, maxLen),
	}
}
