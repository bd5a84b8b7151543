package bot

import (
	"context"
	botApi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/maxaizer/realjobs/internal/auth"
	"github.com/maxaizer/realjobs/internal/entities"
	"github.com/maxaizer/realjobs/internal/services"
	"net/url"
)

const submitJobCommandName = "Submit a job"

type jobSubmitter interface {
	Submit(ctx context.Context, request services.SubmitJobRequest) (*entities.JobPosting, error)
}

type submitJobCommand struct {
	ctx                  context.Context
	api                  apiInterface
	chatID               int64
	user                 entities.User
	jobs                 jobSubmitter
	inputHandlers        []inputHandler
	curHandlerIndex      int
	request              services.SubmitJobRequest
	finishCallback       func()
	finalMessageKeyboard *botApi.ReplyKeyboardMarkup
}

func newSubmitJobCommand(ctx context.Context, api apiInterface, chatID int64, user entities.User,
	jobs jobSubmitter) *submitJobCommand {

	cmd := &submitJobCommand{ctx: ctx, api: api, chatID: chatID, user: user, jobs: jobs}
	next := func(set func(input string)) func(input string) {
		return func(input string) {
			set(input)
			cmd.curHandlerIndex++
		}
	}

	link := newTextInput(chatID, "Send the link to the job posting.",
		next(func(input string) { cmd.request.Url = input }))
	link.AddValidation(validation{function: isURL, errorMessage: "That does not look like a link."})

	title := newTextInput(chatID, "What is the job title?",
		next(func(input string) { cmd.request.Title = input }))
	title.AddValidation(lengthBetween(5, 200))

	company := newTextInput(chatID, "Which company is hiring?",
		next(func(input string) { cmd.request.Company = input }))
	company.AddValidation(lengthBetween(2, 100))

	category := newOptionalTextInput(chatID, "Category, for example \"backend\" or \"design\".",
		next(func(input string) { cmd.request.Category = input }))

	location := newOptionalTextInput(chatID, "Where is the job located?",
		next(func(input string) { cmd.request.Location = input }))
	location.AddValidation(lengthBetween(0, 100))

	jobType := newJobTypeInput(chatID, func(jobType entities.JobType) {
		cmd.request.JobType = string(jobType)
		cmd.curHandlerIndex++
	})

	description := newOptionalTextInput(chatID, "Add a short description.",
		next(func(input string) { cmd.request.Description = input }))
	description.AddValidation(lengthBetween(0, 500))

	cmd.inputHandlers = []inputHandler{link, title, company, category, location, jobType, description}
	return cmd
}

func isURL(input string) bool {
	parsed, err := url.ParseRequestURI(input)
	return err == nil && parsed.Host != "" && (parsed.Scheme == "http" || parsed.Scheme == "https")
}

func (c *submitJobCommand) WithFinishCallback(callback func()) {
	c.finishCallback = callback
}

func (c *submitJobCommand) WithKeyboardOnFinalMessage(keyboard botApi.ReplyKeyboardMarkup) {
	c.finalMessageKeyboard = &keyboard
}

func (c *submitJobCommand) Run() {
	_, _ = sendWithLogError(c.api, c.inputHandlers[0].InitMessage())
}

func (c *submitJobCommand) OnUserInput(input string) {

	previousIndex := c.curHandlerIndex
	msg := c.inputHandlers[c.curHandlerIndex].HandleInput(input)

	handlerChanged := previousIndex != c.curHandlerIndex
	allHandlersFinished := c.curHandlerIndex >= len(c.inputHandlers)

	if !handlerChanged {
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	if !allHandlersFinished {
		_, _ = sendWithLogError(c.api, c.inputHandlers[c.curHandlerIndex].InitMessage())
		return
	}

	c.submit()
	if c.finishCallback != nil {
		c.finishCallback()
	}
}

func (c *submitJobCommand) submit() {

	msg := botApi.NewMessage(c.chatID, "")
	if c.finalMessageKeyboard != nil {
		msg.ReplyMarkup = c.finalMessageKeyboard
	}

	job, err := c.jobs.Submit(auth.WithUser(c.ctx, c.user), c.request)
	if err != nil {
		msg.Text = describeError(err)
		_, _ = sendWithLogError(c.api, msg)
		return
	}

	msg.Text = "Job posted! Its id is " + job.ID
	_, _ = sendWithLogError(c.api, msg)
}
