package bot

import "sync"

type userContext struct {
	chatID     int64
	curCommand command
}

func newUserContext(chatID int64) *userContext {
	return &userContext{chatID: chatID}
}

func (u *userContext) RunCommand(command command) {
	u.curCommand = command
	u.curCommand.WithFinishCallback(func() {
		u.curCommand = nil
	})
	u.curCommand.WithKeyboardOnFinalMessage(defaultReplyKeyboard())
	u.curCommand.Run()
}

func (u *userContext) HasRunningCommand() bool {
	return u.curCommand != nil
}

func (u *userContext) OnUserInput(input string) {
	u.curCommand.OnUserInput(input)
}

// userContexts serializes the dialog state of each chat user. Updates are
// handled concurrently, so every access goes through the lock.
type userContexts struct {
	mu       sync.Mutex
	contexts map[int64]*userContext
}

func newUserContexts() *userContexts {
	return &userContexts{contexts: make(map[int64]*userContext)}
}

// With runs fn with the context of the user, creating it when missing.
func (c *userContexts) With(userID, chatID int64, fn func(ctx *userContext)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx := c.contexts[userID]
	if ctx == nil {
		ctx = newUserContext(chatID)
		c.contexts[userID] = ctx
	}
	fn(ctx)
}

func (c *userContexts) Reset(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.contexts, userID)
}
