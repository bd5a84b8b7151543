package events

import "github.com/maxaizer/realjobs/internal/entities"

var CommentCreatedTopic = "CommentCreatedEvent"

type CommentCreated struct {
	Comment       entities.Comment
	AuthorName    string
	AutoDownvoted bool
}
