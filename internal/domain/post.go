package domain

import "context"

// Post is the content item an event attaches to. It carries what the core
// needs from the hosting forum: identity, thread placement, author, and the
// current raw text the parser reads.
type Post struct {
	ID         int64  `json:"id"`
	TopicID    int64  `json:"topic_id"`
	PostNumber int    `json:"post_number"`
	AuthorID   int64  `json:"author_id"`
	TopicTitle string `json:"topic_title"`
	Raw        string `json:"raw"`
}

// IsFirstPost reports whether this is the opening post of its topic. Only
// first-post events mirror their start time onto the topic.
func (p *Post) IsFirstPost() bool {
	return p.PostNumber == 1
}

// PostProvider supplies posts to the core read paths.
type PostProvider interface {
	GetByID(ctx context.Context, id int64) (*Post, error)
}
