package domain

import "context"

// EventStartsAtFieldName is the topic-level field mirroring an event's start.
const EventStartsAtFieldName = "event_starts_at"

// TopicFieldMirror is a key/value store keyed by (topic, field name), used to
// expose first-post event data at the topic level. Upserted after every
// committed event write, deleted when the event is destroyed.
type TopicFieldMirror interface {
	Upsert(ctx context.Context, topicID int64, name, value string) error
	Delete(ctx context.Context, topicID int64, name string) error
}
