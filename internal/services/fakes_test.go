package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"time"

	"posteventcalendar/internal/domain"
)

// In-memory fakes for the service tests. Each fake exposes an err field (or
// per-call error map) so failure paths can be driven from the test body.

type inviteeKey struct {
	postID int64
	userID int64
}

type fakeEventRepo struct {
	byID      map[int64]*domain.Event
	upsertErr error
	getErr    error
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[int64]*domain.Event)}
}

func (f *fakeEventRepo) Upsert(ctx context.Context, event *domain.Event) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	clone := *event
	f.byID[event.ID] = &clone
	return nil
}

func (f *fakeEventRepo) GetByPostID(ctx context.Context, postID int64) (*domain.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	event, ok := f.byID[postID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *event
	return &clone, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, postID int64) error {
	if _, ok := f.byID[postID]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, postID)
	return nil
}

type fakeInviteeRepo struct {
	byKey     map[inviteeKey]*domain.Invitee
	nextID    int64
	createErr error
	listErr   error
	// denyClaim makes MarkNotified lose the claim for the given rows,
	// simulating a concurrent dispatcher winning it first.
	denyClaim map[inviteeKey]bool
}

func newFakeInviteeRepo() *fakeInviteeRepo {
	return &fakeInviteeRepo{
		byKey:     make(map[inviteeKey]*domain.Invitee),
		nextID:    1,
		denyClaim: make(map[inviteeKey]bool),
	}
}

func (f *fakeInviteeRepo) Create(ctx context.Context, inv *domain.Invitee) (bool, error) {
	if f.createErr != nil {
		return false, f.createErr
	}
	key := inviteeKey{inv.PostID, inv.UserID}
	if _, ok := f.byKey[key]; ok {
		return false, nil
	}
	inv.ID = f.nextID
	f.nextID++
	clone := *inv
	f.byKey[key] = &clone
	return true, nil
}

func (f *fakeInviteeRepo) GetByPostAndUser(ctx context.Context, postID, userID int64) (*domain.Invitee, error) {
	inv, ok := f.byKey[inviteeKey{postID, userID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *inv
	return &clone, nil
}

func (f *fakeInviteeRepo) ListByPostID(ctx context.Context, postID int64) ([]*domain.Invitee, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []*domain.Invitee{}
	for key, inv := range f.byKey {
		if key.postID == postID {
			clone := *inv
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Status != out[j].Status {
			return out[i].Status < out[j].Status
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (f *fakeInviteeRepo) ListUnnotified(ctx context.Context, postID int64) ([]*domain.Invitee, error) {
	out := []*domain.Invitee{}
	for key, inv := range f.byKey {
		if key.postID == postID && !inv.Notified {
			clone := *inv
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeInviteeRepo) DeleteWhereUserNotIn(ctx context.Context, postID int64, userIDs []int64) error {
	keep := make(map[int64]struct{}, len(userIDs))
	for _, id := range userIDs {
		keep[id] = struct{}{}
	}
	for key := range f.byKey {
		if key.postID != postID {
			continue
		}
		if _, ok := keep[key.userID]; !ok {
			delete(f.byKey, key)
		}
	}
	return nil
}

func (f *fakeInviteeRepo) DeleteByPostID(ctx context.Context, postID int64) error {
	for key := range f.byKey {
		if key.postID == postID {
			delete(f.byKey, key)
		}
	}
	return nil
}

func (f *fakeInviteeRepo) MarkNotified(ctx context.Context, postID, userID int64) (bool, error) {
	if f.denyClaim[inviteeKey{postID, userID}] {
		return false, nil
	}
	inv, ok := f.byKey[inviteeKey{postID, userID}]
	if !ok || inv.Notified {
		return false, nil
	}
	inv.Notified = true
	return true, nil
}

func (f *fakeInviteeRepo) UpsertAttendance(ctx context.Context, postID, userID int64, status domain.InviteeStatus) (*domain.Invitee, error) {
	key := inviteeKey{postID, userID}
	inv, ok := f.byKey[key]
	if !ok {
		inv = &domain.Invitee{ID: f.nextID, PostID: postID, UserID: userID}
		f.nextID++
		f.byKey[key] = inv
	}
	inv.Status = status
	inv.Notified = true
	inv.UpdatedAt = time.Now().UTC()
	clone := *inv
	return &clone, nil
}

func (f *fakeInviteeRepo) count(postID int64) int {
	n := 0
	for key := range f.byKey {
		if key.postID == postID {
			n++
		}
	}
	return n
}

type fakeUserRepo struct {
	byID       map[int64]*domain.User
	byUsername map[string]*domain.User
	createErr  error
	nextID     int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:       make(map[int64]*domain.User),
		byUsername: make(map[string]*domain.User),
		nextID:     1,
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byUsername[u.Username]; ok {
		return domain.ErrDuplicateUsername
	}
	u.ID = f.nextID
	f.nextID++
	f.byID[u.ID] = u
	f.byUsername[u.Username] = u
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, ok := f.byUsername[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

type fakePostProvider struct {
	byID map[int64]*domain.Post
	err  error
}

func newFakePostProvider(posts ...*domain.Post) *fakePostProvider {
	f := &fakePostProvider{byID: make(map[int64]*domain.Post)}
	for _, p := range posts {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePostProvider) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type fakeParser struct {
	parsed *domain.ParsedEvent
	err    error
}

func (f *fakeParser) Extract(ctx context.Context, raw string) (*domain.ParsedEvent, error) {
	return f.parsed, f.err
}

type fakeResolver struct {
	resolved []int64
	err      error
	calls    int
	lastSpec []string
}

func (f *fakeResolver) Resolve(ctx context.Context, specifiers []string) ([]int64, error) {
	f.calls++
	f.lastSpec = specifiers
	if f.err != nil {
		return nil, f.err
	}
	return f.resolved, nil
}

type fakeNotifier struct {
	sent    []int64
	payload *domain.NotificationPayload
	errFor  map[int64]error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{errFor: make(map[int64]error)}
}

func (f *fakeNotifier) Send(ctx context.Context, userID int64, payload *domain.NotificationPayload) error {
	if err, ok := f.errFor[userID]; ok {
		return err
	}
	f.sent = append(f.sent, userID)
	f.payload = payload
	return nil
}

type publishedEvent struct {
	topicID int64
	eventID int64
}

type fakePublisher struct {
	published []publishedEvent
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, topicID, eventID int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, publishedEvent{topicID, eventID})
	return nil
}

type mirroredField struct {
	topicID int64
	name    string
	value   string
}

type fakeMirror struct {
	upserts []mirroredField
	deletes []mirroredField
	err     error
}

func (f *fakeMirror) Upsert(ctx context.Context, topicID int64, name, value string) error {
	if f.err != nil {
		return f.err
	}
	f.upserts = append(f.upserts, mirroredField{topicID, name, value})
	return nil
}

func (f *fakeMirror) Delete(ctx context.Context, topicID int64, name string) error {
	if f.err != nil {
		return f.err
	}
	f.deletes = append(f.deletes, mirroredField{topicID: topicID, name: name})
	return nil
}

// testEnv bundles an eventService with every fake it was wired from.
type testEnv struct {
	service   domain.EventService
	events    *fakeEventRepo
	invitees  *fakeInviteeRepo
	users     *fakeUserRepo
	posts     *fakePostProvider
	parser    *fakeParser
	resolver  *fakeResolver
	notifier  *fakeNotifier
	publisher *fakePublisher
	mirror    *fakeMirror
}

func newTestEnv(posts ...*domain.Post) *testEnv {
	env := &testEnv{
		events:    newFakeEventRepo(),
		invitees:  newFakeInviteeRepo(),
		users:     newFakeUserRepo(),
		posts:     newFakePostProvider(posts...),
		parser:    &fakeParser{},
		resolver:  &fakeResolver{},
		notifier:  newFakeNotifier(),
		publisher: &fakePublisher{},
		mirror:    &fakeMirror{},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.service = NewEventService(logger, env.events, env.invitees, env.users, env.posts,
		env.parser, env.resolver, env.notifier, env.publisher, env.mirror, 5*time.Second)
	return env
}
