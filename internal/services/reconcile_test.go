package services

import (
	"context"
	"testing"

	"posteventcalendar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func privateEvent(postID int64, rawInvitees ...string) *domain.Event {
	return &domain.Event{
		ID:          postID,
		StartsAt:    futureStart,
		Status:      domain.StatusPrivate,
		RawInvitees: rawInvitees,
	}
}

func TestReconcileInvitees_FillsMissingAndNotifies(t *testing.T) {
	ctx := context.Background()
	post := &domain.Post{ID: 10, TopicID: 5, PostNumber: 1, AuthorID: 1, TopicTitle: "Offsite"}
	env := newTestEnv(post)
	env.users.byID[1] = &domain.User{ID: 1, Username: "alice"}
	env.resolver.resolved = []int64{2, 3}

	require.NoError(t, env.service.ReconcileInvitees(ctx, privateEvent(10, "staff")))

	stored, err := env.invitees.ListByPostID(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, inv := range stored {
		assert.Equal(t, domain.InviteeGoing, inv.Status)
		assert.True(t, inv.Notified)
	}
	assert.ElementsMatch(t, []int64{2, 3}, env.notifier.sent)
	assert.Equal(t, "alice", env.notifier.payload.AuthorName)
}

func TestReconcileInvitees_Idempotent(t *testing.T) {
	ctx := context.Background()
	post := &domain.Post{ID: 10, TopicID: 5, PostNumber: 1, AuthorID: 1}
	env := newTestEnv(post)
	env.users.byID[1] = &domain.User{ID: 1, Username: "alice"}
	env.resolver.resolved = []int64{2, 3}
	event := privateEvent(10, "staff")

	require.NoError(t, env.service.ReconcileInvitees(ctx, event))
	require.NoError(t, env.service.ReconcileInvitees(ctx, event))

	// Same roster twice: no duplicate rows, no repeated notifications.
	assert.Equal(t, 2, env.invitees.count(10))
	assert.ElementsMatch(t, []int64{2, 3}, env.notifier.sent)
}

func TestReconcileInvitees_RemovesExtraneous(t *testing.T) {
	ctx := context.Background()
	post := &domain.Post{ID: 10, TopicID: 5, PostNumber: 1, AuthorID: 1}
	env := newTestEnv(post)
	env.users.byID[1] = &domain.User{ID: 1, Username: "alice"}
	env.invitees.byKey[inviteeKey{10, 2}] = &domain.Invitee{ID: 1, PostID: 10, UserID: 2, Notified: true}
	env.invitees.byKey[inviteeKey{10, 3}] = &domain.Invitee{ID: 2, PostID: 10, UserID: 3, Notified: true}
	env.resolver.resolved = []int64{3, 4}

	require.NoError(t, env.service.ReconcileInvitees(ctx, privateEvent(10, "staff")))

	_, err := env.invitees.GetByPostAndUser(ctx, 10, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	// User 3 survives untouched, user 4 is new and gets the notification.
	kept, err := env.invitees.GetByPostAndUser(ctx, 10, 3)
	require.NoError(t, err)
	assert.True(t, kept.Notified)
	assert.Equal(t, []int64{4}, env.notifier.sent)
}

func TestReconcileInvitees_EmptyRosterRemovesAll(t *testing.T) {
	ctx := context.Background()
	post := &domain.Post{ID: 10, TopicID: 5, PostNumber: 1, AuthorID: 1}
	env := newTestEnv(post)
	env.invitees.byKey[inviteeKey{10, 2}] = &domain.Invitee{ID: 1, PostID: 10, UserID: 2, Notified: true}
	env.resolver.resolved = []int64{}

	require.NoError(t, env.service.ReconcileInvitees(ctx, privateEvent(10)))
	assert.Equal(t, 0, env.invitees.count(10))
	assert.Empty(t, env.notifier.sent)
}

func TestReconcileInvitees_SendFailureIsLoggedAndSkipped(t *testing.T) {
	ctx := context.Background()
	post := &domain.Post{ID: 10, TopicID: 5, PostNumber: 1, AuthorID: 1}
	env := newTestEnv(post)
	env.users.byID[1] = &domain.User{ID: 1, Username: "alice"}
	env.resolver.resolved = []int64{2, 3}
	env.notifier.errFor[2] = assert.AnError

	require.NoError(t, env.service.ReconcileInvitees(ctx, privateEvent(10, "staff")))

	// The failed delivery does not block the remaining invitees, and the
	// claimed row is not retried on the next run.
	assert.Equal(t, []int64{3}, env.notifier.sent)
	require.NoError(t, env.service.ReconcileInvitees(ctx, privateEvent(10, "staff")))
	assert.Equal(t, []int64{3}, env.notifier.sent)
}

func TestReconcileInvitees_ClaimedRowIsNotSentTwice(t *testing.T) {
	ctx := context.Background()
	post := &domain.Post{ID: 10, TopicID: 5, PostNumber: 1, AuthorID: 1}
	env := newTestEnv(post)
	env.users.byID[1] = &domain.User{ID: 1, Username: "alice"}
	env.resolver.resolved = []int64{2}
	// The row lists as unnotified, but a concurrent dispatcher wins the claim
	// between the listing and this run's MarkNotified.
	env.invitees.byKey[inviteeKey{10, 2}] = &domain.Invitee{ID: 1, PostID: 10, UserID: 2}
	env.invitees.denyClaim[inviteeKey{10, 2}] = true

	require.NoError(t, env.service.ReconcileInvitees(ctx, privateEvent(10, "staff")))
	assert.Empty(t, env.notifier.sent)
}

func TestReconcileInvitees_ResolverFailureAborts(t *testing.T) {
	ctx := context.Background()
	post := &domain.Post{ID: 10, TopicID: 5, PostNumber: 1, AuthorID: 1}
	env := newTestEnv(post)
	env.invitees.byKey[inviteeKey{10, 2}] = &domain.Invitee{ID: 1, PostID: 10, UserID: 2}
	env.resolver.err = assert.AnError

	err := env.service.ReconcileInvitees(ctx, privateEvent(10, "staff"))
	require.Error(t, err)
	// Nothing was deleted on the failed resolution.
	assert.Equal(t, 1, env.invitees.count(10))
}
