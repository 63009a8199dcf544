package email

import (
	"testing"

	"posteventcalendar/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEventInvitation(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.EventInvitationEmailData{
		Email:      "bob@example.com",
		Name:       "Bob",
		TopicTitle: "Summer party",
		AuthorName: "Alice",
		PostNumber: 1,
	}

	subject, htmlBody, textBody, err := r.Render(domain.EventInvitationMessageKey, data)
	require.NoError(t, err)
	assert.Equal(t, `Alice invited you to an event in "Summer party"`, subject)
	assert.Contains(t, htmlBody, "<strong>Alice</strong>")
	assert.Contains(t, htmlBody, "Summer party")
	assert.Contains(t, textBody, "Hi Bob,")
	assert.Contains(t, textBody, "post #1")
}

func TestRenderEscapesHTML(t *testing.T) {
	r := NewTemplateRenderer()
	data := &domain.EventInvitationEmailData{
		Name:       "Bob",
		TopicTitle: "<script>alert(1)</script>",
		AuthorName: "Alice",
	}

	_, htmlBody, _, err := r.Render(domain.EventInvitationMessageKey, data)
	require.NoError(t, err)
	assert.NotContains(t, htmlBody, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := NewTemplateRenderer()
	_, _, _, err := r.Render("no_such_template", nil)
	require.Error(t, err)
}
