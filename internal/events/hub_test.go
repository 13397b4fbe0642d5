package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/graduate-survey/internal/models"
)

func TestHubDeliversToAllSubscribers(t *testing.T) {
	h := NewHub()
	a, unsubA := h.Subscribe()
	b, unsubB := h.Subscribe()
	defer unsubB()

	h.Publish(models.SubmissionEvent{ID: "s1", Status: models.StatusComplete})

	assert.Equal(t, "s1", (<-a).ID)
	assert.Equal(t, "s1", (<-b).ID)

	unsubA()
	unsubA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, h.Subscribers())
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	h := NewHub()
	h.buffer = 1
	ch, unsub := h.Subscribe()
	defer unsub()

	h.Publish(models.SubmissionEvent{ID: "first"})
	h.Publish(models.SubmissionEvent{ID: "second"})

	got := <-ch
	assert.Equal(t, "first", got.ID)
	select {
	case e := <-ch:
		require.Failf(t, "unexpected event", "%v", e)
	default:
	}
}
