package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewportNearBottomThreshold(t *testing.T) {
	v := &Viewport{ContentHeight: 1000, Height: 400, ScrollTop: 600}
	assert.True(t, v.NearBottom(), "exactly at the bottom")

	v.ScrollTop = 1000 - 400 - (NearBottomThreshold - 1)
	assert.True(t, v.NearBottom(), "just inside the threshold")

	v.ScrollTop = 1000 - 400 - NearBottomThreshold
	assert.False(t, v.NearBottom(), "at the threshold boundary")

	v.ScrollTop = 0
	assert.False(t, v.NearBottom())
}

func TestViewportScrollToBottomClamps(t *testing.T) {
	v := &Viewport{ContentHeight: 100, Height: 400}
	v.ScrollToBottom()
	assert.Equal(t, 0, v.ScrollTop, "short content never scrolls negative")

	v = &Viewport{ContentHeight: 1000, Height: 400}
	v.ScrollToBottom()
	assert.Equal(t, 600, v.ScrollTop)
}

func TestViewportAfterPollRules(t *testing.T) {
	// Forced scroll (init, direct send) always pins the view.
	v := &Viewport{ContentHeight: 1000, Height: 400, ScrollTop: 0}
	v.AfterPoll(true, false, ApplyResult{})
	assert.Equal(t, 600, v.ScrollTop)

	// Background arrival with the view scrolled up stays put.
	v = &Viewport{ContentHeight: 1000, Height: 400, ScrollTop: 0}
	v.AfterPoll(false, false, ApplyResult{Appended: []*Entry{{Text: "x", FromClient: true}}})
	assert.Equal(t, 0, v.ScrollTop)

	// Near-bottom views follow new content.
	v = &Viewport{ContentHeight: 1000, Height: 400, ScrollTop: 0}
	v.AfterPoll(false, true, ApplyResult{})
	assert.Equal(t, 600, v.ScrollTop)

	// An assistant arrival reveals itself even away from the bottom.
	v = &Viewport{ContentHeight: 1000, Height: 400, ScrollTop: 0}
	v.AfterPoll(false, false, ApplyResult{AssistantArrived: true})
	assert.Equal(t, 600, v.ScrollTop)
}
