package reconcile

// NearBottomThreshold is how close to the bottom, in pixels, the view must be
// for background arrivals to keep it pinned there.
const NearBottomThreshold = 24

// Viewport models the scroll position of the conversation pane. Scrolling is
// forced on initialization and direct sends; background arrivals only pin the
// view when it already sits near the bottom.
type Viewport struct {
	ContentHeight int
	Height        int
	ScrollTop     int
}

// NearBottom reports whether the view sits within the threshold of the end of
// the content.
func (v *Viewport) NearBottom() bool {
	return v.ContentHeight-v.ScrollTop-v.Height < NearBottomThreshold
}

// ScrollToBottom pins the view to the end of the content.
func (v *Viewport) ScrollToBottom() {
	v.ScrollTop = v.ContentHeight - v.Height
	if v.ScrollTop < 0 {
		v.ScrollTop = 0
	}
}

// AfterPoll applies the scroll rule for one poll. wasNearBottom must be
// captured before the poll's entries grew the content. force is set on
// initialization and direct sends; an assistant arrival always reveals
// itself even when the view sat away from the bottom.
func (v *Viewport) AfterPoll(force, wasNearBottom bool, res ApplyResult) {
	if force || wasNearBottom || res.AssistantArrived {
		v.ScrollToBottom()
	}
}
