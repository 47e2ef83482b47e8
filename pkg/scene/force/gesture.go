package force

import "time"

// Gesture timing.
const (
	// armDelay separates a click from a drag: pointer movement before the
	// delay fires does not move the node.
	armDelay = 300 * time.Millisecond

	// releaseReturn is the drag-release return animation duration.
	releaseReturn = 500 * time.Millisecond

	// freeMoveReturn is the return animation when free-move mode turns off.
	freeMoveReturn = 750 * time.Millisecond

	// hoverGrow is the hover scale transition duration.
	hoverGrow = 200 * time.Millisecond

	// hoverScale is the visual magnification of a hovered node's content.
	hoverScale = 1.5
)

// GestureState enumerates the drag state machine.
//
//	Idle → Pending (pointer down) → Dragging (after armDelay)
//	     → Releasing (pointer up, free-move off) → Idle
//
// A pointer-up while still Pending is a plain click and reports
// selection intent instead of a drag.
type GestureState int

const (
	GestureIdle GestureState = iota
	GesturePending
	GestureDragging
	GestureReleasing
)

// gesture tracks one in-flight pointer interaction.
type gesture struct {
	state  GestureState
	nodeID string
	armAt  time.Time // when the pending gesture arms into a drag

	// Pointer position in world coordinates, tracked while armed.
	x, y float64
}

// reset clears the gesture back to Idle. A queued arm deadline that has not
// fired must never fire after the scene is torn down, so reset is also the
// cancellation path.
func (g *gesture) reset() {
	g.state = GestureIdle
	g.nodeID = ""
}
