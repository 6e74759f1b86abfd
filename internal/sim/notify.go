package sim

import "github.com/vovakirdan/dunesim/internal/core"

// NotificationKind classifies side-channel events for the presentation layer.
type NotificationKind uint8

const (
	NoteConstructionComplete NotificationKind = iota
	NoteUnitDeployed
	NoteUnderAttack
	NoteStructureCaptured
	NoteUnitDestroyed
	NoteSpiceBloomIgnited
	NoteCarryallDelivered
	NoteDesync
	NoteDeviationEnded
	NoteDeathHandLaunched
)

func (k NotificationKind) String() string {
	switch k {
	case NoteConstructionComplete:
		return "construction complete"
	case NoteUnitDeployed:
		return "unit deployed"
	case NoteUnderAttack:
		return "under attack"
	case NoteStructureCaptured:
		return "structure captured"
	case NoteUnitDestroyed:
		return "unit destroyed"
	case NoteSpiceBloomIgnited:
		return "spice bloom ignited"
	case NoteCarryallDelivered:
		return "carryall delivered"
	case NoteDesync:
		return "desync"
	case NoteDeviationEnded:
		return "deviation ended"
	case NoteDeathHandLaunched:
		return "death hand launched"
	default:
		return "unknown"
	}
}

// Notification is a fire-and-forget event.
type Notification struct {
	Kind   NotificationKind
	Tick   uint32
	Player PlayerID
	Object ObjectID
	Item   ItemID
	Pos    core.Coord
}

// Notifier receives notifications. Implementations must not block and
// must not call back into the world.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

// ChannelNotifier forwards notifications to a buffered channel and drops
// them when the reader falls behind.
type ChannelNotifier struct {
	C chan Notification
}

// NewChannelNotifier creates a notifier with the given buffer size.
func NewChannelNotifier(buffer int) *ChannelNotifier {
	return &ChannelNotifier{C: make(chan Notification, buffer)}
}

func (n *ChannelNotifier) Notify(note Notification) {
	select {
	case n.C <- note:
	default:
	}
}

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}
