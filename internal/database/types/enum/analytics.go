package enum

// EventKind is the kind of a recorded interaction event.
type EventKind string

const (
	// EventKindImpression counts a listing render.
	EventKindImpression EventKind = "impression"
	// EventKindClick counts a click through to a server page.
	EventKindClick EventKind = "click"
	// EventKindCopy counts a copy of the server address.
	EventKindCopy EventKind = "copy"
	// EventKindVote counts a cast vote.
	EventKindVote EventKind = "vote"
	// EventKindReview counts a posted review.
	EventKindReview EventKind = "review"
)

// Valid reports whether the kind is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventKindImpression, EventKindClick, EventKindCopy, EventKindVote, EventKindReview:
		return true
	default:
		return false
	}
}
