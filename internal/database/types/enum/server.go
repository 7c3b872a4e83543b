package enum

// ServerStatus is the moderation lifecycle state of a listed server.
type ServerStatus string

const (
	// ServerStatusPending awaits admin review after submission.
	ServerStatusPending ServerStatus = "pending"
	// ServerStatusApproved is publicly listed and monitored.
	ServerStatusApproved ServerStatus = "approved"
	// ServerStatusRejected was declined by an admin; re-review may approve it later.
	ServerStatusRejected ServerStatus = "rejected"
)

// Valid reports whether the status is a known moderation state.
func (s ServerStatus) Valid() bool {
	switch s {
	case ServerStatusPending, ServerStatusApproved, ServerStatusRejected:
		return true
	default:
		return false
	}
}

// ClientFamily identifies which client ecosystem a server speaks.
type ClientFamily string

const (
	ClientFamilyJava    ClientFamily = "java"
	ClientFamilyBedrock ClientFamily = "bedrock"
	ClientFamilyBoth    ClientFamily = "both"
)

// Valid reports whether the family is a known client ecosystem.
func (f ClientFamily) Valid() bool {
	switch f {
	case ClientFamilyJava, ClientFamilyBedrock, ClientFamilyBoth:
		return true
	default:
		return false
	}
}
