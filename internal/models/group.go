package models

// Group represents a set of users who track debts against each other.
// Debts, invites, merge requests and optimization requests all belong
// to exactly one group.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g. "Roommates").
	Name string

	// Description is an optional free-form description.
	Description string

	// Members is the list of member user IDs.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// InviteStatus is the lifecycle state of a group invite.
type InviteStatus string

const (
	InviteStatusInvited  InviteStatus = "invited"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
)

// GroupInvite is an invitation for a user to join a group. Only the invited
// user may accept it; accepting adds them to the group's member list.
type GroupInvite struct {
	ID        string
	GroupID   string
	InviterID string
	InvitedID string
	Status    InviteStatus
	CreatedAt int64
}
