package models

// MergeStatus is the lifecycle state of a merge request.
type MergeStatus string

const (
	MergeStatusPending   MergeStatus = "pending"
	MergeStatusReady     MergeStatus = "ready"
	MergeStatusDeclined  MergeStatus = "declined"
	MergeStatusCompleted MergeStatus = "completed"
)

// MergeRequest proposes folding two or more groups into a single new group.
// Every member of the involved groups other than the initiator holds one
// approval; the request becomes ready only when all of them approve, and a
// single decline kills it.
type MergeRequest struct {
	ID             string
	InitiatorID    string
	NewName        string
	NewDescription string
	Status         MergeStatus

	// GroupIDs are the groups to be merged.
	GroupIDs []string

	Approvals []MergeApproval
	CreatedAt int64
}

// MergeApproval is one member's pending or granted approval of a merge.
type MergeApproval struct {
	ID             string
	MergeRequestID string
	UserID         string
	Approved       bool
}
