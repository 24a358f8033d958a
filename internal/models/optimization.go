package models

// OptimizationStatus is the lifecycle state of an optimization request.
type OptimizationStatus string

const (
	OptimizationStatusPending   OptimizationStatus = "pending"
	OptimizationStatusReady     OptimizationStatus = "ready"
	OptimizationStatusDeclined  OptimizationStatus = "declined"
	OptimizationStatusOptimized OptimizationStatus = "optimized"
)

// OptimizationRequest proposes netting out the mutual debts of a group.
// Every group member other than the initiator holds one approval; the
// netting run itself considers the initiator plus everyone who approved.
// A successful run moves the request to OptimizationStatusOptimized.
type OptimizationRequest struct {
	ID          string
	GroupID     string
	InitiatorID string
	Status      OptimizationStatus
	Approvals   []OptimizationApproval
	CreatedAt   int64
}

// OptimizationApproval is one member's pending or granted approval of an
// optimization run.
type OptimizationApproval struct {
	ID        string
	RequestID string
	UserID    string
	Approved  bool
}
