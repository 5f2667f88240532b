package returns

// WorkflowState represents the lifecycle stage of a return transaction
type WorkflowState string

const (
	WorkflowStateInitiated          WorkflowState = "INITIATED"
	WorkflowStateValidated          WorkflowState = "VALIDATED"
	WorkflowStateItemsReceived      WorkflowState = "ITEMS_RECEIVED"
	WorkflowStateInspectionPending  WorkflowState = "INSPECTION_PENDING"
	WorkflowStateInspectionComplete WorkflowState = "INSPECTION_COMPLETE"
	WorkflowStateRefundApproved     WorkflowState = "REFUND_APPROVED"
	WorkflowStateRefundProcessed    WorkflowState = "REFUND_PROCESSED"
	WorkflowStateCompleted          WorkflowState = "COMPLETED"
	WorkflowStateCancelled          WorkflowState = "CANCELLED"
)

// workflowTransitions is the allow-list of forward edges.
// CANCELLED is handled separately: it is reachable from every state
// strictly before REFUND_PROCESSED.
var workflowTransitions = map[WorkflowState][]WorkflowState{
	WorkflowStateInitiated:          {WorkflowStateValidated},
	WorkflowStateValidated:          {WorkflowStateItemsReceived},
	WorkflowStateItemsReceived:      {WorkflowStateInspectionPending, WorkflowStateRefundApproved},
	WorkflowStateInspectionPending:  {WorkflowStateInspectionComplete},
	WorkflowStateInspectionComplete: {WorkflowStateRefundApproved},
	WorkflowStateRefundApproved:     {WorkflowStateRefundProcessed},
	WorkflowStateRefundProcessed:    {WorkflowStateCompleted},
	WorkflowStateCompleted:          {},
	WorkflowStateCancelled:          {},
}

// IsValid checks if the state is a known WorkflowState
func (s WorkflowState) IsValid() bool {
	_, ok := workflowTransitions[s]
	return ok
}

// String returns the string representation of the workflow state
func (s WorkflowState) String() string {
	return string(s)
}

// CanTransitionTo checks if the state can transition to the target state
func (s WorkflowState) CanTransitionTo(target WorkflowState) bool {
	if target == WorkflowStateCancelled {
		return s.CanCancel()
	}
	for _, next := range workflowTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// CanCancel reports whether cancellation is still allowed from this state.
// Once a refund has been processed funds have moved, so cancellation is closed.
func (s WorkflowState) CanCancel() bool {
	switch s {
	case WorkflowStateInitiated, WorkflowStateValidated, WorkflowStateItemsReceived,
		WorkflowStateInspectionPending, WorkflowStateInspectionComplete, WorkflowStateRefundApproved:
		return true
	}
	return false
}

// IsTerminal returns true if no further transition can leave this state
func (s WorkflowState) IsTerminal() bool {
	return s == WorkflowStateCompleted || s == WorkflowStateCancelled
}

// AllWorkflowStates returns every defined workflow state, in lifecycle order
func AllWorkflowStates() []WorkflowState {
	return []WorkflowState{
		WorkflowStateInitiated,
		WorkflowStateValidated,
		WorkflowStateItemsReceived,
		WorkflowStateInspectionPending,
		WorkflowStateInspectionComplete,
		WorkflowStateRefundApproved,
		WorkflowStateRefundProcessed,
		WorkflowStateCompleted,
		WorkflowStateCancelled,
	}
}
