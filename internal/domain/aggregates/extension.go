package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rishiwork16-sys/skilledUp-Website/internal/domain/tasks"
)

var ExtensionAggregateContract = Contract{
	Name:             "Tasks.ExtensionAggregate",
	Owns:             "extension_requests",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Reviews an extension request and patches the matching schedule atomically.",
}

// ExtensionAggregate owns the single review of an ExtensionRequest.
type ExtensionAggregate interface {
	Aggregate

	// Review approves or rejects a pending request. Approval extends the
	// matching schedule's deadline in the same transaction.
	Review(ctx context.Context, in ReviewExtensionInput) (ReviewExtensionResult, error)
}

type ReviewExtensionInput struct {
	RequestID  uuid.UUID
	Approved   bool
	ReviewedAt time.Time
}

type ReviewExtensionResult struct {
	Request  *tasks.ExtensionRequest
	Schedule *tasks.TaskSchedule
}
