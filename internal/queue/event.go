// Package queue defines message payloads exchanged over the message broker.
package queue

// SlotChangedQueueName is the durable queue carrying slot-change events.
const SlotChangedQueueName = "slots.changed"

// Kinds of slot changes published after a successful mutation.
const (
	KindRuleCreated      = "rule.created"
	KindRuleRemoved      = "rule.removed"
	KindExceptionUpsert  = "exception.upserted"
	KindExceptionRemoved = "exception.removed"
)

// SlotChangedEvent is published when a recurring rule or one of its
// exceptions changes. It carries enough information for downstream
// consumers to log, notify, or invalidate derived views without querying
// the primary database.
type SlotChangedEvent struct {
	Kind        string  `json:"kind"`
	SlotID      uint64  `json:"slot_id"`
	ExceptionID *uint64 `json:"exception_id,omitempty"`
	Date        string  `json:"date,omitempty"`
	DayOfWeek   *int    `json:"day_of_week,omitempty"`
	StartTime   string  `json:"start_time,omitempty"`
	EndTime     string  `json:"end_time,omitempty"`
	IsDeleted   bool    `json:"is_deleted,omitempty"`
	OccurredAt  string  `json:"occurred_at"`
}
