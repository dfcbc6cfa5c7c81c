// Package resolver implements the recurrence-resolution engine: the pure
// functions that combine recurring slot rules with per-date exceptions into
// the effective slot list for any date, and the simulation that validates a
// prospective write against the per-date capacity invariant before it is
// committed.  The engine holds no state and performs no I/O; callers feed it
// store output and commit (or refuse) the write based on its answer.
package resolver

import (
	"github.com/slotify/slotify/internal/calendar"
	"github.com/slotify/slotify/internal/repository"
)

// MaxSlotsPerDate is the capacity invariant: the maximum number of effective
// slots permitted on any single calendar date.
const MaxSlotsPerDate = 2

// EffectiveSlot is the computed, never-persisted result of applying a
// date's exception (if any) onto its base rule.  ExceptionID is non-nil
// exactly when the slot was derived from an exception.
type EffectiveSlot struct {
	SlotID      uint64  `json:"slotId"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	IsException bool    `json:"isException"`
	ExceptionID *uint64 `json:"exceptionId,omitempty"`
}

// Day pairs a calendar date with its effective slots.  Slots is never nil so
// empty days serialize as "slots": [].
type Day struct {
	Date  string          `json:"date"`
	Slots []EffectiveSlot `json:"slots"`
}

// resolveRule computes the contribution of one rule to one date given the
// exception governing that (rule, date) pair, or nil when there is none.
// The second return is false when a deletion exception suppresses the
// occurrence entirely.
func resolveRule(rule repository.Slot, ex *repository.Exception) (EffectiveSlot, bool) {
	if ex == nil {
		return EffectiveSlot{
			SlotID:    rule.ID,
			StartTime: rule.StartTime,
			EndTime:   rule.EndTime,
		}, true
	}
	if ex.IsDeleted {
		return EffectiveSlot{}, false
	}
	start := rule.StartTime
	if ex.NewStartTime != nil {
		start = *ex.NewStartTime
	}
	end := rule.EndTime
	if ex.NewEndTime != nil {
		end = *ex.NewEndTime
	}
	id := ex.ID
	return EffectiveSlot{
		SlotID:      rule.ID,
		StartTime:   start,
		EndTime:     end,
		IsException: true,
		ExceptionID: &id,
	}, true
}

// ResolveDate produces the effective slots for a single date.  Rules must be
// in creation (id) order; the output preserves that order and is not
// re-sorted by time.  Exceptions for other dates are ignored.
func ResolveDate(date string, rules []repository.Slot, exceptions []repository.Exception) []EffectiveSlot {
	weekday := calendar.WeekdayOf(date)
	slots := make([]EffectiveSlot, 0)
	for _, rule := range rules {
		if rule.DayOfWeek != weekday {
			continue
		}
		slot, ok := resolveRule(rule, exceptionFor(exceptions, rule.ID, date))
		if ok {
			slots = append(slots, slot)
		}
	}
	return slots
}

// ResolveWeek produces the 7 {date, slots} records for the week starting at
// weekStart, dates ascending.  Every date appears in the output, including
// dates with zero slots.  For fixed inputs the result is deterministic: the
// engine never consults the wall clock.
func ResolveWeek(weekStart string, rules []repository.Slot, exceptions []repository.Exception) []Day {
	dates := calendar.DatesOfWeek(weekStart)
	days := make([]Day, 0, len(dates))
	for _, date := range dates {
		days = append(days, Day{Date: date, Slots: ResolveDate(date, rules, exceptions)})
	}
	return days
}

// SimulateException computes how many effective slots date would carry if
// the prospective exception replaced whatever is currently stored for its
// (slot, date) pair.  rules is the recurring set for the date's weekday;
// stored is every exception persisted for that exact date.  The caller
// rejects the write when the returned count exceeds MaxSlotsPerDate.
func SimulateException(date string, rules []repository.Slot, stored []repository.Exception, prospective repository.Exception) int {
	count := 0
	for _, rule := range rules {
		var ex *repository.Exception
		if rule.ID == prospective.SlotID {
			// The write replaces any stored exception for this rule.
			p := prospective
			ex = &p
		} else {
			ex = exceptionFor(stored, rule.ID, date)
		}
		if _, ok := resolveRule(rule, ex); ok {
			count++
		}
	}
	return count
}

// exceptionFor finds the exception governing (slotID, date), or nil.  The
// unique (slot_id, exception_date) constraint guarantees at most one match.
func exceptionFor(exceptions []repository.Exception, slotID uint64, date string) *repository.Exception {
	for i := range exceptions {
		if exceptions[i].SlotID == slotID && exceptions[i].Date == date {
			return &exceptions[i]
		}
	}
	return nil
}

// EffectiveTimes returns the start and end a rule would carry on a date
// under the given exception payload, applying the same inherit-when-nil
// semantics as the merge.  Used by the API boundary to validate that an
// override cannot invert the start < end ordering.
func EffectiveTimes(rule repository.Slot, ex repository.Exception) (start, end string) {
	start = rule.StartTime
	if ex.NewStartTime != nil {
		start = *ex.NewStartTime
	}
	end = rule.EndTime
	if ex.NewEndTime != nil {
		end = *ex.NewEndTime
	}
	return start, end
}
