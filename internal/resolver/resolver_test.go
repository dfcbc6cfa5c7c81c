package resolver

import (
	"reflect"
	"testing"

	"github.com/slotify/slotify/internal/repository"
)

func strp(s string) *string { return &s }

// Week under test: 2025-06-01 (Sunday) through 2025-06-07 (Saturday).
func testRules() []repository.Slot {
	return []repository.Slot{
		{ID: 1, DayOfWeek: 1, StartTime: "09:00:00", EndTime: "10:00:00"}, // Monday
		{ID: 2, DayOfWeek: 1, StartTime: "14:00:00", EndTime: "15:00:00"}, // Monday
		{ID: 3, DayOfWeek: 3, StartTime: "08:00:00", EndTime: "09:30:00"}, // Wednesday
	}
}

func TestResolveWeek_EmitsAllSevenDays(t *testing.T) {
	days := ResolveWeek("2025-06-01", testRules(), nil)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	for i, d := range days {
		if d.Slots == nil {
			t.Errorf("day %s has nil slots, want empty slice", d.Date)
		}
		if i > 0 && d.Date <= days[i-1].Date {
			t.Errorf("dates not ascending at index %d", i)
		}
	}
	// Sunday carries no rule, but the day record is still present.
	if days[0].Date != "2025-06-01" || len(days[0].Slots) != 0 {
		t.Errorf("expected empty Sunday first, got %+v", days[0])
	}
}

func TestResolveDate_BaseRulesInCreationOrder(t *testing.T) {
	slots := ResolveDate("2025-06-02", testRules(), nil) // Monday
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].SlotID != 1 || slots[1].SlotID != 2 {
		t.Errorf("expected creation order [1 2], got [%d %d]", slots[0].SlotID, slots[1].SlotID)
	}
	if slots[0].StartTime != "09:00:00" || slots[0].EndTime != "10:00:00" {
		t.Errorf("base slot carries wrong times: %+v", slots[0])
	}
	if slots[0].IsException || slots[0].ExceptionID != nil {
		t.Errorf("base slot must not be flagged as exception: %+v", slots[0])
	}
}

func TestResolveDate_DeletionSuppressesOnlyItsDate(t *testing.T) {
	exceptions := []repository.Exception{
		{ID: 10, SlotID: 1, Date: "2025-06-02", IsDeleted: true},
	}
	monday := ResolveDate("2025-06-02", testRules(), exceptions)
	if len(monday) != 1 || monday[0].SlotID != 2 {
		t.Fatalf("expected only slot 2 on the excepted Monday, got %+v", monday)
	}
	// The following Monday is untouched.
	next := ResolveDate("2025-06-09", testRules(), exceptions)
	if len(next) != 2 {
		t.Errorf("expected 2 slots on the next Monday, got %d", len(next))
	}
}

func TestResolveDate_RetimeSubstitutesTimes(t *testing.T) {
	exceptions := []repository.Exception{
		{ID: 11, SlotID: 1, Date: "2025-06-02", NewStartTime: strp("11:00:00"), NewEndTime: strp("12:00:00")},
	}
	slots := ResolveDate("2025-06-02", testRules(), exceptions)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	got := slots[0]
	if got.StartTime != "11:00:00" || got.EndTime != "12:00:00" {
		t.Errorf("retime not applied: %+v", got)
	}
	if !got.IsException || got.ExceptionID == nil || *got.ExceptionID != 11 {
		t.Errorf("retimed slot must carry its exception id: %+v", got)
	}
	// The untouched rule is unchanged.
	if slots[1].StartTime != "14:00:00" || slots[1].IsException {
		t.Errorf("unrelated slot modified: %+v", slots[1])
	}
}

func TestResolveDate_NilOverrideInheritsRuleTime(t *testing.T) {
	exceptions := []repository.Exception{
		{ID: 12, SlotID: 1, Date: "2025-06-02", NewStartTime: strp("09:30:00")}, // end inherited
	}
	slots := ResolveDate("2025-06-02", testRules(), exceptions)
	if slots[0].StartTime != "09:30:00" || slots[0].EndTime != "10:00:00" {
		t.Errorf("expected inherited end time, got %+v", slots[0])
	}
}

func TestResolveDate_BothOverridesNilStillFlagsException(t *testing.T) {
	exceptions := []repository.Exception{
		{ID: 13, SlotID: 1, Date: "2025-06-02"},
	}
	slots := ResolveDate("2025-06-02", testRules(), exceptions)
	got := slots[0]
	if got.StartTime != "09:00:00" || got.EndTime != "10:00:00" {
		t.Errorf("expected rule times, got %+v", got)
	}
	if !got.IsException || got.ExceptionID == nil {
		t.Errorf("exception with all-nil overrides must still be flagged: %+v", got)
	}
}

func TestResolveDate_OrderSurvivesRetime(t *testing.T) {
	// Retiming rule 1 past rule 2's window must not reorder the output:
	// position follows rule creation order, never clock order.
	exceptions := []repository.Exception{
		{ID: 14, SlotID: 1, Date: "2025-06-02", NewStartTime: strp("16:00:00"), NewEndTime: strp("17:00:00")},
	}
	slots := ResolveDate("2025-06-02", testRules(), exceptions)
	if slots[0].SlotID != 1 || slots[1].SlotID != 2 {
		t.Errorf("retime changed ordering: [%d %d]", slots[0].SlotID, slots[1].SlotID)
	}
}

func TestResolveDate_IgnoresExceptionsForOtherDates(t *testing.T) {
	exceptions := []repository.Exception{
		{ID: 15, SlotID: 1, Date: "2025-06-09", IsDeleted: true},
	}
	slots := ResolveDate("2025-06-02", testRules(), exceptions)
	if len(slots) != 2 {
		t.Errorf("exception for another date leaked in: got %d slots", len(slots))
	}
}

func TestResolveWeek_Deterministic(t *testing.T) {
	rules := testRules()
	exceptions := []repository.Exception{
		{ID: 16, SlotID: 3, Date: "2025-06-04", NewEndTime: strp("10:00:00")},
		{ID: 17, SlotID: 1, Date: "2025-06-02", IsDeleted: true},
	}
	a := ResolveWeek("2025-06-01", rules, exceptions)
	b := ResolveWeek("2025-06-01", rules, exceptions)
	if !reflect.DeepEqual(a, b) {
		t.Error("same inputs produced different outputs")
	}
}

func TestSimulateException_RetimeKeepsCount(t *testing.T) {
	rules := testRules()[:2] // the two Monday rules
	prospective := repository.Exception{SlotID: 1, Date: "2025-06-02", NewStartTime: strp("11:00:00")}
	if n := SimulateException("2025-06-02", rules, nil, prospective); n != 2 {
		t.Errorf("retime should keep count at 2, got %d", n)
	}
}

func TestSimulateException_DeletionFreesCapacity(t *testing.T) {
	rules := testRules()[:2]
	prospective := repository.Exception{SlotID: 1, Date: "2025-06-02", IsDeleted: true}
	if n := SimulateException("2025-06-02", rules, nil, prospective); n != 1 {
		t.Errorf("deletion should drop count to 1, got %d", n)
	}
}

func TestSimulateException_ReplacesStoredExceptionForSameRule(t *testing.T) {
	rules := testRules()[:2]
	// Stored: rule 1 deleted on the date.  Prospective: rule 1 restored with
	// a retime.  The simulation must use the prospective payload, not the
	// stored one, for that rule.
	stored := []repository.Exception{
		{ID: 20, SlotID: 1, Date: "2025-06-02", IsDeleted: true},
	}
	prospective := repository.Exception{SlotID: 1, Date: "2025-06-02", NewStartTime: strp("11:00:00")}
	if n := SimulateException("2025-06-02", rules, stored, prospective); n != 2 {
		t.Errorf("prospective must replace stored exception, want 2, got %d", n)
	}
}

func TestSimulateException_CountsOtherStoredExceptions(t *testing.T) {
	rules := testRules()[:2]
	stored := []repository.Exception{
		{ID: 21, SlotID: 2, Date: "2025-06-02", IsDeleted: true},
	}
	prospective := repository.Exception{SlotID: 1, Date: "2025-06-02", NewEndTime: strp("10:30:00")}
	if n := SimulateException("2025-06-02", rules, stored, prospective); n != 1 {
		t.Errorf("stored deletion of the other rule must count, want 1, got %d", n)
	}
}

func TestSimulateException_RuleOffWeekdayContributesNothing(t *testing.T) {
	// rules holds only the date's weekday set; an exception targeting a rule
	// outside it cannot add a slot.
	rules := testRules()[:2]
	prospective := repository.Exception{SlotID: 3, Date: "2025-06-02", NewStartTime: strp("11:00:00")}
	if n := SimulateException("2025-06-02", rules, nil, prospective); n != 2 {
		t.Errorf("off-weekday target must not change the count, got %d", n)
	}
}

func TestEffectiveTimes(t *testing.T) {
	rule := repository.Slot{ID: 1, StartTime: "09:00:00", EndTime: "10:00:00"}
	start, end := EffectiveTimes(rule, repository.Exception{})
	if start != "09:00:00" || end != "10:00:00" {
		t.Errorf("all-nil override must inherit both times, got %s-%s", start, end)
	}
	start, end = EffectiveTimes(rule, repository.Exception{NewStartTime: strp("11:00:00")})
	if start != "11:00:00" || end != "10:00:00" {
		t.Errorf("partial override wrong: %s-%s", start, end)
	}
}
