// Package handler contains the HTTP boundary of the scheduler.  Handlers
// translate requests into resolution-engine calls and store operations,
// enforce the capacity invariant before any write is committed, and map
// every outcome to the status codes of the public API.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/slotify/slotify/internal/calendar"
	"github.com/slotify/slotify/internal/middleware"
	"github.com/slotify/slotify/internal/queue"
	"github.com/slotify/slotify/internal/repository"
	"github.com/slotify/slotify/internal/resolver"
)

// SlotStore is the recurring-rule persistence surface the handler needs.
// *repository.SlotRepo satisfies it; tests substitute an in-memory fake.
type SlotStore interface {
	Create(ctx context.Context, s *repository.Slot) error
	GetByID(ctx context.Context, id uint64) (*repository.Slot, error)
	ListAll(ctx context.Context) ([]repository.Slot, error)
	ListByWeekday(ctx context.Context, weekday int) ([]repository.Slot, error)
	CountByWeekday(ctx context.Context, weekday int) (int, error)
	DeleteByID(ctx context.Context, id uint64) error
}

// ExceptionStore is the per-date override persistence surface.
type ExceptionStore interface {
	Upsert(ctx context.Context, e *repository.Exception) error
	ListByDateRange(ctx context.Context, from, to string) ([]repository.Exception, error)
	ListByDate(ctx context.Context, date string) ([]repository.Exception, error)
	DeleteByID(ctx context.Context, id uint64) error
	DeleteBySlotAndDate(ctx context.Context, slotID uint64, date string) error
}

// EventPublisher pushes slot-change events to the broker after a commit.
type EventPublisher interface {
	PublishSlotChanged(ctx context.Context, ev queue.SlotChangedEvent) error
}

// maxWeekCount bounds the paginated week read.
const maxWeekCount = 8

// SlotHandler bundles the stores and the serialization locks for all slot
// endpoints.  Cache and Events are optional; a nil value disables the
// corresponding side effect.
type SlotHandler struct {
	Slots      SlotStore
	Exceptions ExceptionStore
	Locks      *resolver.KeyedLocks
	Cache      *middleware.Invalidator
	Events     EventPublisher
}

// NewSlotHandler constructs a SlotHandler and panics if a store is nil.
func NewSlotHandler(slots SlotStore, exceptions ExceptionStore) *SlotHandler {
	if slots == nil || exceptions == nil {
		panic("nil store passed to NewSlotHandler")
	}
	return &SlotHandler{
		Slots:      slots,
		Exceptions: exceptions,
		Locks:      resolver.NewKeyedLocks(),
	}
}

// CreateSlot handles POST /slots and creates a weekly recurring rule.
func (h *SlotHandler) CreateSlot(c echo.Context) error {
	var body struct {
		DayOfWeek *int   `json:"day_of_week"` // pointer so 0 (Sunday) is distinguishable from absent
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.DayOfWeek == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "day_of_week required"})
	}
	weekday := *body.DayOfWeek
	if weekday < 0 || weekday > 6 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "day_of_week must be between 0 and 6"})
	}
	if strings.TrimSpace(body.StartTime) == "" || strings.TrimSpace(body.EndTime) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_time and end_time required"})
	}
	start, err := normalizeTime(body.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start_time format"})
	}
	end, err := normalizeTime(body.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid end_time format"})
	}
	if start >= end {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_time must be before end_time"})
	}

	// The count and the insert must observe the same state; the weekday lock
	// serializes concurrent rule creations targeting the same weekday.
	unlock := h.Locks.Lock("weekday:" + strconv.Itoa(weekday))
	defer unlock()

	// Conservative proxy: raw rules per weekday, not the post-exception
	// effective count.  Rules can still be overridden per date afterwards.
	n, err := h.Slots.CountByWeekday(c.Request().Context(), weekday)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to check existing slots"})
	}
	if n >= resolver.MaxSlotsPerDate {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "max " + strconv.Itoa(resolver.MaxSlotsPerDate) + " recurring slots per weekday",
		})
	}

	slot := &repository.Slot{DayOfWeek: weekday, StartTime: start, EndTime: end}
	if err := h.Slots.Create(c.Request().Context(), slot); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create slot"})
	}

	h.afterWrite(queue.SlotChangedEvent{
		Kind:      queue.KindRuleCreated,
		SlotID:    slot.ID,
		DayOfWeek: &slot.DayOfWeek,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
	})
	return c.JSON(http.StatusCreated, map[string]uint64{"id": slot.ID})
}

// GetWeek handles GET /slots?weekStart=YYYY-MM-DD&count=N and returns the
// effective slots for count consecutive weeks (default 1).
func (h *SlotHandler) GetWeek(c echo.Context) error {
	weekStart := strings.TrimSpace(c.QueryParam("weekStart"))
	if weekStart == "" {
		weekStart = time.Now().UTC().Format(calendar.DateLayout)
	}
	if _, err := calendar.ParseDate(weekStart); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid weekStart, expected YYYY-MM-DD"})
	}
	count := 1
	if raw := strings.TrimSpace(c.QueryParam("count")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxWeekCount {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "count must be between 1 and " + strconv.Itoa(maxWeekCount),
			})
		}
		count = n
	}

	ctx := c.Request().Context()
	rules, err := h.Slots.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load slots"})
	}

	// One range read covers every requested week.
	last := weekStart
	for i := 1; i < count; i++ {
		last = calendar.NextWeekStart(last)
	}
	to := calendar.DatesOfWeek(last)[6]
	exceptions, err := h.Exceptions.ListByDateRange(ctx, weekStart, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load exceptions"})
	}

	data := make([]resolver.Day, 0, count*7)
	ws := weekStart
	for i := 0; i < count; i++ {
		data = append(data, resolver.ResolveWeek(ws, rules, exceptions)...)
		ws = calendar.NextWeekStart(ws)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"weekStart": weekStart,
		"count":     count,
		"data":      data,
	})
}

// CreateException handles POST /slots/:slotId/exceptions: it upserts the
// override for (slot, date) after simulating the resulting effective day
// against the capacity invariant.
func (h *SlotHandler) CreateException(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.Param("slotId"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid slot id"})
	}
	var body struct {
		ExceptionDate string  `json:"exception_date"`
		NewStartTime  *string `json:"new_start_time"`
		NewEndTime    *string `json:"new_end_time"`
		IsDeleted     bool    `json:"is_deleted"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	date := strings.TrimSpace(body.ExceptionDate)
	if date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "exception_date required"})
	}
	if _, err := calendar.ParseDate(date); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid exception_date, expected YYYY-MM-DD"})
	}
	prospective := repository.Exception{
		SlotID:    slotID,
		Date:      date,
		IsDeleted: body.IsDeleted,
	}
	if body.NewStartTime != nil {
		t, err := normalizeTime(*body.NewStartTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid new_start_time format"})
		}
		prospective.NewStartTime = &t
	}
	if body.NewEndTime != nil {
		t, err := normalizeTime(*body.NewEndTime)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid new_end_time format"})
		}
		prospective.NewEndTime = &t
	}

	ctx := c.Request().Context()
	rule, err := h.Slots.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load slot"})
	}
	if !prospective.IsDeleted {
		// An override inherits the rule's time where nil; the effective pair
		// must stay ordered.
		start, end := resolver.EffectiveTimes(*rule, prospective)
		if start >= end {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "start_time must be before end_time"})
		}
	}

	// Serialize simulate-then-commit against other writers for this date.
	unlock := h.Locks.Lock(date)
	defer unlock()

	weekday := calendar.WeekdayOf(date)
	rules, err := h.Slots.ListByWeekday(ctx, weekday)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load slots"})
	}
	stored, err := h.Exceptions.ListByDate(ctx, date)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load exceptions"})
	}
	if n := resolver.SimulateException(date, rules, stored, prospective); n > resolver.MaxSlotsPerDate {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "max " + strconv.Itoa(resolver.MaxSlotsPerDate) + " slots per date",
		})
	}

	if err := h.Exceptions.Upsert(ctx, &prospective); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not save exception"})
	}

	exceptionID := prospective.ID
	h.afterWrite(queue.SlotChangedEvent{
		Kind:        queue.KindExceptionUpsert,
		SlotID:      slotID,
		ExceptionID: &exceptionID,
		Date:        date,
		IsDeleted:   prospective.IsDeleted,
	})
	return c.JSON(http.StatusOK, map[string]uint64{"exceptionId": prospective.ID})
}

// DeleteExceptionByDate handles
// DELETE /slots/:slotId/exceptions?exception_date=YYYY-MM-DD, reverting the
// date to the base rule.  Removal never increases the effective count, so
// no capacity re-check is needed.
func (h *SlotHandler) DeleteExceptionByDate(c echo.Context) error {
	slotID, err := strconv.ParseUint(c.Param("slotId"), 10, 64)
	if err != nil || slotID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid slot id"})
	}
	date := strings.TrimSpace(c.QueryParam("exception_date"))
	if date == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "exception_date required"})
	}
	if err := h.Exceptions.DeleteBySlotAndDate(c.Request().Context(), slotID, date); err != nil {
		if errors.Is(err, repository.ErrExceptionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "exception not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete exception"})
	}
	h.afterWrite(queue.SlotChangedEvent{
		Kind:   queue.KindExceptionRemoved,
		SlotID: slotID,
		Date:   date,
	})
	return c.JSON(http.StatusOK, map[string]bool{"removed": true})
}

// DeleteExceptionByID handles DELETE /slots/exceptions/:id.
func (h *SlotHandler) DeleteExceptionByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid exception id"})
	}
	if err := h.Exceptions.DeleteByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrExceptionNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "exception not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete exception"})
	}
	exceptionID := id
	h.afterWrite(queue.SlotChangedEvent{Kind: queue.KindExceptionRemoved, ExceptionID: &exceptionID})
	return c.JSON(http.StatusOK, map[string]bool{"removed": true})
}

// DeleteSlot handles DELETE /slots/:id.  The schema cascades the deletion to
// every exception referencing the rule.
func (h *SlotHandler) DeleteSlot(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid slot id"})
	}
	if err := h.Slots.DeleteByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "slot not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete slot"})
	}
	h.afterWrite(queue.SlotChangedEvent{Kind: queue.KindRuleRemoved, SlotID: id})
	return c.JSON(http.StatusOK, map[string]bool{"removed": true})
}

// afterWrite performs the post-commit side effects: dropping cached weeks
// and publishing the change event.  Both are best effort and run off the
// request goroutine so they never delay or fail the response.
func (h *SlotHandler) afterWrite(ev queue.SlotChangedEvent) {
	ev.OccurredAt = time.Now().UTC().Format("2006-01-02 15:04:05")
	cache := h.Cache
	events := h.Events
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		cache.Invalidate(ctx) // nil-safe
		if events != nil {
			_ = events.PublishSlotChanged(ctx, ev)
		}
	}()
}

// normalizeTime validates a wall-clock time and normalizes it to the DB
// TIME format "HH:MM:SS".  "HH:MM" is accepted as shorthand.
func normalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05"), nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return "", err
	}
	return t.Format("15:04:05"), nil
}
