package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseError reports a plan payload that could not be decoded, in whole or
// in part.
type ParseError struct {
	PlanID int64
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("plan %d: malformed plan json: %v", e.PlanID, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseDays decodes a plan payload into its days. Days without a date are
// dropped. An empty payload yields no days and no error.
//
// A day that cannot be decoded is skipped and reported in the returned
// *ParseError; the remaining days are still returned, so callers should use
// them even when the error is set.
func ParseDays(planID int64, raw string) ([]Day, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var payload struct {
		Days []json.RawMessage `json:"days"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &ParseError{PlanID: planID, Err: err}
	}

	var errs []error
	days := make([]Day, 0, len(payload.Days))
	for i, rd := range payload.Days {
		var d Day
		if err := json.Unmarshal(rd, &d); err != nil {
			errs = append(errs, fmt.Errorf("day %d: %w", i, err))
			continue
		}
		if d.Date == "" {
			continue
		}
		days = append(days, d)
	}
	if len(errs) > 0 {
		return days, &ParseError{PlanID: planID, Err: errors.Join(errs...)}
	}
	return days, nil
}

// Flatten explodes days into index entries: slots in fixed order, items in
// their original position. Items without a meal id are skipped but keep
// their position, so idx always matches the source array index.
func Flatten(planID int64, userID string, days []Day) []Entry {
	var out []Entry
	for _, d := range days {
		for _, slot := range Slots {
			for idx, it := range d.Items(slot) {
				mid := strings.TrimSpace(it.MealID)
				if mid == "" {
					continue
				}
				out = append(out, Entry{
					PlanID: planID,
					UserID: userID,
					Date:   d.Date,
					Slot:   slot,
					Idx:    idx,
					MealID: mid,
				})
			}
		}
	}
	return out
}

// MealIDs returns the meal ids scheduled between from and to inclusive, in
// date/slot/idx order, one per scheduled slot item.
func MealIDs(days []Day, from, to string) []string {
	var ids []string
	for _, e := range Flatten(0, "", days) {
		if e.Date < from || e.Date > to {
			continue
		}
		ids = append(ids, e.MealID)
	}
	return ids
}
