package plan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slot is a meal slot within a plan day.
type Slot string

const (
	Breakfast Slot = "breakfast"
	Lunch     Slot = "lunch"
	Dinner    Slot = "dinner"
)

// Slots lists the slots in their fixed day order.
var Slots = []Slot{Breakfast, Lunch, Dinner}

// Rank orders slots breakfast, lunch, dinner; unknown slots sort last.
func (s Slot) Rank() int {
	for i, v := range Slots {
		if v == s {
			return i
		}
	}
	return 99
}

// DefaultTime is the clock time shown for a slot's meals.
func (s Slot) DefaultTime() string {
	switch s {
	case Breakfast:
		return "08:00"
	case Lunch:
		return "12:30"
	case Dinner:
		return "19:00"
	}
	return ""
}

// Plan is a stored meal plan. PlanJSON holds the raw day/slot/item payload.
type Plan struct {
	ID         int64     `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	StartDate  string    `json:"start_date" db:"start_date"`
	EndDate    string    `json:"end_date" db:"end_date"`
	LengthDays int       `json:"length_days" db:"length_days"`
	PlanJSON   string    `json:"-" db:"plan_json"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Item references one meal scheduled in a slot.
type Item struct {
	MealID string `json:"meal_id"`
}

// UnmarshalJSON accepts meal ids written as strings or numbers.
func (i *Item) UnmarshalJSON(data []byte) error {
	var aux struct {
		MealID json.RawMessage `json:"meal_id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	i.MealID = ""
	raw := strings.TrimSpace(string(aux.MealID))
	if raw == "" || raw == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.MealID, &s); err == nil {
		i.MealID = strings.TrimSpace(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(aux.MealID, &n); err != nil {
		return fmt.Errorf("meal_id %s: %w", raw, err)
	}
	if v, err := n.Int64(); err == nil {
		i.MealID = strconv.FormatInt(v, 10)
	} else {
		i.MealID = n.String()
	}
	return nil
}

// Day is one date of a plan with its slot items in original order.
type Day struct {
	Date      string `json:"date"`
	Breakfast []Item `json:"breakfast"`
	Lunch     []Item `json:"lunch"`
	Dinner    []Item `json:"dinner"`
}

// UnmarshalJSON accepts dates written as strings or numbers. An item that
// cannot be decoded becomes an empty item so later items keep their
// position; a slot that is not a list fails the whole day.
func (d *Day) UnmarshalJSON(data []byte) error {
	var aux struct {
		Date      json.RawMessage   `json:"date"`
		Breakfast []json.RawMessage `json:"breakfast"`
		Lunch     []json.RawMessage `json:"lunch"`
		Dinner    []json.RawMessage `json:"dinner"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*d = Day{}
	if raw := strings.TrimSpace(string(aux.Date)); raw != "" && raw != "null" {
		var s string
		if err := json.Unmarshal(aux.Date, &s); err == nil {
			d.Date = strings.TrimSpace(s)
		} else {
			var n json.Number
			if err := json.Unmarshal(aux.Date, &n); err != nil {
				return fmt.Errorf("date %s: %w", raw, err)
			}
			d.Date = n.String()
		}
	}
	d.Breakfast = decodeItems(aux.Breakfast)
	d.Lunch = decodeItems(aux.Lunch)
	d.Dinner = decodeItems(aux.Dinner)
	return nil
}

func decodeItems(raws []json.RawMessage) []Item {
	if raws == nil {
		return nil
	}
	items := make([]Item, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal(raw, &items[i]); err != nil {
			items[i] = Item{}
		}
	}
	return items
}

// Items returns the items scheduled in slot s.
func (d Day) Items(s Slot) []Item {
	switch s {
	case Breakfast:
		return d.Breakfast
	case Lunch:
		return d.Lunch
	case Dinner:
		return d.Dinner
	}
	return nil
}

// Entry is one row of the flattened per-date index.
type Entry struct {
	PlanID int64  `json:"plan_id" db:"plan_id"`
	UserID string `json:"user_id" db:"user_id"`
	Date   string `json:"date" db:"date"`
	Slot   Slot   `json:"slot" db:"slot"`
	Idx    int    `json:"idx" db:"idx"`
	MealID string `json:"meal_id" db:"meal_id"`
}

// EventID is the stable identifier exposed to clients for a scheduled meal.
func (e Entry) EventID() string {
	return fmt.Sprintf("%d|%s|%s|%d", e.PlanID, e.Date, e.Slot, e.Idx)
}

// DaySlots holds the slot-ordered index entries of one date.
type DaySlots struct {
	Date      string
	Breakfast []Entry
	Lunch     []Entry
	Dinner    []Entry
}

// GroupByDate folds index entries, already ordered by date, slot and idx,
// into per-date slot lists.
func GroupByDate(entries []Entry) []DaySlots {
	var out []DaySlots
	for _, e := range entries {
		if len(out) == 0 || out[len(out)-1].Date != e.Date {
			out = append(out, DaySlots{Date: e.Date, Breakfast: []Entry{}, Lunch: []Entry{}, Dinner: []Entry{}})
		}
		d := &out[len(out)-1]
		switch e.Slot {
		case Breakfast:
			d.Breakfast = append(d.Breakfast, e)
		case Lunch:
			d.Lunch = append(d.Lunch, e)
		case Dinner:
			d.Dinner = append(d.Dinner, e)
		}
	}
	return out
}
