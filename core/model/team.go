package model

import (
	"fmt"
	"strings"
)

// MinLevel and MaxLevel bound the skill level of a team.
const (
	MinLevel = 1
	MaxLevel = 4
)

// Team is a registered team with its skill level.
type Team struct {
	Name  string `json:"team" yaml:"team"`
	Level int    `json:"level" yaml:"level"`
}

// Membership is one row of the group membership table.
type Membership struct {
	Group string `json:"group" yaml:"group"`
	Team  string `json:"team" yaml:"team"`
	Level int    `json:"level" yaml:"level"`
}

// Group is a set of teams playing a round robin.
type Group struct {
	ID    string   `json:"group"`
	Teams []string `json:"teams"`
}

// Weekday is the position of a day index in the five-day cycle.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// DaysPerWeek is the length of the weekday cycle.
const DaysPerWeek = 5

var weekdayNames = [DaysPerWeek]string{"mon", "tue", "wed", "thur", "fri"}

func (w Weekday) String() string {
	if w < 0 || int(w) >= DaysPerWeek {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// WeekdayOf maps a day index to its weekday as day mod DaysPerWeek. Day
// indices count tournament days, which are weekdays only, so every
// non-negative index has a weekday and only negative indices report false.
func WeekdayOf(day int) (Weekday, bool) {
	if day < 0 {
		return 0, false
	}
	return Weekday(day % DaysPerWeek), true
}

// ParseWeekday accepts short and long English weekday names.
func ParseWeekday(s string) (Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mon", "monday":
		return Monday, nil
	case "tue", "tues", "tuesday":
		return Tuesday, nil
	case "wed", "wednesday":
		return Wednesday, nil
	case "thu", "thur", "thurs", "thursday":
		return Thursday, nil
	case "fri", "friday":
		return Friday, nil
	default:
		return 0, fmt.Errorf("unknown weekday %q", s)
	}
}

// WeekAvailability flags the weekdays a team can play on.
type WeekAvailability [DaysPerWeek]bool

// On reports whether the team is available on the weekday of day.
func (w WeekAvailability) On(day int) bool {
	wd, ok := WeekdayOf(day)
	return ok && w[wd]
}

// Weekdays returns a week availability with every listed weekday set.
func Weekdays(days ...Weekday) WeekAvailability {
	var w WeekAvailability
	for _, d := range days {
		w[d] = true
	}
	return w
}

// EveryWeekday is available Monday to Friday.
var EveryWeekday = Weekdays(Monday, Tuesday, Wednesday, Thursday, Friday)
