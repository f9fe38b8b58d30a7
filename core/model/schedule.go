package model

// Match is one round-robin game between two teams of a group.
type Match struct {
	Group string `json:"group"`
	TeamA string `json:"team_a"`
	TeamB string `json:"team_b"`
}

// Label formats the match as "TeamA vs TeamB".
func (m Match) Label() string { return m.TeamA + " vs " + m.TeamB }

// Involves reports whether team plays in the match.
func (m Match) Involves(team string) bool { return m.TeamA == team || m.TeamB == team }

// ScheduleRow is one line of the produced schedule.
type ScheduleRow struct {
	Day     int    `json:"day"`
	Field   int    `json:"field"`
	Match   string `json:"match"`
	Referee string `json:"referee"`
	Group   string `json:"group"`
}

// RefereeCount is the number of games officiated by a referee.
type RefereeCount struct {
	Referee string `json:"referee"`
	Games   int    `json:"games"`
}

// Result is the artifact of a successful scheduling run.
type Result struct {
	// Status is "optimal" or "feasible" when a limit stopped the search.
	Status        string         `json:"status"`
	Makespan      int            `json:"makespan"`
	Objective     float64        `json:"objective"`
	Schedule      []ScheduleRow  `json:"schedule"`
	RefereeCounts []RefereeCount `json:"referee_counts"`
	Groupings     []Membership   `json:"groupings"`
	Warnings      []string       `json:"warnings,omitempty"`
}
