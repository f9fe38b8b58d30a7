// Package input decodes tournament and roster documents written in YAML or
// JSON into the scheduling model.
package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/stonk0105/volleysched/core/grouping"
	"github.com/stonk0105/volleysched/core/model"
)

// RefereeDef is one referee of a tournament document.
type RefereeDef struct {
	Name string `yaml:"name" json:"name"`
	// Availability maps a day index to 0, 0.5 or 1.
	Availability map[string]float64 `yaml:"availability" json:"availability"`
	// Conflicts lists the groups the referee must not officiate.
	Conflicts []string `yaml:"conflicts,omitempty" json:"conflicts,omitempty"`
}

// TournamentDoc is the scheduling input document.
//
//	groupings:
//	  - {group: A, team: Aces, level: 1}
//	teams:
//	  Aces: [mon, wed, fri]
//	referees:
//	  - name: Rita
//	    availability: {0: 1, 2: 0.5}
//	    conflicts: [B]
//	affiliations:
//	  Rita: [Blockers]
//	conflict_table:
//	  Rita: {A: 1, B: 0}
//
// Conflicts come from the referee list, from affiliations (a referee
// conflicts with every group holding one of its teams) and from the conflict
// table, where 0 marks a conflict and 1 none. Missing entries carry no conflict.
type TournamentDoc struct {
	Groupings     []model.Membership        `yaml:"groupings" json:"groupings"`
	Teams         map[string][]string       `yaml:"teams" json:"teams"`
	Referees      []RefereeDef              `yaml:"referees" json:"referees"`
	Affiliations  map[string][]string       `yaml:"affiliations,omitempty" json:"affiliations,omitempty"`
	ConflictTable map[string]map[string]int `yaml:"conflict_table,omitempty" json:"conflict_table,omitempty"`
}

// RosterDoc is the group draw input document.
type RosterDoc struct {
	Teams        []model.Team        `yaml:"teams" json:"teams"`
	Affiliations map[string][]string `yaml:"affiliations,omitempty" json:"affiliations,omitempty"`
	Seed         uint64              `yaml:"seed,omitempty" json:"seed,omitempty"`
}

func decode(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty document")
		}
		return err
	}
	return nil
}

// DecodeTournament reads a tournament document. JSON is accepted as YAML.
func DecodeTournament(r io.Reader) (*TournamentDoc, error) {
	var doc TournamentDoc
	if err := decode(r, &doc); err != nil {
		return nil, fmt.Errorf("decode tournament: %w", err)
	}
	return &doc, nil
}

// DecodeRoster reads a roster document.
func DecodeRoster(r io.Reader) (*RosterDoc, error) {
	var doc RosterDoc
	if err := decode(r, &doc); err != nil {
		return nil, fmt.Errorf("decode roster: %w", err)
	}
	return &doc, nil
}

// LoadTournament reads and converts the tournament document at path.
func LoadTournament(path string) (model.Tournament, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Tournament{}, err
	}
	doc, err := DecodeTournament(bytes.NewReader(data))
	if err != nil {
		return model.Tournament{}, err
	}
	return doc.Tournament()
}

// LoadRoster reads the roster document at path.
func LoadRoster(path string) (*RosterDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeRoster(bytes.NewReader(data))
}

// Tournament converts the document into the scheduling model.
func (d TournamentDoc) Tournament() (model.Tournament, error) {
	t := model.Tournament{
		Memberships: d.Groupings,
		Teams:       make(map[string]model.WeekAvailability, len(d.Teams)),
	}
	for name, days := range d.Teams {
		var w model.WeekAvailability
		for _, s := range days {
			wd, err := model.ParseWeekday(s)
			if err != nil {
				return model.Tournament{}, fmt.Errorf("team %s: %w", name, err)
			}
			w[wd] = true
		}
		t.Teams[name] = w
	}

	derived := grouping.ConflictTable(d.Affiliations, d.Groupings)
	for _, def := range d.Referees {
		ref := model.Referee{
			Name:         def.Name,
			Availability: make(map[int]model.Availability, len(def.Availability)),
			Conflicts:    map[string]bool{},
		}
		for key, v := range def.Availability {
			day, err := strconv.Atoi(key)
			if err != nil {
				return model.Tournament{}, fmt.Errorf("referee %s: day %q is not an integer", def.Name, key)
			}
			a, err := model.ParseAvailability(v)
			if err != nil {
				return model.Tournament{}, fmt.Errorf("referee %s day %d: %w", def.Name, day, err)
			}
			ref.Availability[day] = a
		}
		for _, g := range def.Conflicts {
			ref.Conflicts[g] = true
		}
		for g, c := range derived[def.Name] {
			ref.Conflicts[g] = ref.Conflicts[g] || c
		}
		for g, v := range d.ConflictTable[def.Name] {
			switch v {
			case 0:
				ref.Conflicts[g] = true
			case 1:
			default:
				return model.Tournament{}, fmt.Errorf("referee %s group %s: conflict flag must be 0 or 1, got %d", def.Name, g, v)
			}
		}
		t.Referees = append(t.Referees, ref)
	}
	for name := range d.ConflictTable {
		if !hasReferee(d.Referees, name) {
			return model.Tournament{}, fmt.Errorf("conflict table names unknown referee %s", name)
		}
	}
	return t, nil
}

func hasReferee(refs []RefereeDef, name string) bool {
	for _, r := range refs {
		if r.Name == name {
			return true
		}
	}
	return false
}

// FromTournament builds the document describing t. Conflicts are written as
// referee lists.
func FromTournament(t model.Tournament) TournamentDoc {
	doc := TournamentDoc{
		Groupings: t.Memberships,
		Teams:     make(map[string][]string, len(t.Teams)),
	}
	for name, w := range t.Teams {
		days := []string{}
		for wd := model.Monday; wd <= model.Friday; wd++ {
			if w[wd] {
				days = append(days, wd.String())
			}
		}
		doc.Teams[name] = days
	}
	for _, r := range t.Referees {
		def := RefereeDef{Name: r.Name, Availability: make(map[string]float64, len(r.Availability))}
		for d, a := range r.Availability {
			def.Availability[strconv.Itoa(d)] = float64(a)
		}
		for g, c := range r.Conflicts {
			if c {
				def.Conflicts = append(def.Conflicts, g)
			}
		}
		sort.Strings(def.Conflicts)
		doc.Referees = append(doc.Referees, def)
	}
	return doc
}
