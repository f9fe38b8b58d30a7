// Package export writes scheduling results as JSON, CSV tables and an HTML
// chart of the referee workload.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/stonk0105/volleysched/core/model"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteScheduleCSV writes the schedule table in its (day, field) order.
func WriteScheduleCSV(w io.Writer, rows []model.ScheduleRow) error {
	recs := make([][]string, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, []string{strconv.Itoa(r.Day), strconv.Itoa(r.Field), r.Match, r.Referee, r.Group})
	}
	return writeCSV(w, []string{"day", "field", "match", "referee", "group"}, recs)
}

// WriteRefereeCountsCSV writes the games officiated by each referee.
func WriteRefereeCountsCSV(w io.Writer, counts []model.RefereeCount) error {
	recs := make([][]string, 0, len(counts))
	for _, c := range counts {
		recs = append(recs, []string{c.Referee, strconv.Itoa(c.Games)})
	}
	return writeCSV(w, []string{"referee", "games"}, recs)
}

// WriteGroupingsCSV writes the group membership table.
func WriteGroupingsCSV(w io.Writer, memberships []model.Membership) error {
	recs := make([][]string, 0, len(memberships))
	for _, m := range memberships {
		recs = append(recs, []string{m.Group, m.Team, strconv.Itoa(m.Level)})
	}
	return writeCSV(w, []string{"group", "team", "level"}, recs)
}

// RefereeChartHTML renders a bar chart of the games officiated per referee.
func RefereeChartHTML(counts []model.RefereeCount) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Referee workload"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Referee"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Games"}),
	)

	names := make([]string, 0, len(counts))
	games := make([]opts.BarData, 0, len(counts))
	for _, c := range counts {
		names = append(names, c.Referee)
		games = append(games, opts.BarData{Value: c.Games})
	}
	bar.SetXAxis(names).AddSeries("Games", games)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		return "", fmt.Errorf("failed to render chart: %v", err)
	}
	return buf.String(), nil
}

// Files names the artifacts written by WriteAll inside a directory.
var Files = struct {
	Result, Schedule, Referees, Groupings, Chart string
}{
	Result:    "result.json",
	Schedule:  "schedule.csv",
	Referees:  "referee_counts.csv",
	Groupings: "groupings.csv",
	Chart:     "referee_counts.html",
}

// WriteAll writes every artifact of res into dir, creating it when needed.
func WriteAll(dir string, res *model.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	chart, err := RefereeChartHTML(res.RefereeCounts)
	if err != nil {
		return err
	}
	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{Files.Result, func(w io.Writer) error { return WriteJSON(w, res) }},
		{Files.Schedule, func(w io.Writer) error { return WriteScheduleCSV(w, res.Schedule) }},
		{Files.Referees, func(w io.Writer) error { return WriteRefereeCountsCSV(w, res.RefereeCounts) }},
		{Files.Groupings, func(w io.Writer) error { return WriteGroupingsCSV(w, res.Groupings) }},
		{Files.Chart, func(w io.Writer) error { _, err := io.WriteString(w, chart); return err }},
	}
	for _, wr := range writers {
		if err := writeFile(filepath.Join(dir, wr.name), wr.write); err != nil {
			return fmt.Errorf("write %s: %w", wr.name, err)
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
