// Package export writes a match ledger to CSV or TOML for archiving.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/gosimple/slug"

	"github.com/umizher/domino-home-visitors/internal/match"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTOML Format = "toml"
)

// FormatForPath picks the format from a file extension. Unknown extensions
// export as TOML.
func FormatForPath(path string) Format {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "csv":
		return FormatCSV
	default:
		return FormatTOML
	}
}

// Summary is the match header of an export.
type Summary struct {
	Home          string    `toml:"home"`
	Visitors      string    `toml:"visitors"`
	Mode          string    `toml:"mode"`
	Target        int       `toml:"target"`
	Minutes       int       `toml:"minutes"`
	HomeScore     int       `toml:"home_score"`
	VisitorsScore int       `toml:"visitors_score"`
	Finished      bool      `toml:"finished"`
	Winner        string    `toml:"winner,omitempty"`
	Reason        string    `toml:"reason,omitempty"`
	ExportedAt    time.Time `toml:"exported_at"`
}

// Entry is one hand in ledger order with the running totals after it.
type Entry struct {
	No            int       `toml:"no"`
	Side          string    `toml:"side"`
	Points        int       `toml:"points"`
	HomeTotal     int       `toml:"home_total"`
	VisitorsTotal int       `toml:"visitors_total"`
	At            time.Time `toml:"at"`
}

// Ledger is the exported document.
type Ledger struct {
	Match Summary `toml:"match"`
	Hands []Entry `toml:"hands"`
}

// FromState builds a ledger from s, stamped with now.
func FromState(s match.State, now time.Time) Ledger {
	score := s.Totals()
	l := Ledger{
		Match: Summary{
			Home:          s.Config.Label(match.Home),
			Visitors:      s.Config.Label(match.Visitors),
			Mode:          string(s.Config.Mode),
			Target:        s.Config.Target,
			Minutes:       s.Config.Minutes,
			HomeScore:     score.Home,
			VisitorsScore: score.Visitors,
			Finished:      s.Finished,
			Winner:        string(s.Winner),
			Reason:        s.FinishedReason,
			ExportedAt:    now,
		},
		Hands: make([]Entry, len(s.Hands)),
	}

	var running match.Score
	for i, h := range s.Hands {
		if h.Side == match.Home {
			running.Home += h.Points
		} else {
			running.Visitors += h.Points
		}
		l.Hands[i] = Entry{
			No:            i + 1,
			Side:          string(h.Side),
			Points:        h.Points,
			HomeTotal:     running.Home,
			VisitorsTotal: running.Visitors,
			At:            h.CreatedAt,
		}
	}
	return l
}

var csvHeader = []string{"no", "side", "points", "home_total", "visitors_total", "at"}

// WriteCSV writes one row per hand, a total row and then the match summary
// as key/value rows padded to the ledger width.
func WriteCSV(w io.Writer, l Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range l.Hands {
		row := []string{
			strconv.Itoa(e.No),
			e.Side,
			strconv.Itoa(e.Points),
			strconv.Itoa(e.HomeTotal),
			strconv.Itoa(e.VisitorsTotal),
			e.At.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	total := []string{"total", "", "", strconv.Itoa(l.Match.HomeScore), strconv.Itoa(l.Match.VisitorsScore), ""}
	if err := cw.Write(total); err != nil {
		return err
	}
	for _, kv := range summaryRows(l.Match) {
		row := make([]string, len(csvHeader))
		row[0], row[1] = kv[0], kv[1]
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func summaryRows(s Summary) [][2]string {
	return [][2]string{
		{"home", s.Home},
		{"visitors", s.Visitors},
		{"mode", s.Mode},
		{"target", strconv.Itoa(s.Target)},
		{"minutes", strconv.Itoa(s.Minutes)},
		{"finished", strconv.FormatBool(s.Finished)},
		{"winner", s.Winner},
		{"reason", s.Reason},
		{"exported_at", s.ExportedAt.Format(time.RFC3339)},
	}
}

// WriteTOML writes the full ledger including the match summary.
func WriteTOML(w io.Writer, l Ledger) error {
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(l)
}

// Write encodes l in the given format.
func Write(w io.Writer, l Ledger, f Format) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, l)
	case FormatTOML:
		return WriteTOML(w, l)
	default:
		return fmt.Errorf("export: unknown format %q", f)
	}
}

// WriteFile encodes l into path, choosing the format from the extension.
func WriteFile(path string, l Ledger) error {
	var buf bytes.Buffer
	if err := Write(&buf, l, FormatForPath(path)); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// Filename suggests a file name such as
// "home-ana-luis-vs-visitors-2024-05-01-2000.toml".
func Filename(l Ledger, f Format) string {
	stamp := l.Match.ExportedAt.Format("2006-01-02 1504")
	return slug.Make(fmt.Sprintf("%s vs %s %s", l.Match.Home, l.Match.Visitors, stamp)) + "." + string(f)
}
