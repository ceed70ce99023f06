package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/teranos/elbert/index"
	"github.com/teranos/elbert/match"
)

// resultView is the printable form of a search result.
type resultView struct {
	Rank     int    `json:"rank"`
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Source   string `json:"source"`
	Score    int    `json:"score"`
	Action   string `json:"action"`
	Target   string `json:"target"`
	Tier     string `json:"tier,omitempty"`
}

func newResultViews(query string, results []index.Result, explain bool) []resultView {
	views := make([]resultView, 0, len(results))
	for i, r := range results {
		v := resultView{
			Rank:     i + 1,
			ID:       r.ID,
			Title:    r.Title,
			Subtitle: r.Subtitle,
			Source:   r.Source,
			Score:    r.Score,
		}
		if r.Action != nil {
			v.Action = string(r.Action.Kind())
			v.Target = r.Action.Target()
		}
		if explain {
			v.Tier = explainTier(query, r)
		}
		views = append(views, v)
	}
	return views
}

// explainTier names the match tier that put r in the list.
func explainTier(query string, r index.Result) string {
	if match.Normalize(query) == "" {
		return "browse"
	}
	if _, tier := match.Explain(query, r.Title); tier != match.TierNone {
		return tier.String()
	}
	if r.Source == index.SourcePlugin {
		if _, tier := match.Explain(query, r.Subtitle); tier != match.TierNone {
			return tier.String() + " (subtitle)"
		}
	}
	return match.TierNone.String()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func renderResults(w io.Writer, views []resultView, explain bool) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No matches")
		return err
	}

	header := []string{"#", "Title", "Source", "Score", "Target"}
	if explain {
		header = append(header, "Tier")
	}
	data := pterm.TableData{header}
	for _, v := range views {
		row := []string{strconv.Itoa(v.Rank), v.Title, v.Source, strconv.Itoa(v.Score), v.Target}
		if explain {
			row = append(row, v.Tier)
		}
		data = append(data, row)
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

func validateFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported format: %s (supported: %v)", format, allowed)
}
