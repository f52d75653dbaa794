// Package render turns flow outcomes into display lines.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nhsdigital/cpmflow/internal/cpm"
	"github.com/nhsdigital/cpmflow/internal/flow"
)

// NullTimestamp is shown for timestamps the API sent as null.
const NullTimestamp = "null"

// TimeLayout is the local time representation of timestamps.
const TimeLayout = "02/01/2006, 15:04:05"

// Options controls timestamp rendering.
type Options struct {
	// Location defaults to time.Local.
	Location *time.Location
	// Now enables a relative age next to timestamps when set.
	Now func() time.Time
}

// Outcome renders the result pane for a slot. Idle and Loading render nothing.
func Outcome(o flow.Outcome, opts Options) []string {
	switch o.Kind {
	case flow.Failure:
		return []string{o.Message}
	case flow.Success:
		return Payload(o.Payload.Value, opts)
	default:
		return nil
	}
}

// Summary renders every succeeded action of st in step order, followed by
// the failure banner when one is showing.
func Summary(st flow.State, opts Options) []string {
	var lines []string
	for _, step := range st.Definition().Steps {
		if step.Action == nil {
			continue
		}
		o := st.Outcome(step.Action.Slot)
		if o.Kind != flow.Success {
			continue
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		if step.SuccessBanner != "" {
			lines = append(lines, step.SuccessBanner)
		}
		lines = append(lines, Outcome(o, opts)...)
	}
	if banner := st.Banner(); banner != "" {
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, banner)
	}
	return lines
}

// Payload enumerates the known fields of a cpm payload.
func Payload(v any, opts Options) []string {
	switch p := v.(type) {
	case cpm.ProductTeam:
		return []string{
			"Product Team ID: " + p.ID,
			"Name: " + p.Name,
			"ODS Code: " + p.ODSCode,
			"Status: " + p.Status,
			"Created On: " + Timestamp(&p.CreatedOn, opts),
			"Updated On: " + Timestamp(p.UpdatedOn, opts),
			"Deleted On: " + Timestamp(p.DeletedOn, opts),
			"Keys: " + Keys(p.Keys),
		}
	case cpm.Product:
		return product(p, opts)
	case cpm.ProductRead:
		return []string{
			"Product ID: " + p.ID,
			"Name: " + p.Name,
			"ODS Code: " + p.ODSCode,
			"Status: " + p.Status,
			"CPM Product Team Id: " + p.CPMProductTeamID,
			"Created On: " + Timestamp(&p.CreatedOn, opts),
			"Updated On: " + Timestamp(p.UpdatedOn, opts),
			"Deleted On: " + Timestamp(p.DeletedOn, opts),
			"Keys: " + Keys(p.Keys),
		}
	case cpm.DeleteResult:
		return []string{
			"Code: " + p.Code,
			"Message: " + p.Message,
		}
	case cpm.SearchResponse:
		return search(p, opts)
	case nil:
		return nil
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return []string{fmt.Sprintf("%v", v)}
		}
		return strings.Split(string(data), "\n")
	}
}

func product(p cpm.Product, opts Options) []string {
	return []string{
		"Product ID: " + p.ID,
		"Name: " + p.Name,
		"ODS Code: " + p.ODSCode,
		"Status: " + p.Status,
		"Product Team Id: " + p.ProductTeamID,
		"Created On: " + Timestamp(&p.CreatedOn, opts),
		"Updated On: " + Timestamp(p.UpdatedOn, opts),
		"Deleted On: " + Timestamp(p.DeletedOn, opts),
		"Keys: " + Keys(p.Keys),
	}
}

func search(r cpm.SearchResponse, opts Options) []string {
	lines := []string{"Search Results"}
	if len(r.Results) == 0 {
		return append(lines, "No results")
	}
	for _, result := range r.Results {
		lines = append(lines, "Organisation Code: "+result.OrgCode)
		for _, team := range result.ProductTeams {
			lines = append(lines, "  Product Team ID: "+team.ProductTeamID)
			for i, p := range team.Products {
				if i > 0 {
					lines = append(lines, "")
				}
				for _, l := range product(p, opts) {
					lines = append(lines, "    "+l)
				}
			}
		}
	}
	return lines
}

// localLayouts are timestamp forms the API sends without an offset. They are
// read as wall-clock time in the display location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Timestamp renders an API timestamp in local time. Nil and empty values
// render as NullTimestamp; unparseable values are shown as received.
func Timestamp(s *string, opts Options) string {
	if s == nil || *s == "" {
		return NullTimestamp
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	t, ok := parseTimestamp(*s, loc)
	if !ok {
		return *s
	}
	out := t.In(loc).Format(TimeLayout)
	if opts.Now != nil {
		out += " (" + humanize.RelTime(t, opts.Now(), "ago", "from now") + ")"
	}
	return out
}

// Keys renders the keys array compactly.
func Keys(keys []any) string {
	if len(keys) == 0 {
		return "[]"
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Sprintf("%v", keys)
	}
	return string(data)
}

// Indent pretty-prints a raw JSON body. Non-JSON bodies are returned as is.
func Indent(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
