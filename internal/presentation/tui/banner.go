package tui

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/muesli/termenv"
)

// PrintBanner writes the pageflow banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"                          __ _               ", "#818cf8"},
		{"  _ __   __ _  __ _  ___ / _| | _____      __", "#a78bfa"},
		{" | '_ \\ / _` |/ _` |/ _ \\ |_| |/ _ \\ \\ /\\ / /", "#c084fc"},
		{" | |_) | (_| | (_| |  __/  _| | (_) \\ V  V / ", "#e879f9"},
		{" | .__/ \\__,_|\\__, |\\___|_| |_|\\___/ \\_/\\_/  ", "#f472b6"},
		{" |_|          |___/                          ", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// RouteRow is one line of the routes table.
type RouteRow struct {
	Name     string
	Route    string
	Handlers string
	Filters  int
}

// PrintRoutes writes rows as an aligned table. Colors follow profile;
// termenv.Ascii prints plain text.
func PrintRoutes(w io.Writer, profile termenv.Profile, rows []RouteRow) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	plain := profile == termenv.Ascii

	header := "NAME\tROUTE\tHANDLERS\tFILTERS"
	if plain {
		fmt.Fprintln(tw, header)
	} else {
		fmt.Fprintln(tw, termenv.String(header).Bold())
	}
	for _, r := range rows {
		route := r.Route
		if !plain {
			route = termenv.String(r.Route).Foreground(profile.Color("#818cf8")).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", r.Name, route, r.Handlers, r.Filters)
	}
	return tw.Flush()
}
