package main

import (
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/pageflow/internal/presentation/tui"
	"github.com/aretw0/pageflow/pkg/domain"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List the registered pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		return tui.PrintRoutes(out, colorProfile(out), routeRows(a.engine.Routes()))
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

func routeRows(descs []*domain.ActionDescriptor) []tui.RouteRow {
	rows := make([]tui.RouteRow, 0, len(descs))
	for _, desc := range descs {
		handlers := make([]string, 0, len(desc.HandlerMethods))
		for _, h := range desc.HandlerMethods {
			label := h.HTTPMethod
			if h.Name != "" {
				label += ":" + h.Name
			}
			handlers = append(handlers, label)
		}
		rows = append(rows, tui.RouteRow{
			Name:     desc.ID,
			Route:    desc.RouteTemplate,
			Handlers: strings.Join(handlers, ", "),
			Filters:  len(desc.Filters),
		})
	}
	return rows
}

// terminalFd returns the descriptor of w when it is a terminal.
func terminalFd(w io.Writer) (int, bool) {
	f, ok := w.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

func colorProfile(w io.Writer) termenv.Profile {
	if _, ok := terminalFd(w); !ok {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}
