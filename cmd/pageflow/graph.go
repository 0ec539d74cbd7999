package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/pageflow"
	"github.com/aretw0/pageflow/internal/presentation/graph"
	"github.com/aretw0/pageflow/pkg/domain"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <page>",
	Short: "Export the filter pipeline of a page",
	Long:  `Outputs a Mermaid diagram (graph TD) of the filters a page runs through, outermost first. The page is named by ID or route.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, os.Stderr)
		if err != nil {
			return err
		}
		defer a.Close()

		handler, _ := cmd.Flags().GetString("handler")
		return writeGraph(cmd.OutOrStdout(), a.engine, args[0], handler)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("handler", "", "Handler to highlight, e.g. GET or POST:Save")
}

func writeGraph(w io.Writer, eng *pageflow.Engine, page, handler string) error {
	desc, err := findPage(eng, page)
	if err != nil {
		return err
	}
	var overlay *graph.PipelineOverlay
	if handler != "" {
		overlay = &graph.PipelineOverlay{Handler: handler}
	}
	_, err = fmt.Fprint(w, graph.GenerateMermaid(desc, eng.GlobalFilters(), overlay))
	return err
}

func findPage(eng *pageflow.Engine, page string) (*domain.ActionDescriptor, error) {
	if desc, err := eng.Lookup(page); err == nil {
		return desc, nil
	}
	for _, desc := range eng.Routes() {
		if desc.RouteTemplate == page {
			return desc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrPageNotFound, page)
}
