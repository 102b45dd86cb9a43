package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"surveyflow/internal/flow"
	"surveyflow/internal/surveyfile"
)

// NewGraphCommand creates and returns the graph subcommand
func NewGraphCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph <survey-file>",
		Short: "Print the question flow graph",
		Long: `Print the nodes and edges the authoring UI draws for a survey.

Formats:
  json  nodes, edges and the rules left out of the graph (default)
  dot   Graphviz digraph, logic edges dashed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printGraph(args[0], format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, dot)")
	return cmd
}

func printGraph(path, format string, out io.Writer) error {
	survey, err := surveyfile.Load(path)
	if err != nil {
		return err
	}
	g := flow.BuildGraph(survey.Questions)

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(g)
	case "dot":
		writeDot(g, out)
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeDot(g flow.Graph, out io.Writer) {
	fmt.Fprintln(out, "digraph survey {")
	fmt.Fprintln(out, "  rankdir=TB;")
	for _, n := range g.Nodes {
		fmt.Fprintf(out, "  %q [label=%q];\n", n.ID, n.ID+": "+n.Label)
	}
	for _, e := range g.Edges {
		if e.Kind == flow.EdgeLogic {
			fmt.Fprintf(out, "  %q -> %q [style=dashed, label=%q];\n", e.Source, e.Target, e.Label)
			continue
		}
		fmt.Fprintf(out, "  %q -> %q;\n", e.Source, e.Target)
	}
	fmt.Fprintln(out, "}")
}
