// Command fixtures inspects and exports the static document fixture table.
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/lastutorials/pdfsplit/internal/document"
	"github.com/lastutorials/pdfsplit/internal/document/fixtures"
	"github.com/lastutorials/pdfsplit/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:          "fixtures",
		Short:        "Inspect the las:document fixture table",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.AddCommand(newListCmd(), newShowCmd(), newExportCmd(), newValidateCmd())
	return root
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List fixture identifiers and content types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DOCUMENT ID\tCONTENT TYPE\tCONTENT BYTES")
			for _, d := range fixtures.All() {
				size := "-"
				if d.Content != nil {
					size = fmt.Sprint(len(d.Content))
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", d.DocumentID, d.ContentType, size)
			}
			return tw.Flush()
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <documentId>",
		Short: "Print one fixture record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, ok := fixtures.Lookup(document.ID(args[0]))
			if !ok {
				return fmt.Errorf("fixture %q not found", args[0])
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "documentId:  %s\n", d.DocumentID)
			fmt.Fprintf(w, "contentType: %s\n", d.ContentType)
			if d.Content != nil {
				fmt.Fprintf(w, "content:     %d bytes (%s)\n", len(d.Content), d.SniffContentType())
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the fixture table as YAML or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return fixtures.Export(cmd.OutOrStdout(), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml or json")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check fixture invariants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := fixtures.Check(); err != nil {
				return err
			}
			logger.Infof("%d fixtures valid", fixtures.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d fixtures\n", fixtures.Len())
			return nil
		},
	}
}
