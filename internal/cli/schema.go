package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/isesword/polars-go-interop/polars"
)

// ColumnInfo describes one column of a file schema.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// SchemaReport is the json form of the schema command.
type SchemaReport struct {
	Path      string       `json:"path"`
	Rows      int64        `json:"rows"`
	RowGroups int          `json:"row_groups"`
	Columns   []ColumnInfo `json:"columns"`
}

// NewSchemaCommand creates the schema command. Parquet footers are read in
// Go, so no native library is loaded.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "schema <file.parquet>",
		Short:         "Print the engine schema of a parquet file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(rootOpts, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runSchema(opts *RootOptions, path string, out, errOut io.Writer) error {
	f := &OutputFormatter{Format: opts.Format, Writer: out, ErrWriter: errOut, Verbose: opts.Verbose}

	info, err := polars.InspectParquet(path)
	if err != nil {
		return f.Failure(WrapExitError(ExitCommandError, "inspect parquet", err))
	}

	report := SchemaReport{
		Path:      path,
		Rows:      info.NumRows,
		RowGroups: info.RowGroups,
		Columns:   make([]ColumnInfo, len(info.Schema)),
	}
	for i, field := range info.Schema {
		report.Columns[i] = ColumnInfo{Name: field.Name, Type: field.Type.String()}
	}

	return f.Success(report, func(w io.Writer) error {
		fmt.Fprintf(w, "%s: %d rows in %d row groups\n", path, report.Rows, report.RowGroups)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, c := range report.Columns {
			fmt.Fprintf(tw, "  %s\t%s\n", c.Name, c.Type)
		}
		return tw.Flush()
	})
}
