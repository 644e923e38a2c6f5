package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/polars"
)

// NewHeadCommand creates the head command.
func NewHeadCommand(rootOpts *RootOptions) *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:           "head <file>",
		Short:         "Print the first rows of a csv, parquet, json or ndjson file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHead(rootOpts, args[0], rows, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", 10, "number of rows")
	return cmd
}

// readerFor picks a reader by file extension.
func readerFor(path string) (func(*bridge.Bridge, string) (*polars.DataFrame, error), error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return func(brg *bridge.Bridge, p string) (*polars.DataFrame, error) {
			return polars.ReadCSV(brg, p, polars.CSVOptions{})
		}, nil
	case ".parquet", ".pq":
		return polars.ReadParquet, nil
	case ".json":
		return polars.ReadJSON, nil
	case ".ndjson", ".jsonl":
		return polars.ReadJSONLines, nil
	}
	return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
}

func runHead(opts *RootOptions, path string, rows int, out, errOut io.Writer) error {
	f := &OutputFormatter{Format: opts.Format, Writer: out, ErrWriter: errOut, Verbose: opts.Verbose}

	if rows < 0 {
		return f.Failure(WrapExitError(ExitCommandError, "invalid --rows", fmt.Errorf("%d is negative", rows)))
	}
	read, err := readerFor(path)
	if err != nil {
		return f.Failure(WrapExitError(ExitCommandError, "head", err))
	}

	brg, err := loadBridge(opts, f)
	if err != nil {
		return f.Failure(err)
	}
	defer brg.Close()

	df, err := read(brg, path)
	if err != nil {
		return f.Failure(WrapExitError(ExitFailure, "read "+path, err))
	}
	defer df.Free()

	head, err := df.Head(&rows)
	if err != nil {
		return f.Failure(WrapExitError(ExitFailure, "head", err))
	}
	defer head.Free()

	if opts.Format == "json" {
		data, err := head.Rows()
		if err != nil {
			return f.Failure(WrapExitError(ExitFailure, "rows", err))
		}
		return f.Success(data, nil)
	}
	return f.Success(nil, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, head.String())
		return err
	})
}
