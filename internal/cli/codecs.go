package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/isesword/polars-go-interop/interop"
	"github.com/isesword/polars-go-interop/polars"
)

// CodecReport is the json form of the codecs command.
type CodecReport struct {
	Fingerprint string   `json:"fingerprint"`
	Tables      []string `json:"tables"`
	Signatures  []string `json:"signatures"`
}

// NewCodecsCommand creates the codecs command. It needs no native library.
func NewCodecsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "codecs",
		Short:         "Print the codec tables and bound entry points of this build",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodecs(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runCodecs(opts *RootOptions, out, errOut io.Writer) error {
	f := &OutputFormatter{Format: opts.Format, Writer: out, ErrWriter: errOut, Verbose: opts.Verbose}

	sigs := interop.Signatures()
	report := CodecReport{
		Fingerprint: fmt.Sprintf("%016x", polars.CodecFingerprint()),
		Tables:      strings.Split(strings.TrimSuffix(polars.CodecTable(), "\n"), "\n"),
		Signatures:  make([]string, len(sigs)),
	}
	for i, sig := range sigs {
		report.Signatures[i] = sig.String()
	}
	f.VerboseLog("%d entry points", len(sigs))

	return f.Success(report, func(w io.Writer) error {
		if _, err := io.WriteString(w, polars.Manifest()); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "fingerprint %s\n", report.Fingerprint)
		return err
	})
}
