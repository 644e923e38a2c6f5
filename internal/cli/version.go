package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/isesword/polars-go-interop/polars"
)

// VersionInfo is reported by the version command.
type VersionInfo struct {
	AbiVersion  uint32 `json:"abi_version"`
	Engine      string `json:"engine_version"`
	Fingerprint string `json:"fingerprint"`
	Expected    string `json:"expected_fingerprint"`
	ThreadPool  int    `json:"thread_pool_size"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Load the native binding and print its versions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(rootOpts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runVersion(opts *RootOptions, out, errOut io.Writer) error {
	f := &OutputFormatter{Format: opts.Format, Writer: out, ErrWriter: errOut, Verbose: opts.Verbose}

	brg, err := loadBridge(opts, f)
	if err != nil {
		return f.Failure(err)
	}
	defer brg.Close()

	engine, err := polars.EngineVersion(brg)
	if err != nil {
		return f.Failure(WrapExitError(ExitFailure, "engine version", err))
	}
	pool, err := polars.ThreadPoolSize(brg)
	if err != nil {
		return f.Failure(WrapExitError(ExitFailure, "thread pool size", err))
	}

	info := VersionInfo{
		AbiVersion:  brg.AbiVersion(),
		Engine:      engine,
		Fingerprint: fmt.Sprintf("%016x", brg.Fingerprint()),
		Expected:    fmt.Sprintf("%016x", polars.CodecFingerprint()),
		ThreadPool:  pool,
	}
	return f.Success(info, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "ABI version:  %d\nEngine:       %s\nFingerprint:  %s (expected %s)\nThread pool:  %d\n",
			info.AbiVersion, info.Engine, info.Fingerprint, info.Expected, info.ThreadPool)
		return err
	})
}
