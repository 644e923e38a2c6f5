package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isesword/polars-go-interop/polars"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "polars-inspect", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	for _, name := range []string{"verbose", "format", "config", "lib"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, name := range []string{"version", "codecs", "schema", "head"} {
		assert.True(t, names[name], "missing subcommand %s", name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "yaml", "codecs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestCodecsText(t *testing.T) {
	out, err := execute(t, "codecs")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, polars.CodecTable()))
	assert.Contains(t, out, "rust_lazy_frame_collect(LazyFrame) -> DataFrame")
	assert.Contains(t, out, fmt.Sprintf("fingerprint %016x\n", polars.CodecFingerprint()))
}

func TestCodecsJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "codecs")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CodecReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, fmt.Sprintf("%016x", polars.CodecFingerprint()), resp.Data.Fingerprint)
	assert.NotEmpty(t, resp.Data.Tables)
	assert.Contains(t, resp.Data.Signatures, "rust_data_frame_vstack_mut(DataFrame mut, DataFrame) -> unit [fallible]")
}

type reading struct {
	Sensor string  `parquet:"sensor"`
	Value  float64 `parquet:"value"`
}

func TestSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "readings.parquet")
	require.NoError(t, parquet.WriteFile(path, []reading{{"a", 1.5}, {"b", 2}, {"c", 3}}))

	t.Run("text", func(t *testing.T) {
		out, err := execute(t, "schema", path)
		require.NoError(t, err)
		assert.Contains(t, out, "3 rows in 1 row groups")
		assert.Contains(t, out, "sensor")
		assert.Contains(t, out, polars.Float64.String())
	})

	t.Run("json", func(t *testing.T) {
		out, err := execute(t, "--format", "json", "schema", path)
		require.NoError(t, err)

		var resp struct {
			Data SchemaReport `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, int64(3), resp.Data.Rows)
		assert.Equal(t, []ColumnInfo{
			{Name: "sensor", Type: polars.Utf8.String()},
			{Name: "value", Type: polars.Float64.String()},
		}, resp.Data.Columns)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "schema", filepath.Join(t.TempDir(), "nope.parquet"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
	})

	t.Run("arity", func(t *testing.T) {
		_, err := execute(t, "schema")
		require.Error(t, err)
	})
}

func TestHeadRejectsUnknownExtension(t *testing.T) {
	out, err := execute(t, "--format", "json", "head", "data.xlsx")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, `"status": "error"`)
	assert.Contains(t, out, "unsupported file type")
}

func TestVersionWithoutLibrary(t *testing.T) {
	_, err := execute(t, "--lib", filepath.Join(t.TempDir(), "libmissing.so"), "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load bridge")
}

func TestBadConfig(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("plain")))
	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "inner", nil))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
}
