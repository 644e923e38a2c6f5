package bridge_test

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/bridge/bridgetest"
	"github.com/isesword/polars-go-interop/value"
)

func TestNewChecksAbi(t *testing.T) {
	f := bridgetest.New()
	f.Abi = bridge.AbiVersion + 1

	_, err := f.Bridge()
	var be *bridge.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bridge.ErrAbiMismatch, be.Code)
}

func TestNewChecksFingerprint(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		f := bridgetest.New()
		f.FP = 0xabc
		_, err := f.Bridge(bridge.WithFingerprint(0xabc))
		require.NoError(t, err)
	})

	t.Run("mismatch", func(t *testing.T) {
		f := bridgetest.New()
		f.FP = 0xabc
		_, err := f.Bridge(bridge.WithFingerprint(0xdef))
		assert.ErrorIs(t, err, &bridge.Error{Code: bridge.ErrCodecMismatch})
	})

	t.Run("unversioned", func(t *testing.T) {
		f := bridgetest.New()
		_, err := f.Bridge(bridge.WithFingerprint(0xdef))
		require.NoError(t, err)
	})

	t.Run("unversioned strict", func(t *testing.T) {
		f := bridgetest.New()
		_, err := f.Bridge(bridge.WithFingerprint(0xdef), bridge.WithStrictFingerprint())
		assert.ErrorIs(t, err, &bridge.Error{Code: bridge.ErrCodecMismatch})
	})
}

func TestCall(t *testing.T) {
	f := bridgetest.New()
	f.Handle("rust_echo", func(args value.Value) (value.Value, error) {
		return args.Field(0)
	})
	f.Handle("rust_fail", func(args value.Value) (value.Value, error) {
		return value.Value{}, errors.New("no data")
	})
	f.Handle("rust_panic", func(args value.Value) (value.Value, error) {
		return value.Value{}, &bridge.Error{Code: bridge.ErrPanic, Message: "already borrowed"}
	})
	brg, err := f.Bridge()
	require.NoError(t, err)

	out, err := brg.Call("rust_echo", value.Tuple(value.String("day_1")), bridge.CallOptions{})
	require.NoError(t, err)
	assert.True(t, out.Equal(value.String("day_1")))

	_, err = brg.Call("rust_fail", value.Tuple(), bridge.CallOptions{})
	var be *bridge.Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bridge.ErrException, be.Code)
	assert.Equal(t, "rust_fail", be.Symbol)
	assert.Equal(t, "no data", be.Message)

	_, err = brg.Call("rust_panic", value.Tuple(), bridge.CallOptions{})
	require.ErrorAs(t, err, &be)
	assert.Equal(t, bridge.ErrPanic, be.Code)
	assert.Equal(t, "already borrowed", be.Message)

	_, err = brg.Call("rust_missing", value.Tuple(), bridge.CallOptions{})
	assert.ErrorIs(t, err, &bridge.Error{Code: bridge.ErrUnsupported})

	assert.Equal(t, []string{"rust_echo", "rust_fail", "rust_panic", "rust_missing"}, f.Calls())
}

func TestReleasingCallsDoNotHoldRuntimeLock(t *testing.T) {
	f := bridgetest.New()
	entered := make(chan struct{})
	unblock := make(chan struct{})
	f.Handle("rust_lazy_frame_collect", func(args value.Value) (value.Value, error) {
		close(entered)
		<-unblock
		return value.Unit(), nil
	})
	f.Handle("rust_quick", func(args value.Value) (value.Value, error) {
		return value.Int(1), nil
	})
	brg, err := f.Bridge()
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := brg.Call("rust_lazy_frame_collect", value.Tuple(), bridge.CallOptions{Releasing: true})
		assert.NoError(t, err)
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := brg.Call("rust_quick", value.Tuple(), bridge.CallOptions{})
		assert.NoError(t, err)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("non-releasing call blocked behind a releasing call")
	}
	close(unblock)
	wg.Wait()
}

func TestCloseWaitsForReleasingCalls(t *testing.T) {
	f := bridgetest.New()
	entered := make(chan struct{})
	unblock := make(chan struct{})
	f.Handle("rust_lazy_frame_collect", func(args value.Value) (value.Value, error) {
		close(entered)
		<-unblock
		return value.Unit(), nil
	})
	brg, err := f.Bridge()
	require.NoError(t, err)

	callDone := make(chan struct{})
	go func() {
		defer close(callDone)
		_, err := brg.Call("rust_lazy_frame_collect", value.Tuple(), bridge.CallOptions{Releasing: true})
		assert.NoError(t, err)
	}()
	<-entered

	closeDone := make(chan struct{})
	go func() {
		defer close(closeDone)
		assert.NoError(t, brg.Close())
	}()

	select {
	case <-closeDone:
		t.Fatal("Close returned while a releasing call was running")
	case <-time.After(100 * time.Millisecond):
	}
	assert.False(t, f.Closed())

	close(unblock)
	<-callDone
	select {
	case <-closeDone:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the call finished")
	}
	assert.True(t, f.Closed())

	_, err = brg.Call("rust_lazy_frame_collect", value.Tuple(), bridge.CallOptions{Releasing: true})
	assert.ErrorIs(t, err, bridge.ErrClosed)
	_, err = brg.EngineVersion()
	assert.ErrorIs(t, err, bridge.ErrClosed)
}

func TestHandles(t *testing.T) {
	f := bridgetest.New()
	brg, err := f.Bridge()
	require.NoError(t, err)

	h := f.Put([]int{1, 2}, func(v any) any { return append([]int(nil), v.([]int)...) })
	c, err := brg.CloneHandle(h)
	require.NoError(t, err)
	assert.NotEqual(t, h, c)
	assert.Equal(t, 2, f.Live())

	brg.FreeHandle(c)
	assert.Equal(t, 1, f.Live())

	_, err = brg.CloneHandle(999)
	assert.Error(t, err)
}

func TestClose(t *testing.T) {
	f := bridgetest.New()
	f.Handle("rust_quick", func(args value.Value) (value.Value, error) { return value.Unit(), nil })
	brg, err := f.Bridge()
	require.NoError(t, err)

	require.NoError(t, brg.Close())
	assert.True(t, f.Closed())
	_, err = brg.Call("rust_quick", value.Tuple(), bridge.CallOptions{})
	assert.ErrorIs(t, err, bridge.ErrClosed)
	require.NoError(t, brg.Close())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("library: /opt/libpolars_bridge.so\nlog_level: debug\nstrict_fingerprint: true\n"), 0o644))

	cfg, err := bridge.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/libpolars_bridge.so", cfg.Library)
	assert.True(t, cfg.StrictFingerprint)
	assert.Len(t, cfg.Options(), 1)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())

	_, err = bridge.Config{LogLevel: "loud"}.Level()
	assert.Error(t, err)
}

func TestLoadConfigEnvFallback(t *testing.T) {
	t.Setenv(bridge.LibraryEnv, "/env/libpolars_bridge.so")
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o644))

	cfg, err := bridge.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/libpolars_bridge.so", cfg.Library)
}

func TestErrorString(t *testing.T) {
	err := &bridge.Error{Code: bridge.ErrException, Symbol: "rust_data_frame_sort", Message: "column not found"}
	assert.Equal(t, "polars exception in rust_data_frame_sort: column not found", err.Error())
	assert.Equal(t, "code(99)", bridge.ErrorCode(99).String())
}
