package polars

import (
	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/interop"
)

var (
	miscEngineVersion     = interop.Fn0("rust_misc_engine_version", interop.String)
	miscThreadPoolSize    = interop.Fn0("rust_misc_thread_pool_size", interop.Int)
	miscEnableStringCache = interop.Fn1("rust_misc_enable_string_cache", interop.Bool, interop.Unit)
	miscUsingStringCache  = interop.Fn0("rust_misc_using_string_cache", interop.Bool)
)

// EngineVersion returns the version of the Polars crate behind brg.
func EngineVersion(brg *bridge.Bridge) (string, error) { return miscEngineVersion(brg) }

// ThreadPoolSize returns the size of the engine's worker pool.
func ThreadPoolSize(brg *bridge.Bridge) (int, error) { return miscThreadPoolSize(brg) }

// EnableStringCache toggles the global categorical string cache.
func EnableStringCache(brg *bridge.Bridge, enable bool) error {
	_, err := miscEnableStringCache(brg, enable)
	return err
}

func UsingStringCache(brg *bridge.Bridge) (bool, error) { return miscUsingStringCache(brg) }
