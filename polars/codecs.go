package polars

import (
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/isesword/polars-go-interop/bridge"
	"github.com/isesword/polars-go-interop/interop"
)

// Manifest renders the codec tables followed by every bound entry point.
// Host and native builds agree exactly when their manifests agree.
func Manifest() string {
	var sb strings.Builder
	sb.WriteString(CodecTable())
	sb.WriteString("--\n")
	for _, sig := range interop.Signatures() {
		sb.WriteString(sig.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// CodecFingerprint hashes the manifest. The native build exports the same
// hash from bridge_codec_fingerprint.
func CodecFingerprint() uint64 {
	return xxh3.HashString(Manifest())
}

// Load opens the native library at libPath (empty uses POLARS_BRIDGE_LIB)
// and refuses it when its codec fingerprint differs from this build's.
func Load(libPath string, opts ...bridge.Option) (*bridge.Bridge, error) {
	opts = append([]bridge.Option{bridge.WithFingerprint(CodecFingerprint())}, opts...)
	return bridge.LoadBridge(libPath, opts...)
}
