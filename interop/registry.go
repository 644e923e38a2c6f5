package interop

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Signature describes one bound entry point as seen from Go.
type Signature struct {
	Symbol    string
	Args      []string
	Result    string
	Mode      Mode
	Releasing bool
}

func (s Signature) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(%s) -> %s", s.Symbol, strings.Join(s.Args, ", "), s.Result)
	if s.Mode != ModePlain {
		sb.WriteString(" [" + s.Mode.String() + "]")
	}
	if s.Releasing {
		sb.WriteString(" [releasing]")
	}
	return sb.String()
}

func (s Signature) equal(o Signature) bool {
	return s.String() == o.String()
}

var registry = struct {
	sync.Mutex
	sigs map[string]*Signature
}{sigs: make(map[string]*Signature)}

// declare records a binding. Binding the same symbol twice with a different
// signature panics.
func declare(symbol, result string, opts []BindOption, args ...string) *Signature {
	sig := &Signature{Symbol: symbol, Args: args, Result: result}
	for _, opt := range opts {
		opt(sig)
	}

	registry.Lock()
	defer registry.Unlock()
	if prev, ok := registry.sigs[symbol]; ok {
		if !prev.equal(*sig) {
			panic(fmt.Sprintf("interop: %s bound twice: %s and %s", symbol, prev, sig))
		}
		return prev
	}
	registry.sigs[symbol] = sig
	return sig
}

// Signatures returns every bound entry point, sorted by symbol.
func Signatures() []Signature {
	registry.Lock()
	defer registry.Unlock()
	out := make([]Signature, 0, len(registry.sigs))
	for _, s := range registry.sigs {
		c := *s
		c.Args = append([]string(nil), s.Args...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Lookup returns the signature bound to symbol.
func Lookup(symbol string) (Signature, bool) {
	registry.Lock()
	defer registry.Unlock()
	s, ok := registry.sigs[symbol]
	if !ok {
		return Signature{}, false
	}
	return *s, true
}
