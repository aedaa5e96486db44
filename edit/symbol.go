package edit

import "strings"

// Symbolic node references are "$0", "$1", ... and composite wrapper ids
// built from them: "w-" + x and x + "_w" resolve recursively through
// already-bound ids.

func IsSymbolic(id string) bool {
	return strings.Contains(id, "$")
}

// IsPureSymbol reports whether id is a bare symbol ("$0", "$1", ...)
// rather than a composite id containing one.
func IsPureSymbol(id string) bool {
	if len(id) < 2 || id[0] != '$' {
		return false
	}
	for _, r := range id[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Resolve maps a possibly symbolic id to a concrete one through the symbol
// table. Concrete ids pass through unchanged. The second result is false
// when a symbolic reference is unbound. A bound id is taken as is; the
// "w-" prefix and "_w" suffix cuts come after, so a composite like "$1_w"
// resolves through its core.
func Resolve(syms map[string]string, id string) (string, bool) {
	if id == "" {
		return "", true
	}
	if c, ok := syms[id]; ok {
		return c, true
	}
	if rest, ok := strings.CutPrefix(id, "w-"); ok && IsSymbolic(rest) {
		c, ok := Resolve(syms, rest)
		if !ok {
			return "", false
		}
		return "w-" + c, true
	}
	if rest, ok := strings.CutSuffix(id, "_w"); ok && IsSymbolic(rest) {
		c, ok := Resolve(syms, rest)
		if !ok {
			return "", false
		}
		return c + "_w", true
	}
	if IsSymbolic(id) {
		return "", false
	}
	return id, true
}
