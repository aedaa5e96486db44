// Package xform records schema-level transformations (rename, wrap) scoped
// by a selector and lazily applies pending ones during reconciliation.
// Transformation records replicate through the store's note log; concurrent
// records at the same scope and version resolve last-writer-wins in the
// deterministic total order, so every replica converges on the same
// surviving record.
package xform

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/krsion/MyDenicek-sub001/dom"
)

// Scope selects the class of nodes a transformation applies to: every
// descendant of LCA matching the set selector components. Unset components
// match everything.
type Scope struct {
	LCA dom.NodeID `json:"lca"`
	// Tag, when non-empty, requires element nodes with this tag.
	Tag string `json:"tag,omitempty"`
	// Depth, when >= 0, requires this distance from the LCA; -1 matches
	// any depth. The zero value means "exactly the LCA itself", which no
	// transformation targets. Build open scopes with NewScope.
	Depth int `json:"depth"`
	// Kind, when non-nil, requires this node kind.
	Kind *dom.Kind `json:"kind,omitempty"`
}

// NewScope selects every descendant of lca at any depth. Narrow the
// returned value's Tag, Depth and Kind as needed.
func NewScope(lca dom.NodeID) Scope {
	return Scope{LCA: lca, Depth: -1}
}

// Key is the scope identity versions increase under.
func (s Scope) Key() string {
	tag := "*"
	if s.Tag != "" {
		tag = s.Tag
	}
	depth := "*"
	if s.Depth >= 0 {
		depth = fmt.Sprintf("%d", s.Depth)
	}
	kind := "*"
	if s.Kind != nil {
		kind = strings.ToLower(s.Kind.String())
	}
	return fmt.Sprintf("%s|%s|%s|%s", s.LCA, tag, depth, kind)
}

// Match reports whether a node with the given payload at the given depth
// below the LCA satisfies the selector.
func (s Scope) Match(d dom.Data, depth int) bool {
	if s.Tag != "" && (d.Kind != dom.ElementKind || d.Tag != s.Tag) {
		return false
	}
	if s.Depth >= 0 && depth != s.Depth {
		return false
	}
	if s.Kind != nil && d.Kind != *s.Kind {
		return false
	}
	return true
}

type Type string

const (
	Rename Type = "rename"
	Wrap   Type = "wrap"
)

// Record is one transformation: at Version of the scope's lineage, rename
// matching nodes to Tag or wrap them in a Tag element.
type Record struct {
	Scope   Scope  `json:"scope"`
	Version int    `json:"version"`
	Type    Type   `json:"type"`
	Tag     string `json:"tag"`
}

// WrapperID derives the deterministic id of the wrapper a wrap
// transformation inserts around a node. Every replica derives the same id,
// so concurrent application collapses to a single wrapper.
func WrapperID(scopeKey string, version int, node dom.NodeID) dom.NodeID {
	h := fnv.New32a()
	h.Write([]byte(scopeKey))
	return dom.NodeID(fmt.Sprintf("w-%08x-%d-%s", h.Sum32(), version, node))
}
