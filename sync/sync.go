// Package sync moves operation batches between replicas over JSON-RPC 2.0
// and persists snapshots. It carries no document semantics: batches are
// opaque to the transport, and convergence comes from the document's merge.
//
// Protocol, all parameters JSON objects:
//
//	denicek/init   call: {clock} -> {ops}, the ops the caller is missing
//	denicek/update call: {ops} -> {merged}, folds ops in and broadcasts
//	denicek/change notification: {ops}, pushed to every other client
package sync

import (
	"github.com/krsion/MyDenicek-sub001/causal"
	"github.com/krsion/MyDenicek-sub001/store"
)

const (
	MethodInit   = "denicek/init"
	MethodUpdate = "denicek/update"
	MethodChange = "denicek/change"
)

type initParams struct {
	Clock causal.Clock `json:"clock,omitempty"`
}

type initResult struct {
	Ops []store.Op `json:"ops,omitempty"`
}

type updateParams struct {
	Ops []store.Op `json:"ops,omitempty"`
}

type updateResult struct {
	Merged int `json:"merged"`
}

type changeParams struct {
	Ops []store.Op `json:"ops,omitempty"`
}
