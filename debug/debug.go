// Package debug provides env-flag gated debug logging for the document
// core. Set DENICEK_DEBUG_<AREA>=1 to enable an area.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Txn     bool
	Merge   bool
	Xform   bool
	Resolve bool
	Replay  bool
	Eval    bool
	Sync    bool
}

var d *debug

func init() {
	d = &debug{}
	d.Txn = boolEnv("DENICEK_DEBUG_TXN")
	d.Merge = boolEnv("DENICEK_DEBUG_MERGE")
	d.Xform = boolEnv("DENICEK_DEBUG_XFORM")
	d.Resolve = boolEnv("DENICEK_DEBUG_RESOLVE")
	d.Replay = boolEnv("DENICEK_DEBUG_REPLAY")
	d.Eval = boolEnv("DENICEK_DEBUG_EVAL")
	d.Sync = boolEnv("DENICEK_DEBUG_SYNC")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Txn() bool {
	return d.Txn
}
func Merge() bool {
	return d.Merge
}
func Xform() bool {
	return d.Xform
}
func Resolve() bool {
	return d.Resolve
}
func Replay() bool {
	return d.Replay
}
func Eval() bool {
	return d.Eval
}
func Sync() bool {
	return d.Sync
}

func Logf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
}
