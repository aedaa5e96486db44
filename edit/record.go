package edit

import (
	"strconv"
	"strings"
)

// Recorder captures patches emitted during a recording window and
// generalizes them as they arrive: the first node the stream anchors on
// becomes "$0", every node created in-window binds the next "$n", and
// later references to bound nodes (including inside composite wrapper ids)
// are rewritten to their symbols. The resulting script replays against any
// structurally compatible start node.
type Recorder struct {
	patches []Patch
	syms    map[string]string // concrete id -> symbolic form
	next    int
}

func NewRecorder() *Recorder {
	return &Recorder{syms: map[string]string{}, next: 1}
}

// Observe appends one emitted patch to the script.
func (r *Recorder) Observe(p Patch) {
	p = p.clone()
	if len(r.patches) == 0 {
		if a := firstNodeRef(p); a != "" && !IsSymbolic(a) {
			r.syms[a] = "$0"
		}
	}
	if p.Action == Insert && p.Value != nil && p.Value.Node != nil {
		concrete := p.Value.Node.ID
		if written := r.symOf(concrete); written != concrete {
			// wrapper id derived from an already-bound node; replay
			// re-derives it, no fresh binding needed
			p.Value.Node.ID = written
		} else {
			sym := "$" + strconv.Itoa(r.next)
			r.next++
			r.syms[concrete] = sym
			p.Value.Node.ID = sym
		}
	}
	r.rewrite(&p)
	r.patches = append(r.patches, p)
}

// Script returns the generalized patches recorded so far.
func (r *Recorder) Script() []Patch {
	out := make([]Patch, len(r.patches))
	for i, p := range r.patches {
		out[i] = p.clone()
	}
	return out
}

func (r *Recorder) Len() int { return len(r.patches) }

// symOf maps a concrete id to its symbolic form, peeling composite wrapper
// ids; unbound ids come back unchanged.
func (r *Recorder) symOf(id string) string {
	if s, ok := r.syms[id]; ok {
		return s
	}
	if rest, ok := strings.CutPrefix(id, "w-"); ok {
		if inner := r.symOf(rest); inner != rest {
			return "w-" + inner
		}
	}
	if rest, ok := strings.CutSuffix(id, "_w"); ok {
		if inner := r.symOf(rest); inner != rest {
			return inner + "_w"
		}
	}
	return id
}

func (r *Recorder) rewrite(p *Patch) {
	for i := range p.Path {
		if !p.Path[i].IsIndex {
			p.Path[i].ID = r.symOf(p.Path[i].ID)
		}
	}
	if p.Value == nil {
		return
	}
	p.Value.Parent = r.symOf(p.Value.Parent)
	p.Value.Source = r.symOf(p.Value.Source)
	if p.Value.Node != nil {
		p.Value.Node.Target = r.symOf(p.Value.Node.Target)
		p.Value.Node.WrapOf = r.symOf(p.Value.Node.WrapOf)
	}
}

func firstNodeRef(p Patch) string {
	for _, s := range p.Path {
		if !s.IsIndex {
			return s.ID
		}
	}
	return ""
}
