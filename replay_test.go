package denicek

import (
	"testing"

	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/edit"
)

func TestReplayAgainstAnotherNode(t *testing.T) {
	d := newTestDoc(t, "a")
	buildList(t, d)

	d.RecordStart()
	err := d.Update(func(tx *Txn) error {
		if err := tx.SetTag("li1", "task"); err != nil {
			return err
		}
		_, err := tx.AddChild("li1", edit.Literal{Kind: dom.ValueKind, Text: "!"}, -1)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	script := d.RecordStop()
	if len(script) != 2 {
		t.Fatalf("script has %d patches", len(script))
	}
	if script[0].Path[0].ID != "$0" {
		t.Fatalf("script not generalized: %+v", script[0])
	}

	stats, err := d.Replay(script, "li2")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Applied != 2 || stats.Skipped != 0 {
		t.Errorf("stats = %+v", stats)
	}
	data, _ := d.GetNode("li2")
	if data.Tag != "task" {
		t.Errorf("li2 tag = %q, want task", data.Tag)
	}
	kids, _ := d.GetChildIDs("li2")
	if len(kids) != 2 {
		t.Fatalf("li2 children = %v", kids)
	}
	last, _ := d.GetNode(kids[1])
	if last.Text != "!" {
		t.Errorf("appended text = %q", last.Text)
	}
	// li1 keeps its own copy of the edit
	if kids1, _ := d.GetChildIDs("li1"); len(kids1) != 2 {
		t.Errorf("li1 children = %v", kids1)
	}
}

func TestReplayWrapDerivesWrapperID(t *testing.T) {
	d := newTestDoc(t, "a")
	buildList(t, d)

	d.RecordStart()
	err := d.Update(func(tx *Txn) error {
		if err := tx.SetTag("li1", "li"); err != nil { // anchor the target
			return err
		}
		_, err := tx.Wrap("li1", "em", dom.None)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	script := d.RecordStop()

	if _, err := d.Replay(script, "li2"); err != nil {
		t.Fatal(err)
	}
	data, err := d.GetNode("w-li2")
	if err != nil {
		t.Fatalf("derived wrapper missing: %v", err)
	}
	if data.Tag != "em" || data.WrapOf != "li2" {
		t.Errorf("wrapper = %+v", data)
	}
	kids, _ := d.GetChildIDs("w-li2")
	if len(kids) != 1 || kids[0] != "li2" {
		t.Errorf("wrapped children = %v", kids)
	}

	// replaying the same script again converges instead of double wrapping
	if _, err := d.Replay(script, "li2"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.GetNode("w-w-li2"); err == nil {
		t.Errorf("second replay nested another wrapper")
	}
}

func TestReplayCopyReadsCurrentValue(t *testing.T) {
	d := newTestDoc(t, "a")
	err := d.Update(func(tx *Txn) error {
		if _, err := tx.AddChild(d.Root(), edit.Literal{ID: "src", Kind: dom.ValueKind, Text: "v1"}, -1); err != nil {
			return err
		}
		for _, id := range []string{"d1", "d2"} {
			if _, err := tx.AddChild(d.Root(), edit.Literal{ID: id, Kind: dom.ElementKind, Tag: "div"}, -1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	d.RecordStart()
	err = d.Update(func(tx *Txn) error {
		_, err := tx.Copy("src", "d1", -1)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	script := d.RecordStop()

	err = d.Update(func(tx *Txn) error {
		return tx.SetText("src", "v2")
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.Replay(script, "d2"); err != nil {
		t.Fatal(err)
	}
	kids, _ := d.GetChildIDs("d2")
	if len(kids) != 1 {
		t.Fatalf("d2 children = %v", kids)
	}
	data, _ := d.GetNode(kids[0])
	if data.Text != "v2" {
		t.Errorf("copied text = %q, want the current value v2", data.Text)
	}
}

func TestReplaySkipsUnresolvable(t *testing.T) {
	d := newTestDoc(t, "a")
	buildList(t, d)

	script := []edit.Patch{
		{Action: edit.Put, Path: edit.Path{edit.Node("$0")},
			Value: &edit.Value{Field: "tag", Raw: "x"}},
		{Action: edit.Put, Path: edit.Path{edit.Node("$7")},
			Value: &edit.Value{Field: "tag", Raw: "y"}},
		{Action: edit.Del, Path: edit.Path{edit.Node("gone")}},
	}
	stats, err := d.Replay(script, "li1")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Applied != 1 || stats.Skipped != 2 {
		t.Errorf("stats = %+v", stats)
	}
	data, _ := d.GetNode("li1")
	if data.Tag != "x" {
		t.Errorf("li1 tag = %q", data.Tag)
	}
}

func TestRunAction(t *testing.T) {
	d := newTestDoc(t, "a")
	buildList(t, d)

	script := []edit.Patch{
		{Action: edit.Put, Path: edit.Path{edit.Node("$0")},
			Value: &edit.Value{Field: "tag", Raw: "done"}},
	}
	err := d.Update(func(tx *Txn) error {
		if _, err := tx.AddChild(d.Root(), edit.Literal{
			ID: "act", Kind: dom.ActionKind, Label: "mark done", Target: "li3",
		}, -1); err != nil {
			return err
		}
		return tx.SetScript("act", script)
	})
	if err != nil {
		t.Fatal(err)
	}

	stats, err := d.RunAction("act")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Applied != 1 {
		t.Errorf("stats = %+v", stats)
	}
	data, _ := d.GetNode("li3")
	if data.Tag != "done" {
		t.Errorf("li3 tag = %q, want done", data.Tag)
	}
}

func TestReplaySuffixWrapperID(t *testing.T) {
	d := newTestDoc(t, "a")
	buildList(t, d)

	d.RecordStart()
	err := d.Update(func(tx *Txn) error {
		if err := tx.SetTag("li1", "li"); err != nil { // anchor the target
			return err
		}
		_, err := tx.Wrap("li1", "em", "li1_w")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	script := d.RecordStop()

	var symbolized bool
	for _, p := range script {
		if p.Action == edit.Insert && p.Value != nil && p.Value.Node != nil && p.Value.Node.ID == "$0_w" {
			symbolized = true
		}
	}
	if !symbolized {
		t.Fatalf("wrapper id not generalized: %+v", script)
	}

	if _, err := d.Replay(script, "li2"); err != nil {
		t.Fatal(err)
	}
	data, err := d.GetNode("li2_w")
	if err != nil {
		t.Fatalf("derived wrapper missing: %v", err)
	}
	if data.Tag != "em" || data.WrapOf != "li2" {
		t.Errorf("wrapper = %+v", data)
	}
	kids, _ := d.GetChildIDs("li2_w")
	if len(kids) != 1 || kids[0] != "li2" {
		t.Errorf("wrapped children = %v", kids)
	}

	// replaying the same script again converges instead of double wrapping
	if _, err := d.Replay(script, "li2"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.GetNode("li2_w_w"); err == nil {
		t.Errorf("second replay nested another wrapper")
	}
}
