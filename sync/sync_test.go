package sync

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	denicek "github.com/krsion/MyDenicek-sub001"
	"github.com/krsion/MyDenicek-sub001/dom"
	"github.com/krsion/MyDenicek-sub001/edit"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sync.yaml")
	body := "listen: :9000\npersist: /tmp/doc.json\nsaveIntervalSeconds: 30\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != ":9000" || cfg.Persist != "/tmp/doc.json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.SaveInterval() != 30*time.Second {
		t.Errorf("interval = %v", cfg.SaveInterval())
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sync.yaml")
	if err := os.WriteFile(path, []byte("persist: doc.json\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Listen != DefaultListen {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.SaveInterval() != DefaultSaveInterval {
		t.Errorf("interval = %v", cfg.SaveInterval())
	}
}

func newSyncDoc(t *testing.T, replica string) *denicek.Document {
	t.Helper()
	d := denicek.New(replica, dom.Element("body"))
	err := d.Update(func(tx *denicek.Txn) error {
		if _, err := tx.AddChild(d.Root(), edit.Literal{ID: "p", Kind: dom.ElementKind, Tag: "p"}, -1); err != nil {
			return err
		}
		_, err := tx.AddChild("p", edit.Literal{ID: "pt", Kind: dom.ValueKind, Text: "hello"}, -1)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSnapshotRoundTrip(t *testing.T) {
	d := newSyncDoc(t, "a")
	path := filepath.Join(t.TempDir(), "doc.json")
	s := NewSaver(d, path, time.Second)
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	ops, err := LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	restored := denicek.New("b", dom.Element("body"))
	restored.Merge(ops)

	data, err := restored.GetNode("pt")
	if err != nil {
		t.Fatal(err)
	}
	if data.Text != "hello" {
		t.Errorf("restored text = %q", data.Text)
	}
	kids, _ := restored.GetChildIDs(restored.Root())
	if len(kids) != 1 || kids[0] != "p" {
		t.Errorf("restored children = %v", kids)
	}
}

func TestSaverSkipsUnchanged(t *testing.T) {
	d := newSyncDoc(t, "a")
	path := filepath.Join(t.TempDir(), "doc.json")
	s := NewSaver(d, path, time.Second)
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	st1, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	st2, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !st1.ModTime().Equal(st2.ModTime()) {
		t.Errorf("unchanged document was rewritten")
	}

	err = d.Update(func(tx *denicek.Txn) error {
		return tx.SetText("pt", "changed")
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	ops, err := LoadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	restored := denicek.New("c", dom.Element("body"))
	restored.Merge(ops)
	data, _ := restored.GetNode("pt")
	if data.Text != "changed" {
		t.Errorf("restored text = %q", data.Text)
	}
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	ops, err := LoadSnapshot(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	if ops != nil {
		t.Errorf("ops = %v, want nil", ops)
	}
}
