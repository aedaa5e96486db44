package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	jsonpatch "github.com/evanphx/json-patch"

	denicek "github.com/krsion/MyDenicek-sub001"
	"github.com/krsion/MyDenicek-sub001/store"
)

// snapshotFile is the on-disk form: the full op log, replayable by merge
// into a fresh replica.
type snapshotFile struct {
	SavedAt string     `json:"savedAt"`
	Ops     []store.Op `json:"ops"`
}

// Saver periodically writes the document's op log to disk. Writes go to a
// temp file first and rename into place, so readers never see a torn
// snapshot. A tick whose op log is structurally unchanged writes nothing.
type Saver struct {
	doc      *denicek.Document
	path     string
	interval time.Duration
	last     []byte // ops JSON as of the previous save
}

func NewSaver(doc *denicek.Document, path string, interval time.Duration) *Saver {
	return &Saver{doc: doc, path: path, interval: interval}
}

// Run saves on every interval tick and once more on shutdown.
func (s *Saver) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := s.Save(); err != nil {
				return err
			}
		case <-ctx.Done():
			return s.Save()
		}
	}
}

func (s *Saver) Save() error {
	ops := s.doc.Ops()
	opsJSON, err := json.Marshal(ops)
	if err != nil {
		return err
	}
	if s.last != nil && jsonpatch.Equal(opsJSON, s.last) {
		return nil
	}
	data, err := json.Marshal(snapshotFile{
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Ops:     ops,
	})
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return err
	}
	s.last = opsJSON
	return nil
}

// LoadSnapshot reads a snapshot's op log; a missing file is an empty log.
func LoadSnapshot(path string) ([]store.Op, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var f snapshotFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return f.Ops, nil
}
