package tasks

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// JournalFile is the name of the completion journal kept in processed/.
const JournalFile = "tasks.json"

// JournalEntry records one completed task.
type JournalEntry struct {
	TaskID      string    `json:"task_id"`
	InFile      string    `json:"in_file"`
	CompletedAt time.Time `json:"completed_at"`
}

// Journal is the on-disk record of completed tasks.
type Journal struct {
	Entries []JournalEntry `json:"entries"`
}

// ReadJournal reads the completion journal from the processed directory
// under root. Returns an empty Journal if the file does not exist.
func ReadJournal(root string) (*Journal, error) {
	data, err := os.ReadFile(filepath.Join(root, ProcessedDir, JournalFile))
	if os.IsNotExist(err) {
		return &Journal{}, nil
	}
	if err != nil {
		return nil, err
	}

	var j Journal
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

// journal appends a completion record, rewriting the journal atomically via
// a temporary file and rename.
func (p *Pool) journal(taskID, in string) error {
	p.jmu.Lock()
	defer p.jmu.Unlock()

	j, err := ReadJournal(p.root)
	if err != nil {
		return err
	}
	j.Entries = append(j.Entries, JournalEntry{
		TaskID:      taskID,
		InFile:      in,
		CompletedAt: time.Now().UTC(),
	})

	data, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Join(p.root, ProcessedDir)
	tmp, err := os.CreateTemp(dir, ".tasks-*.json")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, filepath.Join(dir, JournalFile))
}
