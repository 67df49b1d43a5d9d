// Package backup snapshots and restores the entire repository as one JSON
// backup document.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/outreach"
	"github.com/hpungsan/profreach/internal/repo"
	"github.com/hpungsan/profreach/internal/sanitize"
)

// Export reads every collection and the profile singleton into one
// aggregate. This is a best-effort point-in-time view: there is no
// cross-collection isolation anywhere in the system, so none is promised
// here either.
func Export(ctx context.Context, r *repo.Repo) (*outreach.AppData, error) {
	docs, err := r.Documents(ctx)
	if err != nil {
		return nil, err
	}

	return &outreach.AppData{
		Professors: r.Professors(),
		Profile:    r.Profile(),
		Documents:  docs,
		Memory:     r.Memory(),
		Chats:      r.Chats(),
		Drafts:     r.Drafts(),
	}, nil
}

// Import sanitizes raw backup bytes and, on success, replaces every
// collection in turn. A failure partway through leaves previously-replaced
// collections committed and later ones untouched; there is deliberately no
// rollback, matching the rest of the system's consistency model.
func Import(ctx context.Context, r *repo.Repo, raw []byte) (*outreach.AppData, error) {
	data, err := sanitize.ImportJSON(raw)
	if err != nil {
		return nil, err
	}

	if err := r.SetProfessors(data.Professors); err != nil {
		return nil, err
	}
	if err := r.SetProfile(data.Profile); err != nil {
		return nil, err
	}
	if err := r.SetDocuments(ctx, data.Documents); err != nil {
		return nil, err
	}
	if err := r.SetMemory(data.Memory); err != nil {
		return nil, err
	}
	if err := r.SetChats(data.Chats); err != nil {
		return nil, err
	}
	if err := r.SetDrafts(data.Drafts); err != nil {
		return nil, err
	}

	return data, nil
}

// WriteFileOutput describes a backup written to disk.
type WriteFileOutput struct {
	Path       string `json:"path"`
	Professors int    `json:"professors"`
	Documents  int    `json:"documents"`
	Memory     int    `json:"memory"`
	Chats      int    `json:"chats"`
	Drafts     int    `json:"drafts"`
}

// WriteFile exports the repository to a JSON file. An empty path picks
// <exportsDir>/profreach-backup-<date>.json.
func WriteFile(ctx context.Context, r *repo.Repo, exportsDir, path string) (*WriteFileOutput, error) {
	data, err := Export(ctx, r)
	if err != nil {
		return nil, err
	}

	if path == "" {
		filename := fmt.Sprintf("profreach-backup-%s.json", time.Now().Format("2006-01-02"))
		path = filepath.Join(exportsDir, filename)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write backup: %w", err))
	}

	return &WriteFileOutput{
		Path:       path,
		Professors: len(data.Professors),
		Documents:  len(data.Documents),
		Memory:     len(data.Memory),
		Chats:      len(data.Chats),
		Drafts:     len(data.Drafts),
	}, nil
}

// ReadFile imports a backup from a JSON file on disk.
func ReadFile(ctx context.Context, r *repo.Repo, path string) (*WriteFileOutput, error) {
	if path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound("backup file", path)
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to read backup file: %w", err))
	}

	data, err := Import(ctx, r, raw)
	if err != nil {
		return nil, err
	}

	return &WriteFileOutput{
		Path:       path,
		Professors: len(data.Professors),
		Documents:  len(data.Documents),
		Memory:     len(data.Memory),
		Chats:      len(data.Chats),
		Drafts:     len(data.Drafts),
	}, nil
}
