// Package repo provides typed accessors for each collection, layered over
// the key-value store (small structured records) and the document store
// (large payloads). Every successful mutation publishes the affected storage
// key so observers can re-read.
package repo

import (
	"context"
	"strings"

	"github.com/hpungsan/profreach/internal/docstore"
	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/kvstore"
	"github.com/hpungsan/profreach/internal/outreach"
)

// Storage keys. Every collection is persisted whole under one key.
const (
	KeyProfessors = "profreach:professors"
	KeyProfile    = "profreach:profile"
	KeyDocuments  = "profreach:documents"
	KeyMemory     = "profreach:memory"
	KeyChats      = "profreach:chats"
	KeyDrafts     = "profreach:drafts"
	KeyAPIKey     = "profreach:apikey"
)

// Repo is the repository layer. Construct one per process with explicit
// store and bus handles; it holds no state of its own.
type Repo struct {
	kv   *kvstore.Store
	docs *docstore.Store
}

// New creates a repository over the given stores.
func New(kv *kvstore.Store, docs *docstore.Store) *Repo {
	return &Repo{kv: kv, docs: docs}
}

// Professors

func (r *Repo) Professors() []outreach.Professor {
	out := []outreach.Professor{}
	kvstore.Get(r.kv, KeyProfessors, &out)
	return out
}

func (r *Repo) SetProfessors(professors []outreach.Professor) error {
	return kvstore.Set(r.kv, KeyProfessors, professors)
}

// Professor returns the professor with the given id, or nil.
func (r *Repo) Professor(id string) *outreach.Professor {
	for _, p := range r.Professors() {
		if p.ID == id {
			return &p
		}
	}
	return nil
}

func (r *Repo) AddProfessor(p outreach.Professor) error {
	return r.SetProfessors(append(r.Professors(), p))
}

// UpdateProfessor merges apply onto the record with the given id and
// refreshes updatedAt. A missing id is a no-op.
func (r *Repo) UpdateProfessor(id string, apply func(*outreach.Professor)) error {
	all := r.Professors()
	for i := range all {
		if all[i].ID == id {
			apply(&all[i])
			all[i].ID = id
			all[i].UpdatedAt = outreach.Now()
			return r.SetProfessors(all)
		}
	}
	return nil
}

// DeleteProfessor removes the professor and cascades to its chat messages
// and email drafts. Documents and memory items are intentionally untouched.
func (r *Repo) DeleteProfessor(id string) error {
	kept := make([]outreach.Professor, 0)
	for _, p := range r.Professors() {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if err := r.SetProfessors(kept); err != nil {
		return err
	}

	chats := make([]outreach.ChatMessage, 0)
	for _, c := range r.Chats() {
		if c.ProfessorID != id {
			chats = append(chats, c)
		}
	}
	if err := r.SetChats(chats); err != nil {
		return err
	}

	drafts := make([]outreach.EmailDraft, 0)
	for _, d := range r.Drafts() {
		if d.ProfessorID != id {
			drafts = append(drafts, d)
		}
	}
	return r.SetDrafts(drafts)
}

// Profile

func (r *Repo) Profile() outreach.Profile {
	out := outreach.DefaultProfile()
	kvstore.Get(r.kv, KeyProfile, &out)
	return out
}

func (r *Repo) SetProfile(p outreach.Profile) error {
	return kvstore.Set(r.kv, KeyProfile, p)
}

// Documents (asynchronous; backed by the document store)

func (r *Repo) Documents(ctx context.Context) ([]outreach.Document, error) {
	return r.docs.GetAll(ctx)
}

func (r *Repo) SetDocuments(ctx context.Context, docs []outreach.Document) error {
	return r.docs.SaveAll(ctx, docs)
}

func (r *Repo) AddDocument(ctx context.Context, d outreach.Document) error {
	return r.docs.Add(ctx, d)
}

func (r *Repo) DeleteDocument(ctx context.Context, id string) error {
	return r.docs.Delete(ctx, id)
}

// Memory

func (r *Repo) Memory() []outreach.MemoryItem {
	out := []outreach.MemoryItem{}
	kvstore.Get(r.kv, KeyMemory, &out)
	return out
}

func (r *Repo) SetMemory(items []outreach.MemoryItem) error {
	return kvstore.Set(r.kv, KeyMemory, items)
}

func (r *Repo) AddMemory(item outreach.MemoryItem) error {
	return r.SetMemory(append(r.Memory(), item))
}

// UpdateMemory merges apply onto the item with the given id. No timestamp
// refresh: only Professor carries updatedAt.
func (r *Repo) UpdateMemory(id string, apply func(*outreach.MemoryItem)) error {
	all := r.Memory()
	for i := range all {
		if all[i].ID == id {
			apply(&all[i])
			all[i].ID = id
			return r.SetMemory(all)
		}
	}
	return nil
}

func (r *Repo) DeleteMemory(id string) error {
	kept := make([]outreach.MemoryItem, 0)
	for _, m := range r.Memory() {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return r.SetMemory(kept)
}

// Chats

func (r *Repo) Chats() []outreach.ChatMessage {
	out := []outreach.ChatMessage{}
	kvstore.Get(r.kv, KeyChats, &out)
	return out
}

func (r *Repo) SetChats(chats []outreach.ChatMessage) error {
	return kvstore.Set(r.kv, KeyChats, chats)
}

func (r *Repo) AddChat(msg outreach.ChatMessage) error {
	return r.SetChats(append(r.Chats(), msg))
}

// ChatsByProfessor is a linear filter over the full collection, which is
// fine at this scale.
func (r *Repo) ChatsByProfessor(professorID string) []outreach.ChatMessage {
	out := make([]outreach.ChatMessage, 0)
	for _, c := range r.Chats() {
		if c.ProfessorID == professorID {
			out = append(out, c)
		}
	}
	return out
}

// Drafts

func (r *Repo) Drafts() []outreach.EmailDraft {
	out := []outreach.EmailDraft{}
	kvstore.Get(r.kv, KeyDrafts, &out)
	return out
}

func (r *Repo) SetDrafts(drafts []outreach.EmailDraft) error {
	return kvstore.Set(r.kv, KeyDrafts, drafts)
}

func (r *Repo) AddDraft(d outreach.EmailDraft) error {
	return r.SetDrafts(append(r.Drafts(), d))
}

func (r *Repo) DraftsByProfessor(professorID string) []outreach.EmailDraft {
	out := make([]outreach.EmailDraft, 0)
	for _, d := range r.Drafts() {
		if d.ProfessorID == professorID {
			out = append(out, d)
		}
	}
	return out
}

// Draft returns the draft with the given id, or an error.
func (r *Repo) Draft(id string) (*outreach.EmailDraft, error) {
	for _, d := range r.Drafts() {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, errors.NewNotFound("draft", id)
}

func (r *Repo) DeleteDraft(id string) error {
	kept := make([]outreach.EmailDraft, 0)
	for _, d := range r.Drafts() {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	return r.SetDrafts(kept)
}

// API key

// APIKey returns the stored model API key, or "" when unset.
func (r *Repo) APIKey() string {
	var key string
	kvstore.Get(r.kv, KeyAPIKey, &key)
	return strings.TrimSpace(key)
}

func (r *Repo) SetAPIKey(key string) error {
	return kvstore.Set(r.kv, KeyAPIKey, strings.TrimSpace(key))
}
