package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/profreach/internal/docstore"
	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/kvstore"
	"github.com/hpungsan/profreach/internal/notify"
	"github.com/hpungsan/profreach/internal/outreach"
)

func newTestRepo(t *testing.T) (*Repo, *notify.Bus) {
	t.Helper()
	fs, err := mem.NewFS()
	require.NoError(t, err)

	bus := notify.NewBus()
	kv := kvstore.New(fs, bus)
	docs := docstore.New(filepath.Join(t.TempDir(), "documents.db"), kv, bus, KeyDocuments)
	t.Cleanup(func() { docs.Close() })
	return New(kv, docs), bus
}

func TestProfessors_EmptyByDefault(t *testing.T) {
	r, _ := newTestRepo(t)

	got := r.Professors()
	if got == nil || len(got) != 0 {
		t.Errorf("Professors = %v, want allocated empty slice", got)
	}
}

func TestAddProfessor_RoundTrip(t *testing.T) {
	r, _ := newTestRepo(t)

	p := outreach.NewProfessor("Ada Lovelace")
	require.NoError(t, r.AddProfessor(p))

	got := r.Professor(p.ID)
	require.NotNil(t, got)
	require.Equal(t, "Ada Lovelace", got.Name)
}

func TestUpdateProfessor_RefreshesUpdatedAtAndKeepsID(t *testing.T) {
	r, _ := newTestRepo(t)

	p := outreach.NewProfessor("Ada")
	p.CreatedAt = "2020-01-01T00:00:00Z"
	p.UpdatedAt = "2020-01-01T00:00:00Z"
	require.NoError(t, r.AddProfessor(p))

	err := r.UpdateProfessor(p.ID, func(cur *outreach.Professor) {
		cur.Notes = "met at conference"
		cur.ID = "attempted-overwrite"
	})
	require.NoError(t, err)

	got := r.Professor(p.ID)
	require.NotNil(t, got, "ID must survive an update that tries to change it")
	require.Equal(t, "met at conference", got.Notes)
	require.Equal(t, "2020-01-01T00:00:00Z", got.CreatedAt)
	require.NotEqual(t, "2020-01-01T00:00:00Z", got.UpdatedAt)

	_, err = time.Parse(time.RFC3339, got.UpdatedAt)
	require.NoError(t, err)
}

func TestUpdateProfessor_MissingIDIsNoOp(t *testing.T) {
	r, bus := newTestRepo(t)

	published := 0
	bus.Subscribe(func(string) { published++ })

	require.NoError(t, r.UpdateProfessor("absent", func(p *outreach.Professor) {
		p.Notes = "never applied"
	}))
	require.Zero(t, published, "a no-op update must not publish")
}

func TestDeleteProfessor_CascadesToChatsAndDrafts(t *testing.T) {
	r, _ := newTestRepo(t)

	keep := outreach.NewProfessor("Keep")
	gone := outreach.NewProfessor("Gone")
	require.NoError(t, r.AddProfessor(keep))
	require.NoError(t, r.AddProfessor(gone))

	for _, pid := range []string{keep.ID, gone.ID} {
		require.NoError(t, r.AddChat(outreach.ChatMessage{
			ID: outreach.NewID(), ProfessorID: pid,
			Role: outreach.RoleUser, Content: "hi", CreatedAt: outreach.Now(),
		}))
		require.NoError(t, r.AddDraft(outreach.EmailDraft{
			ID: outreach.NewID(), ProfessorID: pid,
			Template: outreach.TemplateColdOutreach, CreatedAt: outreach.Now(),
		}))
	}
	require.NoError(t, r.AddMemory(outreach.MemoryItem{
		ID: outreach.NewID(), Content: "fact", Source: "chat:" + gone.ID, CreatedAt: outreach.Now(),
	}))

	require.NoError(t, r.DeleteProfessor(gone.ID))

	require.Nil(t, r.Professor(gone.ID))
	require.NotNil(t, r.Professor(keep.ID))
	require.Empty(t, r.ChatsByProfessor(gone.ID))
	require.Empty(t, r.DraftsByProfessor(gone.ID))
	require.Len(t, r.ChatsByProfessor(keep.ID), 1)
	require.Len(t, r.DraftsByProfessor(keep.ID), 1)
	require.Len(t, r.Memory(), 1, "memory is not part of the cascade")
}

func TestMutations_PublishTheirStorageKey(t *testing.T) {
	r, bus := newTestRepo(t)

	var keys []string
	bus.Subscribe(func(key string) { keys = append(keys, key) })

	p := outreach.NewProfessor("Ada")
	require.NoError(t, r.AddProfessor(p))
	require.NoError(t, r.SetProfile(outreach.DefaultProfile()))
	require.NoError(t, r.AddMemory(outreach.MemoryItem{
		ID: outreach.NewID(), Content: "fact", Source: "manual", CreatedAt: outreach.Now(),
	}))

	require.Equal(t, []string{KeyProfessors, KeyProfile, KeyMemory}, keys)
}

func TestProfile_DefaultWhenUnset(t *testing.T) {
	r, _ := newTestRepo(t)

	p := r.Profile()
	require.NotNil(t, p.ResearchInterests)
	require.NotNil(t, p.Skills)
	require.NotNil(t, p.Publications)
}

func TestDocuments_DelegateToDocstore(t *testing.T) {
	r, _ := newTestRepo(t)
	ctx := context.Background()

	d := outreach.Document{
		ID: outreach.NewID(), Name: "cv.pdf", Category: outreach.CategoryResume,
		Content: "x", MimeType: "application/pdf", Size: 1, CreatedAt: outreach.Now(),
	}
	require.NoError(t, r.AddDocument(ctx, d))

	docs, err := r.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	require.NoError(t, r.DeleteDocument(ctx, d.ID))
	docs, err = r.Documents(ctx)
	require.NoError(t, err)
	require.Empty(t, docs)
}

func TestDraft_NotFound(t *testing.T) {
	r, _ := newTestRepo(t)

	_, err := r.Draft("absent")
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestAPIKey_Trimmed(t *testing.T) {
	r, _ := newTestRepo(t)

	require.Empty(t, r.APIKey())
	require.NoError(t, r.SetAPIKey("  secret-key  "))
	require.Equal(t, "secret-key", r.APIKey())
}
