package backup

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hack-pad/hackpadfs/mem"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/profreach/internal/docstore"
	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/kvstore"
	"github.com/hpungsan/profreach/internal/notify"
	"github.com/hpungsan/profreach/internal/outreach"
	"github.com/hpungsan/profreach/internal/repo"
)

func newTestRepo(t *testing.T) *repo.Repo {
	t.Helper()
	fs, err := mem.NewFS()
	require.NoError(t, err)

	bus := notify.NewBus()
	kv := kvstore.New(fs, bus)
	docs := docstore.New(filepath.Join(t.TempDir(), "documents.db"), kv, bus, repo.KeyDocuments)
	t.Cleanup(func() { docs.Close() })
	return repo.New(kv, docs)
}

func seed(t *testing.T, r *repo.Repo) outreach.Professor {
	t.Helper()
	ctx := context.Background()

	p := outreach.NewProfessor("Ada Lovelace")
	p.University = "Cambridge"
	require.NoError(t, r.AddProfessor(p))

	profile := outreach.DefaultProfile()
	profile.Name = "Applicant"
	profile.Skills = []string{"Go"}
	require.NoError(t, r.SetProfile(profile))

	require.NoError(t, r.AddDocument(ctx, outreach.Document{
		ID: outreach.NewID(), Name: "cv.pdf", Category: outreach.CategoryResume,
		Content: "pdf bytes", MimeType: "application/pdf", Size: 9, CreatedAt: outreach.Now(),
	}))
	require.NoError(t, r.AddMemory(outreach.MemoryItem{
		ID: outreach.NewID(), Content: "prefers email", Source: "manual", CreatedAt: outreach.Now(),
	}))
	require.NoError(t, r.AddChat(outreach.ChatMessage{
		ID: outreach.NewID(), ProfessorID: p.ID,
		Role: outreach.RoleUser, Content: "hello", CreatedAt: outreach.Now(),
	}))
	require.NoError(t, r.AddDraft(outreach.EmailDraft{
		ID: outreach.NewID(), ProfessorID: p.ID,
		Template: outreach.TemplateColdOutreach, Subject: "Inquiry", Body: "Dear Prof.", CreatedAt: outreach.Now(),
	}))
	return p
}

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestRepo(t)
	p := seed(t, src)

	data, err := Export(ctx, src)
	require.NoError(t, err)

	raw, err := json.Marshal(data)
	require.NoError(t, err)

	dst := newTestRepo(t)
	_, err = Import(ctx, dst, raw)
	require.NoError(t, err)

	require.Len(t, dst.Professors(), 1)
	require.Equal(t, "Cambridge", dst.Professors()[0].University)
	require.Equal(t, "Applicant", dst.Profile().Name)
	require.Len(t, dst.Memory(), 1)
	require.Len(t, dst.ChatsByProfessor(p.ID), 1)
	require.Len(t, dst.DraftsByProfessor(p.ID), 1)

	docs, err := dst.Documents(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "pdf bytes", docs[0].Content)
}

func TestImport_GarbageLeavesDataUntouched(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	seed(t, r)

	for _, raw := range []string{
		`{not json`,
		`["an", "array"]`,
		`{"foo": 1, "bar": 2}`,
	} {
		_, err := Import(ctx, r, []byte(raw))
		require.True(t, errors.Is(err, errors.ErrUnrecognizedBackup), "raw=%s err=%v", raw, err)
	}

	require.Len(t, r.Professors(), 1, "failed imports must not mutate existing data")
	require.Len(t, r.Memory(), 1)
}

func TestImport_ReplacesExistingCollections(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)
	seed(t, r)

	_, err := Import(ctx, r, []byte(`{"professors": []}`))
	require.NoError(t, err)

	require.Empty(t, r.Professors())
	require.Empty(t, r.Memory(), "absent collections import as empty and replace")
}

func TestImport_DropsMalformedRecords(t *testing.T) {
	ctx := context.Background()
	r := newTestRepo(t)

	raw := `{
		"professors": [
			{"id": "p1", "name": "Ada", "hiringStatus": "nonsense"},
			{"name": "missing id"}
		]
	}`
	_, err := Import(ctx, r, []byte(raw))
	require.NoError(t, err)

	got := r.Professors()
	require.Len(t, got, 1)
	require.Equal(t, outreach.HiringUnknown, got[0].HiringStatus)
}

func TestWriteFileReadFile(t *testing.T) {
	ctx := context.Background()
	src := newTestRepo(t)
	seed(t, src)

	exportsDir := t.TempDir()
	out, err := WriteFile(ctx, src, exportsDir, "")
	require.NoError(t, err)
	require.Equal(t, 1, out.Professors)
	require.FileExists(t, out.Path)

	info, err := os.Stat(out.Path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dst := newTestRepo(t)
	in, err := ReadFile(ctx, dst, out.Path)
	require.NoError(t, err)
	require.Equal(t, 1, in.Professors)
	require.Len(t, dst.Professors(), 1)
}

func TestReadFile_MissingPath(t *testing.T) {
	r := newTestRepo(t)

	_, err := ReadFile(context.Background(), r, filepath.Join(t.TempDir(), "absent.json"))
	require.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = ReadFile(context.Background(), r, "")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}
