package seed_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	models "portal/internal/domain/models/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
	"portal/internal/repository/memory"
	"portal/internal/seed"
	"portal/internal/service/docsystem"
	"portal/internal/storage/blob"
)

type env struct {
	seeder  *seed.Seeder
	dir     *memory.Directory
	folders docsysSvc.FolderService
	docs    docsysSvc.DocumentService
	shares  docsysSvc.ShareService
	tree    docsysSvc.TreeService
}

func newEnv() *env {
	logger := slog.New(slog.DiscardHandler)
	store := memory.NewStore()
	folderRepo := memory.NewFolderRepository(store)
	docRepo := memory.NewDocumentRepository(store)
	shareRepo := memory.NewShareRepository(store)
	dir := memory.NewDirectory(store)
	tx := memory.NewTransactionManager(store)
	blobs := blob.NewMemoryStore()

	e := &env{
		dir:     dir,
		folders: docsystem.NewFolderService(folderRepo, docRepo, shareRepo, blobs, tx, logger),
		docs:    docsystem.NewDocumentService(docRepo, folderRepo, shareRepo, blobs, tx, logger),
		shares:  docsystem.NewShareService(shareRepo, docRepo, dir, tx, logger),
		tree:    docsystem.NewTreeService(folderRepo, docRepo, logger),
	}
	e.seeder = seed.NewSeeder(dir, e.folders, e.docs, e.shares, logger)
	return e
}

func TestDefaultFixture(t *testing.T) {
	c := qt.New(t)
	e := newEnv()
	ctx := context.Background()

	f, err := seed.Default()
	c.Assert(err, qt.IsNil)

	sum, err := e.seeder.Apply(ctx, f)
	c.Assert(err, qt.IsNil)
	c.Assert(sum, qt.DeepEquals, &seed.Summary{Users: 4, Folders: 6, Documents: 5, Shares: 4})

	investors, err := e.dir.ListByRole(ctx, models.RoleInvestor)
	c.Assert(err, qt.IsNil)
	c.Assert(investors, qt.HasLen, 2)

	statements, err := e.shares.ListSharedWith(ctx, "00000000-0000-0000-0000-000000000010", models.ShareTargetStatement)
	c.Assert(err, qt.IsNil)
	c.Assert(statements, qt.HasLen, 1)
	c.Assert(statements[0].Document.Title, qt.Equals, "Q3 2024 Statement")

	view, err := e.tree.GetTree(ctx, docsysSvc.TreeOptions{Query: "statement"})
	c.Assert(err, qt.IsNil)
	c.Assert(view.DocumentCount(), qt.Equals, 1)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: ""},
		{name: "nested", input: "folders:\n  - name: A\n    folders:\n      - name: B\n"},
		{name: "unknown key", input: "folderz: []\n", wantErr: `parse fixture: yaml: unmarshal errors:\n.*field folderz not found.*`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			f, err := seed.Parse(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				c.Assert(err, qt.ErrorMatches, "(?s)"+tt.wantErr)
				return
			}
			c.Assert(err, qt.IsNil)
			c.Assert(f, qt.IsNotNil)
		})
	}
}

func TestApplyStopsOnInvalidData(t *testing.T) {
	c := qt.New(t)
	e := newEnv()

	f, err := seed.Parse(strings.NewReader(`
folders:
  - name: Good
  - name: "bad/name"
`))
	c.Assert(err, qt.IsNil)

	sum, err := e.seeder.Apply(context.Background(), f)
	c.Assert(err, qt.ErrorMatches, `folder "bad/name": .*`)
	c.Assert(sum.Folders, qt.Equals, 1)

	f, err = seed.Parse(strings.NewReader(`
documents:
  - filename: a.txt
    shares:
      - grantees: [u1]
        role: investor
`))
	c.Assert(err, qt.IsNil)
	_, err = e.seeder.Apply(context.Background(), f)
	c.Assert(err, qt.ErrorMatches, `document "a.txt": share_target is required.*`)
}
