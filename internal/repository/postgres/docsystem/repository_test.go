package docsystem_test

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"github.com/google/uuid"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	"portal/internal/domain/repositories"
	docsysRepo "portal/internal/domain/repositories/docsystem"
	"portal/internal/repository/postgres"
	"portal/internal/repository/postgres/docsystem"
)

type pgEnv struct {
	ctx       context.Context
	folders   docsysRepo.FolderRepository
	documents docsysRepo.DocumentRepository
	shares    docsysRepo.ShareRepository
	users     *docsystem.PostgresUserDirectory
	tx        repositories.TransactionManager
}

// newPgEnv migrates a throwaway table prefix and resets it when the test ends.
// Needs TEST_DATABASE_URL.
func newPgEnv(t *testing.T) *pgEnv {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	c := qt.New(t)
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	pool, err := postgres.CreateConnectionPool(ctx, url)
	c.Assert(err, qt.IsNil)
	t.Cleanup(pool.Close)

	prefix := fmt.Sprintf("it%d_", time.Now().UnixNano())
	migrator, err := postgres.NewMigrator(pool, prefix, logger)
	c.Assert(err, qt.IsNil)
	c.Assert(migrator.Up(ctx), qt.IsNil)
	t.Cleanup(func() {
		if err := migrator.Reset(ctx); err != nil {
			t.Logf("reset %s: %v", prefix, err)
		}
		pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %sgoose_db_version", prefix))
		migrator.Close()
	})

	cfg := &postgres.RepositoryConfig{Pool: pool, Tables: postgres.NewTableNames(prefix), Logger: logger}
	return &pgEnv{
		ctx:       ctx,
		folders:   docsystem.NewFolderRepository(cfg),
		documents: docsystem.NewDocumentRepository(cfg),
		shares:    docsystem.NewShareRepository(cfg),
		users:     docsystem.NewUserDirectory(cfg),
		tx:        postgres.NewTransactionManager(pool, logger),
	}
}

func (e *pgEnv) folder(c *qt.C, name string, parent *models.Folder) *models.Folder {
	c.Helper()
	now := time.Now().UTC()
	f := &models.Folder{ID: uuid.NewString(), Name: name, CreatedAt: now, UpdatedAt: now}
	if parent != nil {
		f.ParentID = &parent.ID
	}
	c.Assert(e.folders.Create(e.ctx, f), qt.IsNil)
	return f
}

func (e *pgEnv) document(c *qt.C, title string, folder *models.Folder) *models.Document {
	c.Helper()
	now := time.Now().UTC()
	d := &models.Document{
		ID:           uuid.NewString(),
		Title:        title,
		OriginalName: title + ".pdf",
		MimeType:     "application/pdf",
		SizeBytes:    10,
		UploadedAt:   now,
		UpdatedAt:    now,
	}
	if folder != nil {
		d.FolderID = &folder.ID
	}
	c.Assert(e.documents.Create(e.ctx, d), qt.IsNil)
	return d
}

func TestPostgresFolderHierarchy(t *testing.T) {
	env := newPgEnv(t)
	c := qt.New(t)

	a := env.folder(c, "A", nil)
	b := env.folder(c, "B", a)
	cc := env.folder(c, "C", b)

	desc, err := env.folders.ListDescendantIDs(env.ctx, a.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(desc, qt.ContentEquals, []string{b.ID, cc.ID})

	anc, err := env.folders.ListAncestorIDs(env.ctx, cc.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(anc, qt.DeepEquals, []string{b.ID, a.ID})

	roots, err := env.folders.ListChildren(env.ctx, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(roots, qt.HasLen, 1)
	c.Assert(roots[0].ID, qt.Equals, a.ID)

	unknown, err := env.folders.ListAncestorIDs(env.ctx, "not-a-uuid")
	c.Assert(err, qt.IsNil)
	c.Assert(unknown, qt.HasLen, 0)
}

func TestPostgresAncestorsTerminateOnCycle(t *testing.T) {
	env := newPgEnv(t)
	c := qt.New(t)

	a := env.folder(c, "A", nil)
	b := env.folder(c, "B", a)

	// write the corrupt edge directly
	a.ParentID = &b.ID
	c.Assert(env.folders.Update(env.ctx, a), qt.IsNil)

	anc, err := env.folders.ListAncestorIDs(env.ctx, a.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(anc, qt.DeepEquals, []string{b.ID})

	desc, err := env.folders.ListDescendantIDs(env.ctx, a.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(desc, qt.DeepEquals, []string{b.ID})
}

func TestPostgresMissingReferences(t *testing.T) {
	env := newPgEnv(t)
	c := qt.New(t)

	_, err := env.folders.GetByID(env.ctx, uuid.NewString())
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)
	_, err = env.documents.GetByID(env.ctx, "nope")
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)

	missing := uuid.NewString()
	now := time.Now().UTC()
	err = env.folders.Create(env.ctx, &models.Folder{ID: uuid.NewString(), Name: "x", ParentID: &missing, CreatedAt: now, UpdatedAt: now})
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)

	err = env.documents.Create(env.ctx, &models.Document{ID: uuid.NewString(), Title: "x", FolderID: &missing, UploadedAt: now, UpdatedAt: now})
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)
}

func TestPostgresShareUpsert(t *testing.T) {
	env := newPgEnv(t)
	c := qt.New(t)

	doc := env.document(c, "Statement", nil)
	grantee := uuid.NewString()
	first := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)

	share := &models.Share{
		DocumentID: doc.ID,
		GranteeID:  grantee,
		Access:     models.InvestorAccess{Target: models.ShareTargetDocument},
		CreatedAt:  first,
		UpdatedAt:  first,
	}
	c.Assert(env.shares.Upsert(env.ctx, share), qt.IsNil)

	again := &models.Share{
		DocumentID: doc.ID,
		GranteeID:  grantee,
		Access:     models.InvestorAccess{Target: models.ShareTargetStatement},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	c.Assert(env.shares.Upsert(env.ctx, again), qt.IsNil)
	c.Assert(again.CreatedAt.Equal(first), qt.IsTrue)

	list, err := env.shares.ListByDocument(env.ctx, doc.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(list, qt.HasLen, 1)
	c.Assert(list[0].Access, qt.Equals, models.Access(models.InvestorAccess{Target: models.ShareTargetStatement}))

	byGrantee, err := env.shares.ListByGrantee(env.ctx, grantee)
	c.Assert(err, qt.IsNil)
	c.Assert(byGrantee, qt.HasLen, 1)

	err = env.shares.Upsert(env.ctx, &models.Share{DocumentID: uuid.NewString(), GranteeID: grantee, Access: models.AdminAccess{}})
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)

	ok, err := env.shares.Delete(env.ctx, doc.ID, grantee)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	ok, err = env.shares.Delete(env.ctx, doc.ID, grantee)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestPostgresFolderDeleteCascades(t *testing.T) {
	env := newPgEnv(t)
	c := qt.New(t)

	a := env.folder(c, "A", nil)
	b := env.folder(c, "B", a)
	doc := env.document(c, "Inside", b)
	c.Assert(env.shares.Upsert(env.ctx, &models.Share{DocumentID: doc.ID, GranteeID: uuid.NewString(), Access: models.AdminAccess{}}), qt.IsNil)

	c.Assert(env.folders.Delete(env.ctx, []string{a.ID}), qt.IsNil)

	_, err := env.folders.GetByID(env.ctx, b.ID)
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)
	_, err = env.documents.GetByID(env.ctx, doc.ID)
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)
	shares, err := env.shares.ListByDocument(env.ctx, doc.ID)
	c.Assert(err, qt.IsNil)
	c.Assert(shares, qt.HasLen, 0)
}

func TestPostgresTransactionRollsBack(t *testing.T) {
	env := newPgEnv(t)
	c := qt.New(t)

	var created *models.Folder
	err := env.tx.ExecTx(env.ctx, func(ctx context.Context) error {
		c.Assert(env.folders.LockHierarchy(ctx), qt.IsNil)
		now := time.Now().UTC()
		created = &models.Folder{ID: uuid.NewString(), Name: "temp", CreatedAt: now, UpdatedAt: now}
		if err := env.folders.Create(ctx, created); err != nil {
			return err
		}
		return domain.NewValidation("abort")
	})
	c.Assert(err, qt.ErrorIs, domain.ErrValidation)

	_, err = env.folders.GetByID(env.ctx, created.ID)
	c.Assert(err, qt.ErrorIs, domain.ErrNotFound)

	c.Assert(env.folders.LockHierarchy(env.ctx), qt.IsNotNil)
}

func TestPostgresUserDirectory(t *testing.T) {
	env := newPgEnv(t)
	c := qt.New(t)

	alice := models.Grantee{ID: uuid.NewString(), Label: "Alice", Email: "alice@example.com", Role: models.RoleInvestor}
	bob := models.Grantee{ID: uuid.NewString(), Label: "Bob", Email: "bob@example.com", Role: models.RoleInvestor}
	admin := models.Grantee{ID: uuid.NewString(), Label: "Ada", Role: models.RoleAdmin}
	for _, u := range []models.Grantee{bob, alice, admin} {
		c.Assert(env.users.Upsert(env.ctx, u), qt.IsNil)
	}

	investors, err := env.users.ListByRole(env.ctx, models.RoleInvestor)
	c.Assert(err, qt.IsNil)
	c.Assert(investors, qt.DeepEquals, []models.Grantee{alice, bob})

	found, err := env.users.GetByIDs(env.ctx, []string{admin.ID, "bogus"})
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.DeepEquals, []models.Grantee{admin})
}
