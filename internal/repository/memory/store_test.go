package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"portal/internal/domain"
	models "portal/internal/domain/models/docsystem"
	"portal/internal/repository/memory"
)

func ptr(s string) *string { return &s }

type fixture struct {
	store   *memory.Store
	folders *memory.FolderRepository
	docs    *memory.DocumentRepository
	shares  *memory.ShareRepository
}

func newFixture() fixture {
	store := memory.NewStore()
	return fixture{
		store:   store,
		folders: memory.NewFolderRepository(store).(*memory.FolderRepository),
		docs:    memory.NewDocumentRepository(store).(*memory.DocumentRepository),
		shares:  memory.NewShareRepository(store).(*memory.ShareRepository),
	}
}

func (f fixture) folder(c *qt.C, id string, parent *string) {
	c.Helper()
	err := f.folders.Create(context.Background(), &models.Folder{ID: id, Name: id, ParentID: parent, CreatedAt: time.Now()})
	c.Assert(err, qt.IsNil)
}

func (f fixture) document(c *qt.C, id string, folder *string) {
	c.Helper()
	err := f.docs.Create(context.Background(), &models.Document{ID: id, Title: id, FolderID: folder, UploadedAt: time.Now()})
	c.Assert(err, qt.IsNil)
}

func TestFolderRepository_CreateRequiresParent(t *testing.T) {
	c := qt.New(t)
	f := newFixture()

	err := f.folders.Create(context.Background(), &models.Folder{ID: "a", Name: "A", ParentID: ptr("missing")})
	c.Assert(errors.Is(err, domain.ErrNotFound), qt.IsTrue)
}

func TestFolderRepository_DescendantsAndAncestors(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture()

	f.folder(c, "a", nil)
	f.folder(c, "b", ptr("a"))
	f.folder(c, "c", ptr("b"))
	f.folder(c, "d", ptr("a"))

	desc, err := f.folders.ListDescendantIDs(ctx, "a")
	c.Assert(err, qt.IsNil)
	c.Assert(desc, qt.ContentEquals, []string{"b", "c", "d"})

	anc, err := f.folders.ListAncestorIDs(ctx, "c")
	c.Assert(err, qt.IsNil)
	c.Assert(anc, qt.DeepEquals, []string{"b", "a"})

	roots, err := f.folders.ListChildren(ctx, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(roots, qt.HasLen, 1)
	c.Assert(roots[0].ID, qt.Equals, "a")
}

func TestFolderRepository_DeleteCascades(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture()

	f.folder(c, "a", nil)
	f.folder(c, "b", ptr("a"))
	f.folder(c, "other", nil)
	f.document(c, "in-b", ptr("b"))
	f.document(c, "elsewhere", ptr("other"))
	c.Assert(f.shares.Upsert(ctx, &models.Share{DocumentID: "in-b", GranteeID: "u1", Access: models.AdminAccess{}}), qt.IsNil)

	c.Assert(f.folders.Delete(ctx, []string{"a"}), qt.IsNil)

	all, err := f.folders.ListAll(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 1)

	_, err = f.docs.GetByID(ctx, "in-b")
	c.Assert(errors.Is(err, domain.ErrNotFound), qt.IsTrue)
	_, err = f.docs.GetByID(ctx, "elsewhere")
	c.Assert(err, qt.IsNil)

	shares, err := f.shares.ListByGrantee(ctx, "u1")
	c.Assert(err, qt.IsNil)
	c.Assert(shares, qt.HasLen, 0)
}

func TestShareRepository_UpsertKeepsOneRow(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture()
	f.document(c, "doc", nil)

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Assert(f.shares.Upsert(ctx, &models.Share{
		DocumentID: "doc", GranteeID: "inv", CreatedAt: first,
		Access: models.InvestorAccess{Target: models.ShareTargetStatement},
	}), qt.IsNil)
	c.Assert(f.shares.Upsert(ctx, &models.Share{
		DocumentID: "doc", GranteeID: "inv", CreatedAt: first.Add(time.Hour),
		Access: models.InvestorAccess{Target: models.ShareTargetDocument},
	}), qt.IsNil)

	shares, err := f.shares.ListByDocument(ctx, "doc")
	c.Assert(err, qt.IsNil)
	c.Assert(shares, qt.HasLen, 1)
	c.Assert(models.TargetOf(shares[0].Access), qt.Equals, models.ShareTargetDocument)
	c.Assert(shares[0].CreatedAt, qt.Equals, first)

	existed, err := f.shares.Delete(ctx, "doc", "inv")
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsTrue)
	existed, err = f.shares.Delete(ctx, "doc", "inv")
	c.Assert(err, qt.IsNil)
	c.Assert(existed, qt.IsFalse)
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	f := newFixture()
	tm := memory.NewTransactionManager(f.store)

	f.folder(c, "keep", nil)
	boom := errors.New("boom")

	err := tm.ExecTx(ctx, func(ctx context.Context) error {
		if err := f.folders.Create(ctx, &models.Folder{ID: "temp", Name: "temp"}); err != nil {
			return err
		}
		if err := f.folders.Delete(ctx, []string{"keep"}); err != nil {
			return err
		}
		// nested calls join the outer transaction
		if err := tm.ExecTx(ctx, func(ctx context.Context) error { return f.folders.LockHierarchy(ctx) }); err != nil {
			return err
		}
		return boom
	})
	c.Assert(err, qt.Equals, boom)

	all, err := f.folders.ListAll(ctx)
	c.Assert(err, qt.IsNil)
	c.Assert(all, qt.HasLen, 1)
	c.Assert(all[0].ID, qt.Equals, "keep")
}

func TestFolderRepository_LockHierarchyOutsideTx(t *testing.T) {
	c := qt.New(t)
	f := newFixture()

	err := f.folders.LockHierarchy(context.Background())
	c.Assert(errors.Is(err, domain.ErrValidation), qt.IsTrue)
}

func TestDirectory_ListByRole(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	dir := memory.NewDirectory(memory.NewStore())

	c.Assert(dir.Put(ctx,
		models.Grantee{ID: "2", Label: "Zed", Role: models.RoleInvestor},
		models.Grantee{ID: "1", Label: "Ann", Role: models.RoleInvestor},
		models.Grantee{ID: "3", Label: "Boss", Role: models.RoleAdmin},
	), qt.IsNil)

	investors, err := dir.ListByRole(ctx, models.RoleInvestor)
	c.Assert(err, qt.IsNil)
	c.Assert(investors, qt.HasLen, 2)
	c.Assert(investors[0].ID, qt.Equals, "1")

	found, err := dir.GetByIDs(ctx, []string{"3", "missing"})
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.HasLen, 1)
}
