package docsystem_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	models "portal/internal/domain/models/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
	"portal/internal/repository/memory"
	"portal/internal/service/docsystem"
	"portal/internal/storage/blob"
)

type testEnv struct {
	ctx   context.Context
	store *memory.Store
	dir   *memory.Directory
	blobs *blob.MemoryStore

	folders   docsysSvc.FolderService
	documents docsysSvc.DocumentService
	shares    docsysSvc.ShareService
	tree      docsysSvc.TreeService
	moves     docsysSvc.MoveService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	store := memory.NewStore()
	folderRepo := memory.NewFolderRepository(store)
	docRepo := memory.NewDocumentRepository(store)
	shareRepo := memory.NewShareRepository(store)
	dir := memory.NewDirectory(store)
	txManager := memory.NewTransactionManager(store)
	blobs := blob.NewMemoryStore()

	folders := docsystem.NewFolderService(folderRepo, docRepo, shareRepo, blobs, txManager, logger)
	documents := docsystem.NewDocumentService(docRepo, folderRepo, shareRepo, blobs, txManager, logger)

	return &testEnv{
		ctx:       context.Background(),
		store:     store,
		dir:       dir,
		blobs:     blobs,
		folders:   folders,
		documents: documents,
		shares:    docsystem.NewShareService(shareRepo, docRepo, dir, txManager, logger),
		tree:      docsystem.NewTreeService(folderRepo, docRepo, logger),
		moves:     docsystem.NewMoveService(folderRepo, docRepo, folders, documents, logger),
	}
}

func (e *testEnv) folder(c *qt.C, name string, parent *models.Folder) *models.Folder {
	c.Helper()
	req := &docsysSvc.CreateFolderRequest{Name: name}
	if parent != nil {
		req.ParentID = &parent.ID
	}
	f, err := e.folders.CreateFolder(e.ctx, req)
	c.Assert(err, qt.IsNil)
	return f
}

func (e *testEnv) upload(c *qt.C, filename string, parent *models.Folder) *models.Document {
	c.Helper()
	req := &docsysSvc.UploadDocumentRequest{Filename: filename}
	if parent != nil {
		req.FolderID = &parent.ID
	}
	doc, err := e.documents.UploadDocument(e.ctx, req, strings.NewReader("content of "+filename))
	c.Assert(err, qt.IsNil)
	return doc
}

// assertAcyclic walks every folder's parent chain and fails if it revisits a folder
func (e *testEnv) assertAcyclic(c *qt.C) {
	c.Helper()
	all, err := e.folders.ListFolders(e.ctx)
	c.Assert(err, qt.IsNil)

	byID := make(map[string]models.Folder, len(all))
	for _, f := range all {
		byID[f.ID] = f
	}
	for _, f := range all {
		seen := map[string]bool{}
		for cur := f; ; {
			c.Assert(seen[cur.ID], qt.IsFalse, qt.Commentf("cycle through %s", cur.ID))
			seen[cur.ID] = true
			if cur.ParentID == nil {
				break
			}
			parent, ok := byID[*cur.ParentID]
			c.Assert(ok, qt.IsTrue, qt.Commentf("dangling parent %s", *cur.ParentID))
			cur = parent
		}
	}
}

func ptr(s string) *string { return &s }
