package docsystem_test

import (
	"slices"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	models "portal/internal/domain/models/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
	"portal/internal/service/docsystem"
)

func folder(id, name string, parent string) models.Folder {
	f := models.Folder{ID: id, Name: name, CreatedAt: time.Unix(0, 0)}
	if parent != "" {
		f.ParentID = &parent
	}
	return f
}

func document(id, title string, folderID string) models.Document {
	d := models.Document{ID: id, Title: title, OriginalName: title}
	if folderID != "" {
		d.FolderID = &folderID
	}
	return d
}

func visibleIDs(view *models.TreeView) []string {
	var ids []string
	for entry := range view.All() {
		ids = append(ids, entry.ID())
	}
	return ids
}

func TestComposeTree_SearchIncludesAncestors(t *testing.T) {
	c := qt.New(t)
	folders := []models.Folder{
		folder("A", "Fund I", ""),
		folder("B", "Quarterly", "A"),
		folder("X", "Unrelated", ""),
	}
	docs := []models.Document{
		document("inv", "invoice.pdf", "B"),
		document("other", "memo.pdf", "X"),
	}

	view := docsystem.ComposeTree(folders, docs, docsysSvc.TreeOptions{Query: "invoice"})
	c.Assert(visibleIDs(view), qt.DeepEquals, []string{"A", "B", "inv"})
	c.Assert(view.Expanded, qt.DeepEquals, []string{"A", "B"})
}

func TestComposeTree_EmptyQueryShowsEverything(t *testing.T) {
	c := qt.New(t)
	folders := []models.Folder{
		folder("b", "beta", ""),
		folder("a", "Alpha", ""),
		folder("a2", "second", "a"),
		folder("a1", "First", "a"),
	}
	docs := []models.Document{
		document("d2", "zeta.pdf", "a"),
		document("d1", "Apple.pdf", "a"),
		document("loose", "loose.txt", ""),
	}

	view := docsystem.ComposeTree(folders, docs, docsysSvc.TreeOptions{})
	// folders before documents at each level, both ordered case-insensitively
	c.Assert(visibleIDs(view), qt.DeepEquals, []string{"a", "a1", "a2", "d1", "d2", "b", "loose"})
	c.Assert(view.DocumentCount(), qt.Equals, 3)
	c.Assert(view.Expanded, qt.HasLen, 0)

	var depths []int
	for entry := range view.All() {
		depths = append(depths, entry.Depth)
	}
	c.Assert(depths, qt.DeepEquals, []int{0, 1, 1, 1, 1, 0, 0})
}

func TestComposeTree_CaseInsensitiveAndFolderMatches(t *testing.T) {
	c := qt.New(t)
	folders := []models.Folder{
		folder("root", "Investors", ""),
		folder("k1", "K-1 FORMS", "root"),
		folder("deep", "2023", "k1"),
		folder("empty", "misc", ""),
	}
	docs := []models.Document{
		document("d", "Statement.pdf", "deep"),
	}

	view := docsystem.ComposeTree(folders, docs, docsysSvc.TreeOptions{Query: "k-1 forms"})
	c.Assert(visibleIDs(view), qt.DeepEquals, []string{"root", "k1"})

	view = docsystem.ComposeTree(folders, docs, docsysSvc.TreeOptions{Query: "STATEMENT"})
	c.Assert(visibleIDs(view), qt.DeepEquals, []string{"root", "k1", "deep", "d"})

	view = docsystem.ComposeTree(folders, docs, docsysSvc.TreeOptions{Query: "nothing matches"})
	c.Assert(visibleIDs(view), qt.HasLen, 0)
}

func TestComposeTree_SearchClosure(t *testing.T) {
	c := qt.New(t)
	// a wide, deep forest with matches sprinkled around
	var folders []models.Folder
	var docs []models.Document
	for i := 0; i < 40; i++ {
		id := string(rune('a'+i%26)) + string(rune('0'+i/26))
		parent := ""
		if i > 2 {
			prev := folders[i/2]
			parent = prev.ID
		}
		name := "folder"
		if i%7 == 0 {
			name = "target folder"
		}
		folders = append(folders, folder(id, name, parent))
		if i%5 == 0 {
			docs = append(docs, document("doc-"+id, "target.pdf", id))
		}
	}

	view := docsystem.ComposeTree(folders, docs, docsysSvc.TreeOptions{Query: "target"})
	c.Assert(len(view.Folders) > 0, qt.IsTrue)

	for id, f := range view.Folders {
		// every visible folder reaches the root through visible folders
		for cur := f; cur.ParentID != nil; {
			parent, ok := view.Folders[*cur.ParentID]
			c.Assert(ok, qt.IsTrue, qt.Commentf("%s has hidden ancestor %s", id, *cur.ParentID))
			cur = parent
		}

		// and is a match, holds a match, or is an ancestor of one
		justified := f.Name == "target folder" || len(view.Documents[id]) > 0 || len(view.Children[id]) > 0
		c.Assert(justified, qt.IsTrue, qt.Commentf("folder %s has no reason to be visible", id))
	}
}

func TestComposeTree_CorruptedCycleTerminates(t *testing.T) {
	c := qt.New(t)
	folders := []models.Folder{
		folder("ok", "Reports", ""),
		folder("x", "loop x", "y"),
		folder("y", "loop y", "x"),
		folder("orphan", "loop child", "x"),
	}
	docs := []models.Document{
		document("d1", "loop.pdf", "y"),
		document("d2", "loop report.pdf", "ok"),
	}

	for _, query := range []string{"", "loop"} {
		view := docsystem.ComposeTree(folders, docs, docsysSvc.TreeOptions{Query: query})
		c.Assert(view.HasFolder("x"), qt.IsFalse)
		c.Assert(view.HasFolder("y"), qt.IsFalse)
		c.Assert(view.HasFolder("orphan"), qt.IsFalse)
		c.Assert(slices.Contains(visibleIDs(view), "d2"), qt.IsTrue)
		c.Assert(slices.Contains(visibleIDs(view), "d1"), qt.IsFalse)
	}

	view := docsystem.ComposeTree(folders, docs, docsysSvc.TreeOptions{CurrentFolderID: ptr("x")})
	c.Assert(view.Breadcrumb, qt.HasLen, 0)
}

func TestComposeTree_Breadcrumb(t *testing.T) {
	c := qt.New(t)
	folders := []models.Folder{
		folder("a", "A", ""),
		folder("b", "B", "a"),
		folder("c", "C", "b"),
	}

	view := docsystem.ComposeTree(folders, nil, docsysSvc.TreeOptions{CurrentFolderID: ptr("c")})
	var names []string
	for _, f := range view.Breadcrumb {
		names = append(names, f.Name)
	}
	c.Assert(names, qt.DeepEquals, []string{"A", "B", "C"})
	c.Assert(view.Expanded, qt.DeepEquals, []string{"a", "b", "c"})

	view = docsystem.ComposeTree(folders, nil, docsysSvc.TreeOptions{CurrentFolderID: ptr("gone")})
	c.Assert(view.Breadcrumb, qt.HasLen, 0)
}

func TestComposeTree_DoesNotMutateInput(t *testing.T) {
	c := qt.New(t)
	folders := []models.Folder{folder("b", "B", ""), folder("a", "A", "")}
	docs := []models.Document{document("2", "b", ""), document("1", "a", "")}
	foldersCopy := slices.Clone(folders)
	docsCopy := slices.Clone(docs)

	docsystem.ComposeTree(folders, docs, docsysSvc.TreeOptions{Query: "a"})
	c.Assert(folders, qt.DeepEquals, foldersCopy)
	c.Assert(docs, qt.DeepEquals, docsCopy)
}

func TestTreeService_GetTree(t *testing.T) {
	c := qt.New(t)
	env := newTestEnv(t)
	a := env.folder(c, "A", nil)
	b := env.folder(c, "B", a)
	env.upload(c, "invoice.pdf", b)
	env.upload(c, "readme.txt", nil)

	view, err := env.tree.GetTree(env.ctx, docsysSvc.TreeOptions{Query: "invoice"})
	c.Assert(err, qt.IsNil)
	c.Assert(len(view.Folders), qt.Equals, 2)
	c.Assert(view.DocumentCount(), qt.Equals, 1)

	nested := view.Nested()
	c.Assert(nested.Folders, qt.HasLen, 1)
	c.Assert(nested.Folders[0].Name, qt.Equals, "A")
	c.Assert(nested.Folders[0].Folders[0].Name, qt.Equals, "B")
	c.Assert(nested.Folders[0].Folders[0].Documents[0].Title, qt.Equals, "invoice")
	c.Assert(nested.Documents, qt.HasLen, 0)
}
