package docsystem

import (
	"iter"
	"time"
)

// RootKey is the adjacency-map key for the top level of the forest.
const RootKey = ""

// NodeKind tags a tree entry as a folder or a document.
type NodeKind string

const (
	NodeFolder   NodeKind = "folder"
	NodeDocument NodeKind = "document"
)

// TreeView is the composed, read-only view of the folder forest.
// Folders and documents are stored flat; structure lives in the adjacency maps
// so traversal never needs recursion.
type TreeView struct {
	Query string

	// Folders holds every visible folder by id.
	Folders map[string]Folder
	// Children maps a parent id (RootKey for root) to its visible child folder ids, sorted by name.
	Children map[string][]string
	// Documents maps a folder id (RootKey for unfiled) to its visible documents, sorted by title.
	Documents map[string][]Document

	// Breadcrumb is the path from a root folder down to the current folder (inclusive).
	Breadcrumb []Folder
	// Expanded lists folder ids that should render open: the current folder's ancestors
	// and, when searching, every visible folder.
	Expanded []string
}

// TreeEntry is one node yielded by a depth-first traversal.
type TreeEntry struct {
	Kind     NodeKind
	Depth    int
	Folder   *Folder
	Document *Document
}

// ID returns the id of the folder or document behind the entry.
func (e TreeEntry) ID() string {
	if e.Kind == NodeFolder {
		return e.Folder.ID
	}
	return e.Document.ID
}

// HasFolder reports whether a folder is part of the view.
func (v *TreeView) HasFolder(id string) bool {
	_, ok := v.Folders[id]
	return ok
}

// DocumentCount returns the number of visible documents.
func (v *TreeView) DocumentCount() int {
	n := 0
	for _, docs := range v.Documents {
		n += len(docs)
	}
	return n
}

// All yields every visible node depth-first: at each level child folders come
// first (by name), then documents (by title). Iteration stops early when the
// consumer breaks.
func (v *TreeView) All() iter.Seq[TreeEntry] {
	return func(yield func(TreeEntry) bool) {
		var stack []TreeEntry
		seen := make(map[string]bool, len(v.Folders))

		push := func(parentKey string, depth int) {
			docs := v.Documents[parentKey]
			for i := len(docs) - 1; i >= 0; i-- {
				doc := docs[i]
				stack = append(stack, TreeEntry{Kind: NodeDocument, Depth: depth, Document: &doc})
			}
			kids := v.Children[parentKey]
			for i := len(kids) - 1; i >= 0; i-- {
				folder, ok := v.Folders[kids[i]]
				if !ok {
					continue
				}
				stack = append(stack, TreeEntry{Kind: NodeFolder, Depth: depth, Folder: &folder})
			}
		}

		push(RootKey, 0)
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(top) {
				return
			}
			if top.Kind == NodeFolder && !seen[top.Folder.ID] {
				seen[top.Folder.ID] = true
				push(top.Folder.ID, top.Depth+1)
			}
		}
	}
}

// TreeNode represents the root of the nested tree (JSON form)
type TreeNode struct {
	Query      string             `json:"query,omitempty"`
	Folders    []*FolderTreeNode  `json:"folders"`
	Documents  []DocumentTreeNode `json:"documents"`
	Breadcrumb []Folder           `json:"breadcrumb"`
	Expanded   []string           `json:"expanded"`
}

// FolderTreeNode represents a folder in the tree with nested children
type FolderTreeNode struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	ParentID  *string            `json:"parent_id"`
	CreatedAt time.Time          `json:"created_at"`
	Folders   []*FolderTreeNode  `json:"folders"` // Pointers for proper nesting
	Documents []DocumentTreeNode `json:"documents"`
}

// DocumentTreeNode represents a document in the tree (metadata only)
type DocumentTreeNode struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	FolderID   *string   `json:"folder_id"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func documentNode(doc Document) DocumentTreeNode {
	return DocumentTreeNode{
		ID:         doc.ID,
		Title:      doc.Title,
		FolderID:   doc.FolderID,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		UploadedAt: doc.UploadedAt,
	}
}

// Nested converts the adjacency form into nested nodes for the JSON API.
func (v *TreeView) Nested() *TreeNode {
	nodes := make(map[string]*FolderTreeNode, len(v.Folders))
	for id, folder := range v.Folders {
		node := &FolderTreeNode{
			ID:        folder.ID,
			Name:      folder.Name,
			ParentID:  folder.ParentID,
			CreatedAt: folder.CreatedAt,
			Folders:   []*FolderTreeNode{},
			Documents: []DocumentTreeNode{},
		}
		for _, doc := range v.Documents[id] {
			node.Documents = append(node.Documents, documentNode(doc))
		}
		nodes[id] = node
	}

	for parentID, kids := range v.Children {
		if parentID == RootKey {
			continue
		}
		parent, ok := nodes[parentID]
		if !ok {
			continue
		}
		for _, kid := range kids {
			if node, ok := nodes[kid]; ok {
				parent.Folders = append(parent.Folders, node)
			}
		}
	}

	tree := &TreeNode{
		Query:      v.Query,
		Folders:    []*FolderTreeNode{},
		Documents:  []DocumentTreeNode{},
		Breadcrumb: v.Breadcrumb,
		Expanded:   v.Expanded,
	}
	if tree.Breadcrumb == nil {
		tree.Breadcrumb = []Folder{}
	}
	if tree.Expanded == nil {
		tree.Expanded = []string{}
	}
	for _, id := range v.Children[RootKey] {
		if node, ok := nodes[id]; ok {
			tree.Folders = append(tree.Folders, node)
		}
	}
	for _, doc := range v.Documents[RootKey] {
		tree.Documents = append(tree.Documents, documentNode(doc))
	}
	return tree
}
