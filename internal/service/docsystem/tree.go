package docsystem

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	models "portal/internal/domain/models/docsystem"
	docsysRepo "portal/internal/domain/repositories/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// treeService implements the TreeService interface
type treeService struct {
	folderRepo   docsysRepo.FolderRepository
	documentRepo docsysRepo.DocumentRepository
	logger       *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	folderRepo docsysRepo.FolderRepository,
	documentRepo docsysRepo.DocumentRepository,
	logger *slog.Logger,
) docsysSvc.TreeService {
	return &treeService{
		folderRepo:   folderRepo,
		documentRepo: documentRepo,
		logger:       logger,
	}
}

// GetTree loads a snapshot of folders and documents and composes the view
func (s *treeService) GetTree(ctx context.Context, opts docsysSvc.TreeOptions) (*models.TreeView, error) {
	folders, err := s.folderRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	documents, err := s.documentRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	view := ComposeTree(folders, documents, opts)
	s.logger.Debug("tree composed",
		"query", view.Query,
		"folders", len(view.Folders),
		"documents", view.DocumentCount(),
	)
	return view, nil
}

// ComposeTree derives the visible tree from flat folder and document lists.
//
// With an empty query everything reachable from the root is visible. Otherwise
// visible documents are those whose title or original name contains the query
// (case-insensitive), and visible folders are name matches, folders holding a
// visible document, and every ancestor of those. Folders that cannot reach a
// root (cyclic or dangling parents) are never shown.
func ComposeTree(folders []models.Folder, documents []models.Document, opts docsysSvc.TreeOptions) *models.TreeView {
	byID := make(map[string]models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	reachable := reachableFolders(folders)

	query := strings.TrimSpace(opts.Query)
	fold := cases.Fold()
	needle := fold.String(query)
	matches := func(s string) bool {
		return strings.Contains(fold.String(s), needle)
	}

	placed := func(doc models.Document) bool {
		return doc.FolderID == nil || reachable[*doc.FolderID]
	}

	visibleFolders := make(map[string]bool, len(reachable))
	var visibleDocs []models.Document

	if query == "" {
		for id := range reachable {
			visibleFolders[id] = true
		}
		for _, doc := range documents {
			if placed(doc) {
				visibleDocs = append(visibleDocs, doc)
			}
		}
	} else {
		var seeds []string
		for _, doc := range documents {
			if !placed(doc) || !(matches(doc.Title) || matches(doc.OriginalName)) {
				continue
			}
			visibleDocs = append(visibleDocs, doc)
			if doc.FolderID != nil {
				seeds = append(seeds, *doc.FolderID)
			}
		}
		for _, f := range folders {
			if reachable[f.ID] && matches(f.Name) {
				seeds = append(seeds, f.ID)
			}
		}
		// Walk up from every seed; visited ids stop both repeats and cycles
		for _, id := range seeds {
			for id != "" && !visibleFolders[id] {
				visibleFolders[id] = true
				parent := byID[id].ParentID
				if parent == nil {
					break
				}
				id = *parent
			}
		}
	}

	coll := collate.New(language.Und, collate.IgnoreCase)
	byName := func(a, b string) int {
		return cmp.Or(coll.CompareString(byID[a].Name, byID[b].Name), cmp.Compare(a, b))
	}

	view := &models.TreeView{
		Query:     query,
		Folders:   make(map[string]models.Folder, len(visibleFolders)),
		Children:  make(map[string][]string),
		Documents: make(map[string][]models.Document),
	}
	for id := range visibleFolders {
		f := byID[id]
		view.Folders[id] = f
		key := models.RootKey
		if f.ParentID != nil {
			key = *f.ParentID
		}
		view.Children[key] = append(view.Children[key], id)
	}
	for key := range view.Children {
		slices.SortFunc(view.Children[key], byName)
	}

	for _, doc := range visibleDocs {
		key := models.RootKey
		if doc.FolderID != nil {
			key = *doc.FolderID
		}
		view.Documents[key] = append(view.Documents[key], doc)
	}
	for key := range view.Documents {
		slices.SortFunc(view.Documents[key], func(a, b models.Document) int {
			return cmp.Or(coll.CompareString(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
		})
	}

	view.Breadcrumb = breadcrumb(byID, reachable, opts.CurrentFolderID)
	view.Expanded = expanded(view)
	return view
}

// reachableFolders returns folders connected to a root through existing parents
func reachableFolders(folders []models.Folder) map[string]bool {
	children := make(map[string][]string)
	var queue []string
	for _, f := range folders {
		if f.ParentID == nil {
			queue = append(queue, f.ID)
			continue
		}
		children[*f.ParentID] = append(children[*f.ParentID], f.ID)
	}

	reachable := make(map[string]bool, len(folders))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		queue = append(queue, children[id]...)
	}
	return reachable
}

// breadcrumb returns the path from the root down to current, inclusive.
// Unknown or unreachable folders yield an empty path.
func breadcrumb(byID map[string]models.Folder, reachable map[string]bool, current *string) []models.Folder {
	path := []models.Folder{}
	if current == nil || !reachable[*current] {
		return path
	}

	seen := make(map[string]bool)
	for id := *current; !seen[id]; {
		seen[id] = true
		f := byID[id]
		path = append(path, f)
		if f.ParentID == nil {
			break
		}
		id = *f.ParentID
	}
	slices.Reverse(path)
	return path
}

// expanded lists folders to render open: the breadcrumb, and when searching
// every visible folder with visible content, in traversal order.
func expanded(view *models.TreeView) []string {
	out := []string{}
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] && view.HasFolder(id) {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, f := range view.Breadcrumb {
		add(f.ID)
	}
	if view.Query == "" {
		return out
	}
	for entry := range view.All() {
		if entry.Kind != models.NodeFolder {
			continue
		}
		id := entry.Folder.ID
		if len(view.Children[id]) > 0 || len(view.Documents[id]) > 0 {
			add(id)
		}
	}
	return out
}
