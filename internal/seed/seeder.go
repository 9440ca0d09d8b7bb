package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	models "portal/internal/domain/models/docsystem"
	docsysSvc "portal/internal/domain/services/docsystem"
)

// UserWriter stores directory entries
type UserWriter interface {
	Upsert(ctx context.Context, user models.Grantee) error
}

// Seeder writes a fixture through the services, so every invariant the
// services enforce applies to seed data too
type Seeder struct {
	users     UserWriter
	folders   docsysSvc.FolderService
	documents docsysSvc.DocumentService
	shares    docsysSvc.ShareService
	logger    *slog.Logger
}

// NewSeeder creates a seeder
func NewSeeder(
	users UserWriter,
	folders docsysSvc.FolderService,
	documents docsysSvc.DocumentService,
	shares docsysSvc.ShareService,
	logger *slog.Logger,
) *Seeder {
	return &Seeder{
		users:     users,
		folders:   folders,
		documents: documents,
		shares:    shares,
		logger:    logger,
	}
}

// Summary counts what Apply created
type Summary struct {
	Users     int
	Folders   int
	Documents int
	Shares    int
}

// pending is a fixture folder waiting to be created under parentID
type pending struct {
	folder   Folder
	parentID *string
}

// Apply creates users, then folders top-down, then documents and shares.
// It stops at the first error; earlier writes are kept.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (*Summary, error) {
	sum := &Summary{}

	for _, u := range f.Users {
		role, err := models.ParseRole(string(u.Role))
		if err != nil {
			return sum, fmt.Errorf("user %s: %w", u.ID, err)
		}
		if err := s.users.Upsert(ctx, models.Grantee{ID: u.ID, Label: u.Label, Email: u.Email, Role: role}); err != nil {
			return sum, fmt.Errorf("user %s: %w", u.ID, err)
		}
		sum.Users++
	}

	for _, d := range f.Documents {
		if err := s.document(ctx, d, nil, sum); err != nil {
			return sum, err
		}
	}

	queue := make([]pending, 0, len(f.Folders))
	for _, folder := range f.Folders {
		queue = append(queue, pending{folder: folder})
	}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		created, err := s.folders.CreateFolder(ctx, &docsysSvc.CreateFolderRequest{
			Name:     next.folder.Name,
			ParentID: next.parentID,
		})
		if err != nil {
			return sum, fmt.Errorf("folder %q: %w", next.folder.Name, err)
		}
		sum.Folders++
		s.logger.Debug("seeded folder", "id", created.ID, "name", created.Name)

		for _, d := range next.folder.Documents {
			if err := s.document(ctx, d, &created.ID, sum); err != nil {
				return sum, err
			}
		}
		for _, child := range next.folder.Folders {
			queue = append(queue, pending{folder: child, parentID: &created.ID})
		}
	}

	s.logger.Info("seed applied",
		"users", sum.Users,
		"folders", sum.Folders,
		"documents", sum.Documents,
		"shares", sum.Shares,
	)
	return sum, nil
}

func (s *Seeder) document(ctx context.Context, d Document, folderID *string, sum *Summary) error {
	doc, err := s.documents.UploadDocument(ctx, &docsysSvc.UploadDocumentRequest{
		Title:    d.Title,
		Filename: d.Filename,
		FolderID: folderID,
	}, strings.NewReader(d.Content))
	if err != nil {
		return fmt.Errorf("document %q: %w", d.Filename, err)
	}
	sum.Documents++

	for _, sh := range d.Shares {
		access, err := models.NewAccess(sh.Role, sh.Target)
		if err != nil {
			return fmt.Errorf("document %q: %w", d.Filename, err)
		}
		granted, err := s.shares.Grant(ctx, doc.ID, sh.Grantees, access)
		if err != nil {
			return fmt.Errorf("share %q: %w", d.Filename, err)
		}
		sum.Shares += len(granted)
	}
	return nil
}
