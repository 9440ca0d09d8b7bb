package app

import (
	"context"
	"log/slog"
	"testing"

	qt "github.com/frankban/quicktest"

	"portal/internal/config"
	docsysSvc "portal/internal/domain/services/docsystem"
	"portal/internal/seed"
)

func TestNewMemory(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	a, err := New(ctx, &config.Config{Environment: "test", BlobBackend: "memory"}, slog.New(slog.DiscardHandler))
	c.Assert(err, qt.IsNil)
	defer a.Close()
	c.Assert(a.Pool, qt.IsNil)
	c.Assert(a.Migrate(ctx), qt.IsNil)

	f, err := seed.Default()
	c.Assert(err, qt.IsNil)
	_, err = a.Seeder().Apply(ctx, f)
	c.Assert(err, qt.IsNil)

	view, err := a.Tree.GetTree(ctx, docsysSvc.TreeOptions{})
	c.Assert(err, qt.IsNil)
	c.Assert(view.Children[""], qt.HasLen, 2)
}

func TestNewRequiresDatabaseOutsideDev(t *testing.T) {
	c := qt.New(t)
	_, err := New(context.Background(), &config.Config{Environment: "prod", BlobBackend: "memory"}, slog.New(slog.DiscardHandler))
	c.Assert(err, qt.ErrorMatches, "DATABASE_URL is required outside dev")
}

func TestNewRejectsUnknownBlobBackend(t *testing.T) {
	c := qt.New(t)
	_, err := New(context.Background(), &config.Config{Environment: "dev", BlobBackend: "ftp"}, slog.New(slog.DiscardHandler))
	c.Assert(err, qt.ErrorMatches, `blob storage: unknown blob backend "ftp".*`)
}
