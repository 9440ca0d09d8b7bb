package blob

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"portal/internal/config"
	"portal/internal/domain"
	docsysSvc "portal/internal/domain/services/docsystem"
)

const pdfHeader = "%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<< /Type /Catalog >>\nendobj\n"

func TestApplyPrefix(t *testing.T) {
	tests := []struct {
		prefix, key, expected string
	}{
		{"", "abc", "abc"},
		{"documents", "abc", "documents/abc"},
		{"/documents/", "/abc", "documents/abc"},
		{"documents", "", "documents"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix+"|"+tt.key, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(applyPrefix(normalizePrefix(tt.prefix), tt.key), qt.Equals, tt.expected)
		})
	}
}

func TestSniff_ReplaysHead(t *testing.T) {
	c := qt.New(t)
	body := pdfHeader + strings.Repeat("x", 5000)

	mimeType, r, err := sniff(strings.NewReader(body))
	c.Assert(err, qt.IsNil)
	c.Assert(mimeType, qt.Equals, "application/pdf")

	got, err := io.ReadAll(r)
	c.Assert(err, qt.IsNil)
	c.Assert(string(got), qt.Equals, body)
}

func TestSniff_PlainText(t *testing.T) {
	c := qt.New(t)
	mimeType, _, err := sniff(strings.NewReader("quarterly numbers"))
	c.Assert(err, qt.IsNil)
	c.Assert(mimeType, qt.Matches, `text/plain.*`)
}

func TestStores_RoundTrip(t *testing.T) {
	local, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	stores := map[string]docsysSvc.BlobStore{
		"memory": NewMemoryStore(),
		"local":  local,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			c := qt.New(t)
			ctx := context.Background()

			info, err := store.Put(ctx, "doc-1", strings.NewReader(pdfHeader))
			c.Assert(err, qt.IsNil)
			c.Assert(info.SizeBytes, qt.Equals, int64(len(pdfHeader)))
			c.Assert(info.MimeType, qt.Equals, "application/pdf")

			rc, err := store.Open(ctx, "doc-1")
			c.Assert(err, qt.IsNil)
			got, err := io.ReadAll(rc)
			c.Assert(err, qt.IsNil)
			c.Assert(rc.Close(), qt.IsNil)
			c.Assert(string(got), qt.Equals, pdfHeader)

			c.Assert(store.Delete(ctx, "doc-1"), qt.IsNil)
			c.Assert(store.Delete(ctx, "doc-1"), qt.IsNil)

			_, err = store.Open(ctx, "doc-1")
			c.Assert(errors.Is(err, domain.ErrNotFound), qt.IsTrue)
		})
	}
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	c := qt.New(t)
	store, err := NewLocalStore(t.TempDir())
	c.Assert(err, qt.IsNil)

	for _, key := range []string{"", "..", "../escape", "a/b", `a\b`} {
		_, err := store.Put(context.Background(), key, strings.NewReader("x"))
		c.Assert(err, qt.ErrorMatches, `invalid storage key .*`, qt.Commentf("key %q", key))
	}
}

func TestNew_Backends(t *testing.T) {
	c := qt.New(t)
	logger := slog.New(slog.DiscardHandler)

	store, err := New(context.Background(), &config.Config{BlobBackend: "memory"}, logger)
	c.Assert(err, qt.IsNil)
	_, ok := store.(*MemoryStore)
	c.Assert(ok, qt.IsTrue)

	_, err = New(context.Background(), &config.Config{BlobBackend: "floppy"}, logger)
	c.Assert(err, qt.ErrorMatches, `unknown blob backend "floppy".*`)

	_, err = New(context.Background(), &config.Config{BlobBackend: "s3"}, logger)
	c.Assert(err, qt.ErrorMatches, `s3 bucket is required`)
}
