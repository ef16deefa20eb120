package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	a := UUID("go-wiki:article:site:en:some-slug")
	b := UUID("go-wiki:article:site:en:some-slug")
	if a != b {
		t.Fatalf("same key produced different ids: %s vs %s", a, b)
	}
	if a == uuid.Nil {
		t.Fatal("expected non-nil id")
	}
	if c := UUID("go-wiki:article:site:en:other-slug"); c == a {
		t.Fatalf("different keys collided: %s", c)
	}
}

func TestReferenceContentIDTrimsWhitespace(t *testing.T) {
	a := ReferenceContentID("citation", "Smith 2020")
	b := ReferenceContentID("citation", "  Smith 2020  ")
	if a != b {
		t.Fatalf("padded payload changed identity: %q vs %q", a, b)
	}
	if c := ReferenceContentID("footnote", "Smith 2020"); c == a {
		t.Fatal("family must participate in identity")
	}
}

func TestArticleUUIDScopes(t *testing.T) {
	base := ArticleUUID("site-1", "en", "issue-12")
	if ArticleUUID("site-1", "en", "issue-12") != base {
		t.Fatal("article id not stable")
	}
	if ArticleUUID("site-1", "de", "issue-12") == base {
		t.Fatal("culture must scope article ids")
	}
	if ArticleUUID("site-2", "en", "issue-12") == base {
		t.Fatal("site must scope article ids")
	}
}

func TestFileAndDownloadUUIDs(t *testing.T) {
	if FileUUID("cover.jpg") != FileUUID("cover.jpg") {
		t.Fatal("file id not stable")
	}
	if DownloadUUID("site-1", "abc123") == DownloadUUID("site-1", "def456") {
		t.Fatal("hashes must produce distinct download ids")
	}
}
