package imagestore_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/dhdbtkd/courtauction-crawler/internal/courtauction"
	"github.com/dhdbtkd/courtauction-crawler/internal/imagestore"
)

func asset(pageSeq, picSeq, content string) courtauction.ImageAsset {
	return courtauction.ImageAsset{
		PageSeq: pageSeq,
		PicSeq:  picSeq,
		CaseNo:  "2024타경1001",
		PicFile: base64.StdEncoding.EncodeToString([]byte(content)),
	}
}

// ── Representative ─────────────────────────────────────────────────────────

func TestRepresentative_PrefersPageSeqOne(t *testing.T) {
	assets := []courtauction.ImageAsset{
		asset("3", "3", "c"),
		asset("1", "1", "a"),
		asset("2", "2", "b"),
	}
	got, ok := imagestore.Representative(assets)
	if !ok {
		t.Fatal("Representative returned ok=false for non-empty list")
	}
	if got.PageSeq != "1" {
		t.Errorf("Representative picked pageSeq %q, want 1", got.PageSeq)
	}
}

func TestRepresentative_FallsBackToFirst(t *testing.T) {
	assets := []courtauction.ImageAsset{
		asset("4", "4", "d"),
		asset("5", "5", "e"),
	}
	got, ok := imagestore.Representative(assets)
	if !ok {
		t.Fatal("Representative returned ok=false for non-empty list")
	}
	if got.PicSeq != "4" {
		t.Errorf("Representative picked picSeq %q, want first asset (4)", got.PicSeq)
	}
}

func TestRepresentative_EmptyList(t *testing.T) {
	if _, ok := imagestore.Representative(nil); ok {
		t.Error("Representative(nil) should return ok=false")
	}
}

// ── Persist ────────────────────────────────────────────────────────────────

func TestPersist_WritesDecodedContentAndDerivesURL(t *testing.T) {
	root := t.TempDir()
	store := imagestore.New(root, "http://img.example.com/images")

	url, err := store.Persist(asset("1", "1", "jpeg-bytes"))
	if err != nil {
		t.Fatalf("Persist returned error: %v", err)
	}

	wantURL := "http://img.example.com/images/auctions/2024타경1001/1.jpg"
	if url != wantURL {
		t.Errorf("Persist URL = %q, want %q", url, wantURL)
	}

	data, err := os.ReadFile(filepath.Join(root, "auctions", "2024타경1001", "1.jpg"))
	if err != nil {
		t.Fatalf("reading persisted file: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("persisted content = %q, want decoded base64 payload", data)
	}
}

func TestPersist_InvalidBase64(t *testing.T) {
	store := imagestore.New(t.TempDir(), "http://img.example.com")
	bad := courtauction.ImageAsset{CaseNo: "2024타경1001", PicSeq: "1", PicFile: "%%%not-base64%%%"}
	if _, err := store.Persist(bad); err == nil {
		t.Error("Persist expected error for invalid base64, got nil")
	}
}

func TestPersistRepresentative(t *testing.T) {
	store := imagestore.New(t.TempDir(), "http://img.example.com")

	url, ok, err := store.PersistRepresentative([]courtauction.ImageAsset{
		asset("2", "2", "b"),
		asset("1", "1", "a"),
	})
	if err != nil {
		t.Fatalf("PersistRepresentative returned error: %v", err)
	}
	if !ok {
		t.Fatal("PersistRepresentative returned ok=false")
	}
	if url != "http://img.example.com/auctions/2024타경1001/1.jpg" {
		t.Errorf("PersistRepresentative URL = %q, want pageSeq 1 asset", url)
	}

	if _, ok, _ := store.PersistRepresentative(nil); ok {
		t.Error("PersistRepresentative(nil) should return ok=false")
	}
}
