// Package imagestore persists case thumbnails to disk and derives their
// public URLs.
package imagestore

import (
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/dhdbtkd/courtauction-crawler/internal/courtauction"
)

// Store writes decoded image assets under root and maps them to URLs under
// baseURL. The URL for an asset is a pure function of its case number and
// picture sequence, independent of where root actually lives.
type Store struct {
	root    string
	baseURL string
}

// New constructs a Store. root is created lazily on first persist.
func New(root, baseURL string) *Store {
	return &Store{root: root, baseURL: baseURL}
}

// Representative picks the asset to use as a case thumbnail: the one whose
// page sequence is "1", falling back to the first asset returned.
func Representative(assets []courtauction.ImageAsset) (courtauction.ImageAsset, bool) {
	if len(assets) == 0 {
		return courtauction.ImageAsset{}, false
	}
	for _, a := range assets {
		if a.PageSeq == "1" {
			return a, true
		}
	}
	return assets[0], true
}

// Persist decodes the asset's base64 content and writes it to
// root/auctions/{caseNo}/{picSeq}.jpg, returning the public URL.
func (s *Store) Persist(asset courtauction.ImageAsset) (string, error) {
	data, err := base64.StdEncoding.DecodeString(asset.PicFile)
	if err != nil {
		return "", fmt.Errorf("decode image for case %s: %w", asset.CaseNo, err)
	}

	dir := filepath.Join(s.root, "auctions", asset.CaseNo)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create image dir: %w", err)
	}

	filename := asset.PicSeq + ".jpg"
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write image for case %s: %w", asset.CaseNo, err)
	}

	return s.URL(asset), nil
}

// URL derives the public URL an asset is served under after Persist.
func (s *Store) URL(asset courtauction.ImageAsset) string {
	return s.baseURL + "/" + path.Join("auctions", asset.CaseNo, asset.PicSeq+".jpg")
}

// PersistRepresentative selects and persists the representative asset of a
// case. ok is false when the asset list is empty.
func (s *Store) PersistRepresentative(assets []courtauction.ImageAsset) (url string, ok bool, err error) {
	asset, ok := Representative(assets)
	if !ok {
		return "", false, nil
	}
	url, err = s.Persist(asset)
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}
