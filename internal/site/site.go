// Package site lists the local files uploaded to the website bucket.
package site

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/olusolaa/webstack/internal/contenttype"
	"github.com/olusolaa/webstack/internal/errors"
)

// Asset is one file under the site directory.
type Asset struct {
	// Key is the object key: the slash-separated path relative to the root.
	Key         string `json:"key"`
	Source      string `json:"source"`
	Size        int64  `json:"size"`
	MD5         string `json:"md5"`
	ContentType string `json:"content_type"`
}

type assetMatcher struct {
	include []string
	exclude []string
}

func newAssetMatcher(include, exclude []string) (*assetMatcher, error) {
	if len(include) == 0 {
		include = []string{"**"}
	}
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.NewUserFacing(errors.CodeConfigValidation,
				fmt.Sprintf("invalid site pattern %q", p), "Patterns use globstar syntax, for example \"**/*.html\".")
		}
	}
	return &assetMatcher{include: include, exclude: exclude}, nil
}

// Matches uses doublestar because filepath.Match has no "**" support.
func (m *assetMatcher) Matches(key string) bool {
	included := false
	for _, pattern := range m.include {
		if ok, _ := doublestar.Match(pattern, key); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range m.exclude {
		if ok, _ := doublestar.Match(pattern, key); ok {
			return false
		}
	}
	return true
}

// ListAssets walks dir recursively and returns its regular files sorted by
// key. Symlinks and other special files are skipped.
func ListAssets(ctx context.Context, dir string, include, exclude []string) ([]Asset, error) {
	matcher, err := newAssetMatcher(include, exclude)
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAssetReadError, fmt.Sprintf("failed to resolve site directory %s", dir))
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, errors.NewUserFacing(errors.CodeAssetReadError,
			fmt.Sprintf("site directory %s does not exist or is not a directory", dir),
			"Create the directory or point site.dir at your website files.")
	}

	var assets []Asset
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !matcher.Matches(key) {
			return nil
		}
		asset, err := readAsset(path, key)
		if err != nil {
			return err
		}
		assets = append(assets, asset)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(err, errors.CodeAborted, "asset listing cancelled")
		}
		return nil, errors.Wrap(err, errors.CodeAssetReadError, fmt.Sprintf("failed to list site directory %s", dir))
	}

	sort.Slice(assets, func(i, j int) bool { return assets[i].Key < assets[j].Key })
	return assets, nil
}

func readAsset(path, key string) (Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return Asset{}, err
	}
	defer f.Close()

	h := md5.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return Asset{}, fmt.Errorf("hash %s: %w", path, err)
	}
	return Asset{
		Key:         key,
		Source:      path,
		Size:        size,
		MD5:         hex.EncodeToString(h.Sum(nil)),
		ContentType: contenttype.Resolve(key),
	}, nil
}
