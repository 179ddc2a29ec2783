// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert upgrades legacy binary decks to PresentationML so the
// extraction pipeline only ever reads .pptx packages.
package convert

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	extPPTX = ".pptx"
	extPPT  = ".ppt"
)

// ErrUnsupportedFormat is returned for inputs that are neither .pptx nor
// a legacy format a converter can upgrade.
var ErrUnsupportedFormat = errors.New("unsupported deck format")

// Converter transforms a legacy deck into .pptx bytes. Different backends
// (an office container, a local binary) implement this interface.
type Converter interface {
	// Convert reads the deck at srcPath and returns the upgraded package.
	Convert(ctx context.Context, srcPath string) ([]byte, error)
}

// NeedsUpgrade reports whether path has a legacy extension.
func NeedsUpgrade(path string) bool {
	return strings.EqualFold(filepath.Ext(path), extPPT)
}

// UpgradePath returns where Normalize writes the upgrade of the legacy deck
// at path: workDir/<hash>-<base>.pptx, where hash is taken from the
// absolute source path so same-named decks in different directories do not
// share an upgrade.
func UpgradePath(path, workDir string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	sum := sha1.Sum([]byte(abs))
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(workDir, hex.EncodeToString(sum[:4])+"-"+base+extPPTX), nil
}

// Normalize returns a path to a .pptx version of the deck at path. A
// .pptx input is returned unchanged. A legacy input is upgraded into
// UpgradePath(path, workDir); an existing upgrade newer than the source is
// reused.
func Normalize(ctx context.Context, c Converter, path, workDir string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case extPPTX:
		return path, nil
	case extPPT:
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if c == nil {
		return "", fmt.Errorf("%w: %s needs a converter", ErrUnsupportedFormat, path)
	}

	src, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	out, err := UpgradePath(path, workDir)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(out); err == nil && !info.ModTime().Before(src.ModTime()) {
		return out, nil
	}

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", workDir, err)
	}

	data, err := c.Convert(ctx, path)
	if err != nil {
		return "", fmt.Errorf("upgrading %s: %w", path, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("upgrading %s: converter produced empty output", path)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", out, err)
	}
	return out, nil
}
