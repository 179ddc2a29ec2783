// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/decktools/internal/container"
)

// ImageOffice is the headless office image. It reads a legacy document
// on stdin and writes the format named by its first argument to stdout.
const ImageOffice = "office-convert:latest"

// OfficeConverter upgrades decks by piping them through the office image.
type OfficeConverter struct {
	runtime container.Runtime
}

// NewOfficeConverter verifies the office image exists in rt before
// returning a converter bound to it.
func NewOfficeConverter(ctx context.Context, rt container.Runtime) (*OfficeConverter, error) {
	if err := rt.ImageExists(ctx, ImageOffice); err != nil {
		return nil, fmt.Errorf("office image not available in %s: %w", rt.Name(), err)
	}
	return &OfficeConverter{runtime: rt}, nil
}

// Convert pipes srcPath through the office container and returns the
// .pptx bytes.
func (o *OfficeConverter) Convert(ctx context.Context, srcPath string) ([]byte, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := o.runtime.Run(ctx, ImageOffice, []string{"pptx"}, f, &out); err != nil {
		return nil, fmt.Errorf("converting %s: %w", srcPath, err)
	}
	return out.Bytes(), nil
}
