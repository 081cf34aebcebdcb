package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/observability"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/vpath"
)

// MirrorAssets copies src to dst inside out. An existing destination, file
// or directory, is removed and the copy is retried once.
func MirrorAssets(ctx context.Context, out *output.FS, src fs.FS, dst string) error {
	if vpath.IsRoot(dst) {
		return fmt.Errorf("assets destination %q is the site root", dst)
	}
	err := out.CopyTree(src, dst)
	if errors.Is(err, fs.ErrExist) {
		observability.DebugContext(ctx, "Replacing existing assets", logfields.Dest(dst))
		if rmErr := out.RemoveAll(dst); rmErr != nil {
			return fmt.Errorf("remove %s: %w", dst, rmErr)
		}
		err = out.CopyTree(src, dst)
	}
	if err != nil {
		return fmt.Errorf("copy assets to %s: %w", dst, err)
	}
	return nil
}
