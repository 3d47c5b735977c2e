package loaders

import (
	"fmt"
	"path/filepath"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/tristris/engine/core"
)

// BitmapFontLoader loads AngelCode .fnt fonts together with their page
// sheets. The result is a *bmfont.BitmapFont.
type BitmapFontLoader struct{}

func (fl *BitmapFontLoader) Load(path string) (interface{}, error) {
	if ext := filepath.Ext(path); ext != ".fnt" {
		return nil, fmt.Errorf("unsupported bitmap font type %q", ext)
	}
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, err
	}
	core.LogDebug("loaded bitmap font %q size %d line height %d (%d glyphs)",
		font.Descriptor.Info.Face,
		font.Descriptor.Info.Size,
		font.Descriptor.Common.LineHeight,
		len(font.Descriptor.Chars))
	return font, nil
}
