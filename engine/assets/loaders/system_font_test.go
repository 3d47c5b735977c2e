package loaders_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/spaghettifunk/tristris/engine/assets/loaders"
)

func writeFontConfig(t *testing.T, config string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mono.ttf"), gomono.TTF, 0o644))
	path := filepath.Join(dir, "overlay.fontcfg")
	require.NoError(t, os.WriteFile(path, []byte(config), 0o644))
	return path
}

func TestSystemFontLoader(t *testing.T) {
	path := writeFontConfig(t, "# overlay font\nfile=mono.ttf\nsize=20\n")

	data, err := (&loaders.SystemFontLoader{}).Load(path)
	require.NoError(t, err)
	face, ok := data.(font.Face)
	require.True(t, ok)
	assert.Positive(t, face.Metrics().Ascent.Ceil())
	assert.Positive(t, font.MeasureString(face, "FPS: 60.0").Round())
}

func TestSystemFontLoaderErrors(t *testing.T) {
	cases := map[string]string{
		"missing face": "file=mono.ttf\nface=Comic Sans\n",
		"bad size":     "file=mono.ttf\nsize=big\n",
		"no file":      "size=12\n",
		"bad line":     "file mono.ttf\n",
		"missing file": "file=other.ttf\n",
	}
	for name, config := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := (&loaders.SystemFontLoader{}).Load(writeFontConfig(t, config))
			assert.Error(t, err)
		})
	}
}

func TestBitmapFontLoaderRejectsOtherFormats(t *testing.T) {
	_, err := (&loaders.BitmapFontLoader{}).Load("fonts/overlay.ttf")
	assert.Error(t, err)
}
