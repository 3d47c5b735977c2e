package loaders

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

const defaultFontSize = 13

// SystemFontLoader reads a font config listing a TrueType/OpenType file and
// the face to use from it:
//
//	file=NotoSansMono.ttf
//	face=Noto Sans Mono
//	size=16
//
// The file is resolved next to the config. The result is a font.Face.
type SystemFontLoader struct{}

func (fl *SystemFontLoader) Load(path string) (interface{}, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var fontFile, faceName string
	size := float64(defaultFontSize)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip comments and empty lines
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("%s: malformed line %q", path, line)
		}
		switch key {
		case "file":
			fontFile = filepath.Join(filepath.Dir(path), value)
		case "face":
			faceName = value
		case "size":
			if size, err = strconv.ParseFloat(value, 64); err != nil || size <= 0 {
				return nil, fmt.Errorf("%s: invalid size %q", path, value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if fontFile == "" {
		return nil, fmt.Errorf("%s: no font file", path)
	}

	fontBytes, err := os.ReadFile(fontFile)
	if err != nil {
		return nil, err
	}
	collection, err := opentype.ParseCollection(fontBytes)
	if err != nil {
		return nil, err
	}
	f, err := pickFace(collection, faceName)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// pickFace returns the font whose full name is name, or the first one when
// name is empty.
func pickFace(c *opentype.Collection, name string) (*opentype.Font, error) {
	var buf sfnt.Buffer
	for i := 0; i < c.NumFonts(); i++ {
		f, err := c.Font(i)
		if err != nil {
			return nil, err
		}
		if name == "" {
			return f, nil
		}
		if full, err := f.Name(&buf, sfnt.NameIDFull); err == nil && full == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("font face %q not found", name)
}
