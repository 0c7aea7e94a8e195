package cmd

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSolidPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestReadCommandMockModeProducesOneResultPerImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.png")
	writeSolidPNG(t, path, 64, 64)

	cfgFile = ""
	configLoader = nil

	cmd := rootCmd
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"read", "--mock", path})

	require.NoError(t, cmd.Execute())

	dec := json.NewDecoder(buf)
	var out imageResult
	require.NoError(t, dec.Decode(&out))
	require.Equal(t, path, out.Path)
	require.Empty(t, out.Error)
}

func TestReadCommandMissingFileErrors(t *testing.T) {
	cfgFile = ""
	configLoader = nil

	cmd := rootCmd
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"read", "--mock", "/no/such/file.png"})

	require.Error(t, cmd.Execute())
}

func TestReadCommandRequiresAtLeastOneImage(t *testing.T) {
	cmd := rootCmd
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"read"})

	require.Error(t, cmd.Execute())
}
