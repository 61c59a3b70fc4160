package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveOpenDelete(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://api.test/")
	require.NoError(t, err)

	saved, err := store.Save(context.Background(), DirResumes, "CV.PDF", strings.NewReader("resume"), 1024)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(saved.Path, DirResumes+"/"))
	assert.True(t, strings.HasSuffix(saved.Path, ".pdf"))
	assert.EqualValues(t, 6, saved.Size)
	assert.Equal(t, "http://api.test/media/"+saved.Path, store.URL(saved.Path))

	rc, err := store.Open(saved.Path)
	require.NoError(t, err)
	content, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "resume", string(content))

	require.NoError(t, store.Delete(saved.Path))
	_, err = store.Open(saved.Path)
	assert.ErrorIs(t, err, ErrNotExist)
	assert.NoError(t, store.Delete(saved.Path))
}

func TestLocalStore_RejectsOversize(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root, "")
	require.NoError(t, err)

	_, err = store.Save(context.Background(), DirTracker, "big.pdf", strings.NewReader("0123456789"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)

	entries, _ := os.ReadDir(root + "/" + DirTracker)
	assert.Empty(t, entries)
}

func TestLocalStore_LocalPathStaysInRoot(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "")
	require.NoError(t, err)

	p, err := store.LocalPath("../../etc/passwd")
	require.NoError(t, err)
	assert.NotContains(t, p, "..")

	_, err = store.LocalPath("/media/profile_pics/a.png")
	assert.NoError(t, err)
	assert.Equal(t, "", store.URL(""))
	assert.Equal(t, "/media/resumes/a.pdf", MediaPath("resumes/a.pdf"))
	assert.Equal(t, "/media/resumes/a.pdf", MediaPath("/media/resumes/a.pdf"))
}

func TestDownscale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2048, 1024))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	out, name, err := Downscale(&buf, "me.png", MaxImageSide)
	require.NoError(t, err)
	assert.Equal(t, "me.png", name)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1024, decoded.Bounds().Dx())
	assert.Equal(t, 512, decoded.Bounds().Dy())

	_, _, err = Downscale(strings.NewReader("x"), "doc.pdf", MaxImageSide)
	assert.ErrorIs(t, err, ErrNotImage)
}
