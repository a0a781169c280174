package media

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOpenRemove(t *testing.T) {
	d := NewDir(t.TempDir(), nil)

	ref, err := d.SaveImage("photo.jpg", strings.NewReader("not really a jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "images/photo.jpg", ref)

	r, err := d.Open(ref)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "not really a jpeg", string(data))

	require.NoError(t, d.Remove(ref))
	_, err = d.Open(ref)
	assert.Error(t, err)
}

func TestRemoveAbsentIsNoError(t *testing.T) {
	d := NewDir(t.TempDir(), nil)
	assert.NoError(t, d.Remove("images/never-existed.jpg"))
}

func TestReferenceCannotEscapeRoot(t *testing.T) {
	d := NewDir(t.TempDir(), nil)
	err := d.Remove("../../etc/passwd")
	assert.Error(t, err)
}

func TestSaveStripsDirectories(t *testing.T) {
	d := NewDir(t.TempDir(), nil)
	ref, err := d.SaveVideo("/tmp/evil/../clip.mp4", strings.NewReader("v"))
	require.NoError(t, err)
	assert.Equal(t, "videos/clip.mp4", ref)
}
