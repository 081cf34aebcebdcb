package output

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMem(t *testing.T, o *FS, name string) string {
	t.Helper()
	data, err := util.ReadFile(o.Billy(), name)
	require.NoError(t, err)
	return string(data)
}

func TestWriteFile_Overwrites(t *testing.T) {
	o := NewMemory()
	require.NoError(t, o.MkdirAll("/blog"))
	require.NoError(t, o.WriteFile("/blog/index.html", []byte("first version")))
	require.NoError(t, o.WriteFile("/blog/index.html", []byte("second")))

	assert.Equal(t, "second", readMem(t, o, "blog/index.html"))
	assert.Equal(t, int64(len("first version")+len("second")), o.BytesWritten())
}

func TestMkdirAll_Root(t *testing.T) {
	o := NewMemory()
	require.NoError(t, o.MkdirAll("/"))
	require.NoError(t, o.MkdirAll("/a/b/c"))

	info, err := o.Billy().Stat("a/b/c")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCopyFile_CreatesParents(t *testing.T) {
	src := fstest.MapFS{"img/logo.png": {Data: []byte{0x89, 'P', 'N', 'G'}, Mode: 0o640}}
	o := NewMemory()

	require.NoError(t, o.CopyFile(src, "img/logo.png", "/img/logo.png"))
	assert.Equal(t, "\x89PNG", readMem(t, o, "img/logo.png"))

	require.Error(t, o.CopyFile(src, "missing.png", "/missing.png"))
}

func TestCopyFile_DiskPreservesMetadata(t *testing.T) {
	srcDir := t.TempDir()
	srcFile := filepath.Join(srcDir, "data.bin")
	require.NoError(t, os.WriteFile(srcFile, []byte("payload"), 0o600))
	mtime := time.Date(2021, 5, 6, 7, 8, 9, 0, time.UTC)
	require.NoError(t, os.Chtimes(srcFile, mtime, mtime))

	destDir := t.TempDir()
	o := NewDisk(destDir)
	require.NoError(t, o.CopyFile(os.DirFS(srcDir), "data.bin", "/nested/data.bin"))

	info, err := os.Stat(filepath.Join(destDir, "nested", "data.bin"))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A read-only previous copy is replaced.
	require.NoError(t, os.Chmod(srcFile, 0o400))
	require.NoError(t, o.CopyFile(os.DirFS(srcDir), "data.bin", "/nested/data.bin"))
	require.NoError(t, o.CopyFile(os.DirFS(srcDir), "data.bin", "/nested/data.bin"))
	data, err := os.ReadFile(filepath.Join(destDir, "nested", "data.bin"))
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestExistsAndRemoveAll(t *testing.T) {
	o := NewMemory()
	require.NoError(t, o.MkdirAll("/assets/css"))
	require.NoError(t, o.WriteFile("/assets/css/site.css", []byte("x")))

	ok, err := o.Exists("/assets")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, o.RemoveAll("/assets"))
	ok, err = o.Exists("/assets")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCopyTree(t *testing.T) {
	src := fstest.MapFS{
		"style.css":       {Data: []byte("body{}")},
		"fonts/a.woff":    {Data: []byte("font")},
		"img/empty/.keep": {Data: nil},
	}
	o := NewMemory()

	require.NoError(t, o.CopyTree(src, "/assets"))
	assert.Equal(t, "body{}", readMem(t, o, "assets/style.css"))
	assert.Equal(t, "font", readMem(t, o, "assets/fonts/a.woff"))

	err := o.CopyTree(src, "/assets")
	require.ErrorIs(t, err, fs.ErrExist)
}

func TestCopyTree_OntoFile(t *testing.T) {
	o := NewMemory()
	require.NoError(t, o.WriteFile("/assets", []byte("not a dir")))

	err := o.CopyTree(fstest.MapFS{"a.css": {Data: []byte("a")}}, "/assets")
	require.ErrorIs(t, err, fs.ErrExist)
	assert.Equal(t, "not a dir", readMem(t, o, "assets"))
}
