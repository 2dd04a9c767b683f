package multipart

import (
	"bytes"
	"errors"
	"io"
	"mime"
	stdmultipart "mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFile struct {
	io.Reader
	name    string
	closed  int
	readErr error
}

func (f *fakeFile) Read(p []byte) (int, error) {
	if f.readErr != nil {
		return 0, f.readErr
	}
	return f.Reader.Read(p)
}

func (f *fakeFile) Close() error {
	f.closed++
	return nil
}

func (f *fakeFile) Name() string { return f.name }

func TestBuilder_Bytes(t *testing.T) {
	b := New("abc123").
		Add("name1", "value1", "", "").
		Add("name2", "value2", "", "")

	expected := "--abc123\r\n" +
		"Content-Disposition: form-data; name=\"name1\"\r\n" +
		"\r\n" +
		"value1\r\n" +
		"--abc123\r\n" +
		"Content-Disposition: form-data; name=\"name2\"\r\n" +
		"\r\n" +
		"value2\r\n" +
		"--abc123--\r\n"
	assert.Equal(t, expected, b.String())
	assert.Equal(t, 2, b.Len())
}

func TestBuilder_FilePart(t *testing.T) {
	b := New("xyz").Add("upload", "{}", "data.json", "")

	assert.Equal(t, "--xyz\r\n"+
		"Content-Disposition: form-data; name=\"upload\"; filename=\"data.json\"\r\n"+
		"Content-Type: application/json\r\n"+
		"\r\n"+
		"{}\r\n"+
		"--xyz--\r\n", b.String())
}

func TestBuilder_ExplicitContentTypeWithoutFilename(t *testing.T) {
	b := New("xyz").Add("meta", "x", "", "text/plain")
	assert.Contains(t, b.String(), "Content-Disposition: form-data; name=\"meta\"\r\nContent-Type: text/plain\r\n\r\nx\r\n")
}

func TestBuilder_UnknownExtension(t *testing.T) {
	b := New("xyz").Add("f", "x", "blob.unknownext", "")
	assert.Equal(t, DefaultContentType, b.Parts()[0].ContentType)
}

func TestBuilder_GeneratedBoundary(t *testing.T) {
	b1 := New("")
	b2 := New("")
	assert.NotEmpty(t, b1.Boundary())
	assert.NotEqual(t, b1.Boundary(), b2.Boundary())
}

func TestBuilder_BinarySafe(t *testing.T) {
	raw := []byte{0x00, 0xff, 0xfe, '\r', '\n'}
	b := New("bin").AddBytes("blob", raw, "x.bin", "application/octet-stream")
	assert.True(t, bytes.Contains(b.Bytes(), raw))
}

func TestBuilder_ParsesWithStdlibReader(t *testing.T) {
	b := New("").Add("a", "1", "", "").Add("f", "content", "hello.txt", "")

	r := stdmultipart.NewReader(bytes.NewReader(b.Bytes()), b.Boundary())
	form, err := r.ReadForm(1 << 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, form.Value["a"])
	require.Len(t, form.File["f"], 1)
	assert.Equal(t, "hello.txt", form.File["f"][0].Filename)

	mediaType, _, err := mime.ParseMediaType(form.File["f"][0].Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "text/plain", mediaType)
}

func TestBuilder_AddFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(path, []byte("PNGDATA"), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)

	b := New("bnd")
	require.NoError(t, b.AddFile("img", f, ""))

	part := b.Parts()[0]
	assert.Equal(t, "image.png", part.Filename)
	assert.Equal(t, "image/png", part.ContentType)
	assert.Equal(t, []byte("PNGDATA"), part.Value)

	// already closed
	_, err = f.Read(make([]byte, 1))
	assert.Error(t, err)
}

func TestBuilder_AddFileClosesOnReadError(t *testing.T) {
	f := &fakeFile{Reader: strings.NewReader(""), name: "x.txt", readErr: errors.New("boom")}

	err := New("b").AddFile("f", f, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, f.closed)
}

func TestFields_Build(t *testing.T) {
	f := &fakeFile{Reader: strings.NewReader("abc"), name: "/tmp/doc.txt"}

	b, err := Fields{
		{Name: "title", Value: "hello"},
		{Name: "count", Value: 3},
		{Name: "doc", Value: f},
	}.Build()
	require.NoError(t, err)

	parts := b.Parts()
	require.Len(t, parts, 3)
	assert.Equal(t, "title", parts[0].Name)
	assert.Equal(t, []byte("3"), parts[1].Value)
	assert.Equal(t, "doc.txt", parts[2].Filename)
	assert.Equal(t, 1, f.closed)
}

func TestFields_BuildClosesRemainingFilesOnError(t *testing.T) {
	bad := &fakeFile{Reader: strings.NewReader(""), name: "bad.txt", readErr: errors.New("boom")}
	rest := &fakeFile{Reader: strings.NewReader("ok"), name: "rest.txt"}

	_, err := Fields{{Name: "a", Value: bad}, {Name: "b", Value: rest}}.Build()
	require.Error(t, err)
	assert.Equal(t, 1, bad.closed)
	assert.Equal(t, 1, rest.closed)
}

func TestMap_BuildSorted(t *testing.T) {
	b, err := Map{"z": "1", "a": "2"}.Build()
	require.NoError(t, err)
	assert.Equal(t, "a", b.Parts()[0].Name)
	assert.Equal(t, "z", b.Parts()[1].Name)
}

func TestMimeLookupOverride(t *testing.T) {
	orig := MimeLookup
	t.Cleanup(func() { MimeLookup = orig })
	MimeLookup = func(ext, def string) string {
		if ext == ".custom" {
			return "application/x-custom"
		}
		return def
	}
	assert.Equal(t, "application/x-custom", GuessContentType("a.custom"))
	assert.Equal(t, DefaultContentType, GuessContentType("a.txt"))
}
