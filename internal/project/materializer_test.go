package project

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pageforge/internal/common/logger"
)

func newTestMaterializer(t *testing.T) *Materializer {
	t.Helper()
	return NewMaterializer(logger.NewTestLogger(t))
}

func dataURI(data []byte) string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data)
}

func roundOneInput() Input {
	return Input{
		Artifact: "<html><body>todo</body></html>",
		Round:    1,
		Task:     "todo-app",
		Brief:    "a todo list",
		Owner:    "octocat",
		Checks:   []string{"page loads", "items persist"},
	}
}

func TestMaterializeRoundOne(t *testing.T) {
	dir := t.TempDir()
	m := newTestMaterializer(t)

	written, err := m.Materialize(dir, roundOneInput())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"index.html", "README.md", "LICENSE"}, written)

	artifact, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html><body>todo</body></html>", string(artifact))

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(readme), "todo-app")
	assert.Contains(t, string(readme), "a todo list")
	assert.Contains(t, string(readme), "page loads")
	assert.Contains(t, string(readme), "MIT License")

	license, err := os.ReadFile(filepath.Join(dir, "LICENSE"))
	require.NoError(t, err)
	assert.Contains(t, string(license), "MIT License")
	assert.Contains(t, string(license), "octocat")
}

func TestMaterializeLaterRoundsAppendOnly(t *testing.T) {
	dir := t.TempDir()
	m := newTestMaterializer(t)

	_, err := m.Materialize(dir, roundOneInput())
	require.NoError(t, err)
	original, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)

	updates := []struct {
		round int
		brief string
	}{
		{2, "add dark mode"},
		{3, "add sorting"},
	}
	for _, u := range updates {
		in := roundOneInput()
		in.Round = u.round
		in.Brief = u.brief
		in.Artifact = "<html>updated</html>"
		_, err := m.Materialize(dir, in)
		require.NoError(t, err)
	}

	readme, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	content := string(readme)

	assert.True(t, strings.HasPrefix(content, string(original)), "original README content must be preserved verbatim")
	idx2 := strings.Index(content, "Round 2 Update")
	idx3 := strings.Index(content, "Round 3 Update")
	require.Positive(t, idx2)
	require.Positive(t, idx3)
	assert.Less(t, idx2, idx3, "round sections must appear in order")
	assert.Contains(t, content, "add dark mode")
	assert.Contains(t, content, "add sorting")
}

func TestMaterializeAttachmentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := newTestMaterializer(t)

	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0xff, 0x10}
	in := roundOneInput()
	in.Attachments = []Attachment{
		{Name: "assets/logo.png", URL: dataURI(payload)},
	}

	written, err := m.Materialize(dir, in)
	require.NoError(t, err)
	assert.Contains(t, written, "assets/logo.png")

	got, err := os.ReadFile(filepath.Join(dir, "assets", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, payload, got, "attachment must round-trip byte-for-byte")
}

func TestMaterializeSkipsMalformedAttachments(t *testing.T) {
	dir := t.TempDir()
	m := newTestMaterializer(t)

	good := []byte("hello")
	in := roundOneInput()
	in.Attachments = []Attachment{
		{Name: "bad.bin", URL: "data:application/octet-stream;base64,!!!not-base64!!!"},
		{Name: "plain.txt", URL: "not a data uri at all"},
		{Name: "good.txt", URL: dataURI(good)},
	}

	written, err := m.Materialize(dir, in)
	require.NoError(t, err, "a malformed attachment must not abort the request")
	assert.Contains(t, written, "good.txt")
	assert.NotContains(t, written, "bad.bin")
	assert.NotContains(t, written, "plain.txt")

	got, err := os.ReadFile(filepath.Join(dir, "good.txt"))
	require.NoError(t, err)
	assert.Equal(t, good, got)
}

func TestMaterializeRejectsTraversal(t *testing.T) {
	dir := t.TempDir()
	m := newTestMaterializer(t)

	in := roundOneInput()
	in.Attachments = []Attachment{
		{Name: "../escape.txt", URL: dataURI([]byte("nope"))},
		{Name: "/etc/escape.txt", URL: dataURI([]byte("nope"))},
		{Name: "nested/../../escape.txt", URL: dataURI([]byte("nope"))},
	}

	written, err := m.Materialize(dir, in)
	require.NoError(t, err)
	for _, name := range written {
		assert.NotContains(t, name, "escape")
	}

	_, err = os.Stat(filepath.Join(filepath.Dir(dir), "escape.txt"))
	assert.True(t, os.IsNotExist(err), "no file may be written outside the staging directory")
}

func TestSecurePath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"plain name", "logo.png", false},
		{"nested name", "assets/img/logo.png", false},
		{"dot segments resolving inside", "assets/../logo.png", false},
		{"parent escape", "../x.txt", true},
		{"deep escape", "a/../../x.txt", true},
		{"absolute", "/tmp/x.txt", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := securePath(dir, tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(got, dir))
		})
	}
}
