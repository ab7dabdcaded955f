package restyutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

type memoryOutput struct {
	mutex sync.Mutex
	files map[string]string
}

func (m *memoryOutput) Write(name string, contents string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.files[name] = contents
}

func TestDumpName(t *testing.T) {
	require.Equal(t, "alice", dumpName("https://github.com/alice"))
	require.Equal(t, "owner_repo_stargazers_page-2", dumpName("https://github.com/owner/repo/stargazers?page=2"))
	require.Equal(t, "index", dumpName("https://github.com/"))
}

func TestDumpResponses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Test", "yes")
		fmt.Fprint(w, "<html>alice</html>")
	}))
	defer server.Close()

	output := &memoryOutput{files: map[string]string{}}
	client := resty.New()
	DumpResponses(client, output)

	_, err := client.R().Get(server.URL + "/alice")
	require.NoError(t, err)

	require.Equal(t, "<html>alice</html>", output.files["0001-alice.html"])
	require.Contains(t, output.files["0001-alice.http"], "---- RESPONSE ----")
	require.Contains(t, output.files["0001-alice.http"], "X-Test: yes")
	require.Contains(t, output.files["0001-alice.http"], "GET "+server.URL+"/alice")
}

func TestFilesystemOutputCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dump")

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("0001-alice.html", "new")

	content, err := os.ReadFile(filepath.Join(dir, "0001-alice.html"))
	require.NoError(t, err)
	require.Equal(t, "new", string(content))
}

func TestFilesystemOutputRefusesNonEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "keep.txt")
	require.NoError(t, os.WriteFile(keep, []byte("old"), 0600))

	_, err := NewFilesystemOutput(dir)
	require.ErrorIs(t, err, ErrDirNotEmpty)

	content, err := os.ReadFile(keep)
	require.NoError(t, err)
	require.Equal(t, "old", string(content))
}

func TestFilesystemOutputAcceptsEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
}
