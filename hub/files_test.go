package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanRelativeFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"foo/bar", "foo/bar"},
		{"foo/../bar", "bar"},
		{"foo/./bar", "foo/bar"},
		{"/foo/bar", "foo/bar"},
		{"foo//bar", "foo/bar"},
		{"foo/bar/..", "foo"},
		{"../foo/bar", "foo/bar"},
		{"foo/../../../..", "."},
		{"foo/../../../bar", "bar"},
		{"", "."},
		{".", "."},
		{"..", "."},
	}

	for _, tc := range testCases {
		expected := filepath.FromSlash(tc.expected)
		got := cleanRelativeFilePath(tc.input)
		fmt.Printf("\tcleanRelativeFilePath(%q) = %q\n", tc.input, got)
		assert.Equal(t, expected, got)
	}
}

func TestRepoInfoFromCache(t *testing.T) {
	cacheDir := t.TempDir()
	repo := New("owner/model").WithCacheDir(cacheDir).WithEndpoint("http://localhost:1/")
	infoDir := filepath.Join(cacheDir, "models--owner--model", "info")
	require.NoError(t, os.MkdirAll(infoDir, 0755))
	infoJSON := `{"id": "owner/model", "sha": "abc123", "siblings": [{"rfilename": "tokenizer_config.json"}, {"rfilename": "vectors.txt"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(infoDir, "main"), []byte(infoJSON), 0644))

	require.NoError(t, repo.DownloadInfo(false))
	assert.Equal(t, "abc123", repo.Info().CommitHash)
	assert.True(t, repo.HasFile("vectors.txt"))
	assert.False(t, repo.HasFile("model.safetensors"))

	url, err := repo.FileURL("vectors.txt")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1/owner/model/resolve/abc123/vectors.txt", url)

	// Files already in the snapshot are not downloaded again.
	snapshot := filepath.Join(cacheDir, "models--owner--model", "snapshots", "abc123")
	require.NoError(t, os.MkdirAll(snapshot, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(snapshot, "vectors.txt"), []byte("a 1\n"), 0644))
	localPath, err := repo.DownloadFile("vectors.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(snapshot, "vectors.txt"), localPath)
}

func TestRepoInfoDownload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path != "/api/models/owner/model/revision/main" {
			http.NotFound(w, req)
			return
		}
		_, _ = w.Write([]byte(`{"id": "owner/model", "sha": "def456", "siblings": []}`))
	}))
	defer server.Close()

	repo := New("owner/model").WithCacheDir(t.TempDir()).WithEndpoint(server.URL)
	require.NoError(t, repo.DownloadInfo(false))
	assert.Equal(t, "def456", repo.Info().CommitHash)
}

func TestRepoInfoForceDownload(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls++
		_, _ = fmt.Fprintf(w, `{"id": "owner/model", "sha": "sha%d", "pipeline_tag": "fill-mask"}`, calls)
	}))
	defer server.Close()

	cacheDir := t.TempDir()
	require.NoError(t, New("owner/model").WithCacheDir(cacheDir).WithEndpoint(server.URL).DownloadInfo(false))
	repo := New("owner/model").WithCacheDir(cacheDir).WithEndpoint(server.URL)
	require.NoError(t, repo.DownloadInfo(false))
	assert.Equal(t, 1, calls, "info is read from the cache")
	assert.Equal(t, "sha1", repo.Info().CommitHash)

	require.NoError(t, repo.DownloadInfo(true))
	assert.Equal(t, 2, calls)
	assert.Equal(t, "sha2", repo.Info().CommitHash)

	assert.NoError(t, repo.CheckTask("fill-mask"))
	assert.Error(t, repo.CheckTask("summarization"))

	// No lock file is left behind.
	_, err := os.Stat(filepath.Join(cacheDir, "models--owner--model", "info", "main.lock"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "file.lock")
	lock, err := acquireFileLock(context.Background(), lockPath)
	require.NoError(t, err)

	// A second lock waits until the context is done.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = acquireFileLock(ctx, lockPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	lock.release()
	lock, err = acquireFileLock(context.Background(), lockPath)
	require.NoError(t, err)
	lock.release()
}

func TestParse(t *testing.T) {
	testCases := []struct {
		ref, want, revision string
		repoType            RepoType
	}{
		{"owner/model", "owner/model", "main", RepoTypeModel},
		{"models/owner/model@v2", "owner/model", "v2", RepoTypeModel},
		{"datasets/fse/glove-wiki-gigaword-50", "datasets/fse/glove-wiki-gigaword-50", "main", RepoTypeDataset},
		{"distilroberta-base", "distilroberta-base", "main", RepoTypeModel},
	}
	for _, tc := range testCases {
		repo, err := Parse(tc.ref)
		require.NoError(t, err, tc.ref)
		fmt.Printf("\tParse(%q) = %s@%s\n", tc.ref, repo, repo.revision)
		assert.Equal(t, tc.want, repo.String())
		assert.Equal(t, tc.revision, repo.revision)
		assert.Equal(t, tc.repoType, repo.repoType)
	}

	for _, bad := range []string{"", "owner/model@", "a/b/c", "/model", "owner/", "../x"} {
		_, err := Parse(bad)
		assert.Error(t, err, "Parse(%q)", bad)
	}

	repo, err := Parse("datasets/owner/vectors@abc")
	require.NoError(t, err)
	repo.WithEndpoint("https://hf.example/")
	assert.Equal(t, "https://hf.example/datasets/owner/vectors/resolve/abc/v.txt", repo.fileURLAt("abc", "v.txt"))
	assert.Equal(t, "https://hf.example/api/datasets/owner/vectors/revision/abc", repo.infoURL())
}
