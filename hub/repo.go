package hub

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomlx/go-textaug/internal/files"
	"github.com/gomlx/gomlx/ml/data/downloader"
	"github.com/pkg/errors"
)

// Repo is a HuggingFace Hub repository (usually a model) from which to download files. Create it
// with New or Parse.
type Repo struct {
	// ID is "owner/name", e.g. "FacebookAI/roberta-base".
	ID string

	hfEndpoint string
	repoType   RepoType
	revision   string // Branch, tag or commit hash.
	authToken  string
	cacheDir   string

	// Verbosity: 0 for quiet operation; 1 for information about downloads; 2 and higher for debugging.
	Verbosity int

	// MaxParallelDownload limits simultaneous downloads of the Repo's download manager, <= 0 for no limit.
	MaxParallelDownload int

	// info is set by DownloadInfo.
	info *RepoInfo

	downloadManager *downloader.Manager
}

// New creates a reference to the HuggingFace model id, e.g. "sshleifer/distilbart-cnn-12-6", at
// its "main" revision.
//
// Files are cached in DefaultCacheDir, and requests are authenticated with ${HF_TOKEN} if set.
func New(id string) *Repo {
	return &Repo{
		ID:                  id,
		repoType:            RepoTypeModel,
		revision:            "main",
		hfEndpoint:          Endpoint(),
		authToken:           os.Getenv("HF_TOKEN"),
		cacheDir:            DefaultCacheDir(),
		Verbosity:           1,
		MaxParallelDownload: 20,
	}
}

// Parse a repository reference of the form "[type/]owner/name[@revision]", where type is
// "models" (the default), "datasets" or "spaces". E.g. "datasets/fse/glove-wiki-gigaword-50@main".
func Parse(ref string) (*Repo, error) {
	id, revision, hasRevision := strings.Cut(ref, "@")
	if hasRevision && revision == "" {
		return nil, errors.Errorf("empty revision in repository reference %q", ref)
	}
	repoType := RepoTypeModel
	for _, t := range []RepoType{RepoTypeModel, RepoTypeDataset, RepoTypeSpace} {
		if rest, found := strings.CutPrefix(id, string(t)+"/"); found {
			repoType, id = t, rest
			break
		}
	}
	if id == "" || strings.HasPrefix(id, "/") || strings.HasSuffix(id, "/") || strings.Count(id, "/") > 1 ||
		strings.Contains(id, "..") {
		return nil, errors.Errorf("invalid repository reference %q, expected [type/]owner/name[@revision]", ref)
	}
	r := New(id).WithType(repoType)
	if hasRevision {
		r.WithRevision(revision)
	}
	return r, nil
}

// WithAuth sets the authentication token, "" to disable authentication.
func (r *Repo) WithAuth(authToken string) *Repo {
	r.authToken = authToken
	return r
}

// WithType sets the repository type.
func (r *Repo) WithType(repoType RepoType) *Repo {
	r.repoType = repoType
	return r
}

// WithEndpoint sets the HuggingFace endpoint.
func (r *Repo) WithEndpoint(endpoint string) *Repo {
	r.hfEndpoint = strings.TrimSuffix(endpoint, "/")
	return r
}

// WithRevision sets the branch, tag or commit hash to download from. The default is "main".
func (r *Repo) WithRevision(revision string) *Repo {
	r.revision = revision
	r.info = nil
	return r
}

// WithCacheDir sets the cache directory. A leading "~" is expanded to the home directory.
func (r *Repo) WithCacheDir(cacheDir string) *Repo {
	expanded, err := files.ExpandHome(cacheDir)
	if err != nil {
		log.Printf("Failed to resolve cache directory %q, keeping %q: %v", cacheDir, r.cacheDir, err)
		return r
	}
	r.cacheDir = filepath.Clean(expanded)
	return r
}

// WithDownloadManager shares a downloader.Manager between repos, so its parallelism limit
// applies to all of them. By default each Repo creates its own.
func (r *Repo) WithDownloadManager(manager *downloader.Manager) *Repo {
	r.downloadManager = manager
	return r
}

// String implements fmt.Stringer.
func (r *Repo) String() string {
	if r.repoType == RepoTypeModel {
		return r.ID
	}
	return string(r.repoType) + "/" + r.ID
}

// repoCacheDir is the repository's directory in the cache, e.g. "models--owner--name", the same
// naming the python library uses. It is created if needed.
func (r *Repo) repoCacheDir() (string, error) {
	name := strings.Join(append([]string{string(r.repoType)}, strings.Split(r.ID, "/")...), RepoIdSeparator)
	dir := filepath.Join(r.cacheDir, name)
	if err := os.MkdirAll(dir, DefaultDirCreationPerm); err != nil {
		return "", errors.Wrapf(err, "failed to create cache directory %q", dir)
	}
	return dir, nil
}

// FileURL returns the URL of the file at the Repo's revision.
func (r *Repo) FileURL(fileName string) (string, error) {
	commitHash, err := r.commitHash()
	if err != nil {
		return "", err
	}
	return r.fileURLAt(commitHash, fileName), nil
}

func (r *Repo) fileURLAt(commitHash, fileName string) string {
	if r.repoType == RepoTypeModel {
		return fmt.Sprintf("%s/%s/resolve/%s/%s", r.hfEndpoint, r.ID, commitHash, fileName)
	}
	return fmt.Sprintf("%s/%s/%s/resolve/%s/%s", r.hfEndpoint, r.repoType, r.ID, commitHash, fileName)
}

// commitHash of the Repo's revision, from the repository info.
func (r *Repo) commitHash() (string, error) {
	if err := r.DownloadInfo(false); err != nil {
		return "", err
	}
	if r.info.CommitHash == "" {
		return "", errors.Errorf("repo %q info has no commit hash for revision %q", r, r.revision)
	}
	return r.info.CommitHash, nil
}

// repoSnapshotsDir returns (and creates) the directory of the files at the Repo's revision.
func (r *Repo) repoSnapshotsDir() (string, error) {
	cacheDir, err := r.repoCacheDir()
	if err != nil {
		return "", err
	}
	commitHash, err := r.commitHash()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(cacheDir, "snapshots", commitHash)
	if err = os.MkdirAll(dir, DefaultDirCreationPerm); err != nil {
		return "", errors.Wrapf(err, "failed to create snapshots directory %q", dir)
	}
	return dir, nil
}
