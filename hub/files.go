package hub

import (
	"context"
	"iter"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// IterFileNames yields the names of the repository files, from the repository info. Names that
// could escape the cache directory end the iteration with an error.
func (r *Repo) IterFileNames() iter.Seq2[string, error] {
	if err := r.DownloadInfo(false); err != nil {
		return func(yield func(string, error) bool) {
			yield("", err)
		}
	}
	return func(yield func(string, error) bool) {
		for _, si := range r.info.Siblings {
			fileName := si.Name
			if path.IsAbs(fileName) || strings.Contains(fileName, "..") {
				yield("", errors.Errorf("repo %q lists invalid file name %q", r, fileName))
				return
			}
			if !yield(fileName, nil) {
				return
			}
		}
	}
}

// HasFile reports whether the repository lists fileName. Only the info is downloaded.
func (r *Repo) HasFile(fileName string) bool {
	for name, err := range r.IterFileNames() {
		if err != nil {
			if r.Verbosity > 0 {
				log.Printf("Failed to list files of %q: %+v", r.ID, err)
			}
			return false
		}
		if name == fileName {
			return true
		}
	}
	return false
}

// cleanRelativeFilePath returns a relative, cleaned path that can't escape its parent directory,
// using the OS separator.
func cleanRelativeFilePath(fileName string) string {
	cleaned := path.Clean("/" + fileName)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" {
		cleaned = "."
	}
	return filepath.FromSlash(cleaned)
}

// DownloadFiles returns the cached paths of fileNames at the Repo's revision, downloading the
// missing ones. The files are shared with other programs using the cache: don't modify them.
func (r *Repo) DownloadFiles(fileNames ...string) (downloadedPaths []string, err error) {
	if len(fileNames) == 0 {
		return
	}
	snapshotsDir, err := r.repoSnapshotsDir()
	if err != nil {
		return nil, err
	}
	commitHash, err := r.commitHash()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	downloadedPaths = make([]string, 0, len(fileNames))
	for _, fileName := range fileNames {
		filePath := filepath.Join(snapshotsDir, cleanRelativeFilePath(fileName))
		if !fileExists(filePath) {
			url := r.fileURLAt(commitHash, fileName)
			if err = r.fetch(ctx, url, filePath); err != nil {
				return nil, errors.WithMessagef(err, "while downloading %q from %q", fileName, r.ID)
			}
			if r.Verbosity > 0 {
				if info, statErr := os.Stat(filePath); statErr == nil {
					log.Printf("Downloaded %q from %q (%s)", fileName, r.ID, humanize.Bytes(uint64(info.Size())))
				}
			}
		}
		downloadedPaths = append(downloadedPaths, filePath)
	}
	return
}

// DownloadFile is DownloadFiles for a single file.
func (r *Repo) DownloadFile(fileName string) (downloadedPath string, err error) {
	res, err := r.DownloadFiles(fileName)
	if err != nil {
		return "", err
	}
	return res[0], nil
}
