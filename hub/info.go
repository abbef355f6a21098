package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/gomlx/go-textaug/internal/files"
	"github.com/pkg/errors"
)

// RepoInfo is the subset of "{endpoint}/api/{type}/{id}/revision/{revision}" this package uses.
type RepoInfo struct {
	ID         string      `json:"id"`
	ModelID    string      `json:"model_id"`
	Author     string      `json:"author"`
	CommitHash string      `json:"sha"`
	Tags       []string    `json:"tags"`
	Siblings   []*FileInfo `json:"siblings"`

	// PipelineTag is the task the model is meant for, e.g. "fill-mask", "summarization",
	// "translation" or "text2text-generation".
	PipelineTag string `json:"pipeline_tag"`
}

// FileInfo is one file of the repository.
type FileInfo struct {
	Name string `json:"rfilename"`
}

// CheckTask returns an error if the repo's pipeline tag is known and differs from task.
// Models without a pipeline tag are accepted.
func (r *Repo) CheckTask(task string) error {
	if err := r.DownloadInfo(false); err != nil {
		return err
	}
	if r.info.PipelineTag != "" && r.info.PipelineTag != task {
		return errors.Errorf("model %q is a %q model, expected a %q model", r.ID, r.info.PipelineTag, task)
	}
	return nil
}

// Info returns the repository info, downloading it if needed. It returns nil if the download
// failed; use DownloadInfo to get the error.
func (r *Repo) Info() *RepoInfo {
	if r.info == nil {
		if err := r.DownloadInfo(false); err != nil && r.Verbosity > 0 {
			log.Printf("Failed to get info of %q: %+v", r, err)
		}
	}
	return r.info
}

// infoURL for the API that returns the info about a repository at its revision.
func (r *Repo) infoURL() string {
	return fmt.Sprintf("%s/api/%s/%s/revision/%s", r.hfEndpoint, r.repoType, r.ID, r.revision)
}

// DownloadInfo loads the repository info from "<cache>/info/<revision>", fetching it first if it
// is not cached. With forceDownload the cached copy is discarded.
func (r *Repo) DownloadInfo(forceDownload bool) error {
	if r.info != nil && !forceDownload {
		return nil
	}
	cacheDir, err := r.repoCacheDir()
	if err != nil {
		return err
	}
	infoDir := filepath.Join(cacheDir, "info")
	if err = os.MkdirAll(infoDir, DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create info directory %q", infoDir)
	}
	infoFilePath := filepath.Join(infoDir, r.revision)
	if forceDownload && files.Exists(infoFilePath) {
		if err := os.Remove(infoFilePath); err != nil {
			return errors.Wrapf(err, "failed to remove %q to download it again", infoFilePath)
		}
	}
	if err := r.fetch(context.Background(), r.infoURL(), infoFilePath); err != nil {
		return errors.WithMessagef(err, "failed to download info of %q", r)
	}

	contents, err := os.ReadFile(infoFilePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read info of %q", r)
	}
	info := &RepoInfo{}
	if err = json.Unmarshal(contents, info); err != nil {
		return errors.Wrapf(err, "failed to parse info of %q in %q, remove it to download it again",
			r, infoFilePath)
	}
	r.info = info
	return nil
}
