// Package hub downloads files from HuggingFace Hub: tokenizer configurations used to drive the
// model-backed augmenters, and word vector files.
//
// It shares the cache structure of the huggingface_hub python library (usually under
// "~/.cache/huggingface/hub"), so files downloaded by Python programs are reused.
package hub

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/gomlx/go-textaug"
	"github.com/google/uuid"
)

// SessionId identifies this process in the user agent of requests.
var SessionId = strings.ReplaceAll(uuid.NewString(), "-", "")

var (
	// DefaultDirCreationPerm is used when creating new cache subdirectories.
	DefaultDirCreationPerm = os.FileMode(0755)

	// DefaultFileCreationPerm is used when creating files inside the cache subdirectories.
	DefaultFileCreationPerm = os.FileMode(0644)
)

// DefaultEndpoint of HuggingFace, overridden by the HF_ENDPOINT environment variable.
const DefaultEndpoint = "https://huggingface.co"

// GetEnvOr returns the environment variable key, or defaultValue if it is not set or empty.
func GetEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// Endpoint returns the HuggingFace endpoint to use: ${HF_ENDPOINT} if set, DefaultEndpoint otherwise.
func Endpoint() string {
	return strings.TrimSuffix(GetEnvOr("HF_ENDPOINT", DefaultEndpoint), "/")
}

// fileExists reports whether filePath exists. Errors other than "not found" (e.g. permissions)
// count as existing, so the following read reports them.
func fileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return !os.IsNotExist(err)
}

// DefaultCacheDir is "${XDG_CACHE_HOME}/huggingface/hub", with XDG_CACHE_HOME defaulting to
// "~/.cache", the same used by the python library.
func DefaultCacheDir() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, "huggingface", "hub")
}

// DefaultHttpUserAgent returns a user agent to use with HuggingFace Hub and Inference APIs.
func DefaultHttpUserAgent() string {
	return fmt.Sprintf("go-textaug/%v; golang/%s; session_id/%s",
		textaug.Version, runtime.Version(), SessionId)
}

// RepoIdSeparator replaces "/" in repository ids when naming cache directories.
const RepoIdSeparator = "--"

// RepoType of a HuggingFace Hub repository, also the URL path segment of the type.
type RepoType string

const (
	RepoTypeDataset RepoType = "datasets"
	RepoTypeSpace   RepoType = "spaces"
	RepoTypeModel   RepoType = "models"
)
