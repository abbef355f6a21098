package hub

import (
	"context"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/gomlx/ml/data/downloader"
	"github.com/pkg/errors"
)

// lockPollPeriod is the minimum wait between attempts to take a file lock held by another process.
// A random jitter of up to the same amount is added.
const lockPollPeriod = 500 * time.Millisecond

// manager returns the Repo's downloader.Manager, creating one on first use.
func (r *Repo) manager() *downloader.Manager {
	if r.downloadManager == nil {
		r.downloadManager = downloader.New().MaxParallel(r.MaxParallelDownload).WithAuthToken(r.authToken)
	}
	return r.downloadManager
}

// fetch downloads url into filePath, unless filePath already exists.
//
// The contents are first written to filePath+".downloading" and renamed once complete, so a
// present filePath is always a complete file. Concurrent fetches of the same file, from this or
// other processes sharing the cache, are serialized with a lock file and only the first one
// downloads.
func (r *Repo) fetch(ctx context.Context, url, filePath string) error {
	if fileExists(filePath) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(filePath), DefaultDirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create cache directory for %q", filePath)
	}

	lock, err := acquireFileLock(ctx, filePath+".lock")
	if err != nil {
		return err
	}
	defer lock.release()
	if fileExists(filePath) {
		// Downloaded while we waited for the lock.
		return nil
	}

	partialPath := filePath + ".downloading"
	if err := r.manager().Download(ctx, url, partialPath, nil); err != nil {
		if rmErr := os.Remove(partialPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("Failed to remove partial download %q: %v", partialPath, rmErr)
		}
		return errors.WithMessagef(err, "downloading %q", url)
	}
	if err := os.Rename(partialPath, filePath); err != nil {
		return errors.Wrapf(err, "failed to move %q to %q", partialPath, filePath)
	}
	if r.Verbosity > 1 {
		if info, err := os.Stat(filePath); err == nil {
			log.Printf("Fetched %s from %q", humanize.Bytes(uint64(info.Size())), url)
		}
	}
	// The file exists now, later callers return before taking the lock.
	lock.remove = true
	return nil
}

// fileLock is an exclusive advisory lock on a file, shared across processes.
type fileLock struct {
	path   string
	f      *os.File
	remove bool // Remove the lock file on release.
}

// acquireFileLock creates (if needed) and locks the file at lockPath, polling while another
// process holds it. It returns ctx's error if ctx is done before the lock is taken.
func acquireFileLock(ctx context.Context, lockPath string) (*fileLock, error) {
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, DefaultFileCreationPerm)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open lock file %q", lockPath)
	}
	for {
		err = syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return &fileLock{path: lockPath, f: f}, nil
		}
		if !errors.Is(err, syscall.EWOULDBLOCK) {
			_ = f.Close()
			return nil, errors.Wrapf(err, "failed to lock %q", lockPath)
		}
		wait := lockPollPeriod + rand.N(lockPollPeriod)
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, errors.Wrapf(ctx.Err(), "waiting for lock %q", lockPath)
		case <-time.After(wait):
		}
	}
}

// release unlocks and closes the lock file. Errors are only logged, since the download itself
// succeeded or failed independently.
func (l *fileLock) release() {
	if l.remove {
		// Removing while holding the lock: a waiting process then finds the downloaded file.
		if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
			log.Printf("Failed to remove lock file %q: %v", l.path, err)
		}
	}
	if err := syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN); err != nil {
		log.Printf("Failed to unlock %q: %v", l.path, err)
	}
	if err := l.f.Close(); err != nil {
		log.Printf("Failed to close lock file %q: %v", l.path, err)
	}
}
