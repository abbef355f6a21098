// Package files has the path helpers shared by the packages that read user given files.
package files

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Exists reports whether a file or directory exists at filePath.
func Exists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// ExpandHome replaces a leading "~" (current user) or "~name" (user name) in filePath by the
// user's home directory. Other paths are returned unchanged.
func ExpandHome(filePath string) (string, error) {
	if !strings.HasPrefix(filePath, "~") {
		return filePath, nil
	}
	name, rest, _ := strings.Cut(filePath[1:], "/")
	var home string
	if name == "" {
		var err error
		if home, err = os.UserHomeDir(); err != nil {
			return filePath, errors.Wrapf(err, "failed to find home directory to expand %q", filePath)
		}
	} else {
		u, err := user.Lookup(name)
		if err != nil {
			return filePath, errors.Wrapf(err, "failed to find home directory of user %q to expand %q", name, filePath)
		}
		home = u.HomeDir
	}
	return filepath.Join(home, rest), nil
}
