package bundle

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/mod/semver"
)

// ResolveAssetsDir picks the asset set for a client version.
//
// root may contain semver named subdirectories such as v1.2.0. The newest one
// not newer than clientVersion is chosen; with no clientVersion the newest
// overall. root itself is returned when it has no versioned subdirectory
// that qualifies, and "" when root does not exist.
func ResolveAssetsDir(root, clientVersion string) (string, error) {
	if root == "" {
		return "", nil
	}
	ents, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to read assets dir")
	}

	want := canonicalVersion(clientVersion)
	best := ""
	for _, e := range ents {
		if !e.IsDir() || !semver.IsValid(e.Name()) {
			continue
		}
		if want != "" && semver.Compare(e.Name(), want) > 0 {
			continue
		}
		if best == "" || semver.Compare(e.Name(), best) > 0 {
			best = e.Name()
		}
	}
	if best == "" {
		return root, nil
	}
	return filepath.Join(root, best), nil
}

func canonicalVersion(v string) string {
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return v
}
