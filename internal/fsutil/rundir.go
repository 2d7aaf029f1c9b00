package fsutil

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/microtex-data/grainmesh/internal/timeutil"
)

var runDirTitle = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// TimestampedDir creates base/<yymmddHHMMSS>_<title> and returns its path,
// so repeated runs against one map never clobber each other. The title is
// sanitized to filename-safe characters; an empty title leaves just the
// stamp.
func TimestampedDir(fsys FileSystem, clock timeutil.Clock, base, title string) (string, error) {
	name := clock.Now().Format("060102150405")
	title = runDirTitle.ReplaceAllString(strings.ReplaceAll(title, " ", "_"), "")
	if title != "" {
		name += "_" + title
	}
	dir := filepath.Join(base, name)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create run directory: %w", err)
	}
	return dir, nil
}
