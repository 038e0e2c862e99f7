package catalog

import (
	"fmt"
	"os"

	fixtures "github.com/pumped-fn/pumped-fixtures"
)

// TmpDir creates a fresh directory and removes it, with its contents, at
// teardown.
//
// Options:
//   - prefix: directory name prefix (default "fixture-")
//   - keep: leave the directory in place after the test
var TmpDir = fixtures.DefineScoped(TmpDirName, newTmpDir,
	fixtures.WithDescription("temporary directory removed at teardown"),
)

func newTmpDir(opts fixtures.Options, _ *fixtures.Fixtures) (string, func() error, error) {
	dir, err := os.MkdirTemp("", opts.String("prefix", "fixture-")+"*")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp dir: %w", err)
	}

	if opts.Bool("keep", false) {
		return dir, nil, nil
	}

	return dir, func() error {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
		return nil
	}, nil
}
