package catalog

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"

	fixtures "github.com/pumped-fn/pumped-fixtures"
)

// FilesKey is the option mapping file paths to their initial content.
const FilesKey = "files"

// MemFS is an in-memory filesystem seeded from the "files" option.
var MemFS = fixtures.Define(MemFSName,
	func(opts fixtures.Options, _ *fixtures.Fixtures) (afero.Fs, error) {
		fs := afero.NewMemMapFs()
		if err := seedFiles(fs, opts.StringMap(FilesKey, nil)); err != nil {
			return nil, err
		}
		return fs, nil
	},
	fixtures.WithDescription("in-memory filesystem"),
)

// FS is a filesystem rooted at the tmpdir fixture and seeded from the
// "files" option. Its contents go away with tmpdir.
var FS = fixtures.Define(FSName,
	func(opts fixtures.Options, fx *fixtures.Fixtures) (afero.Fs, error) {
		dir, err := TmpDir.Get(fx)
		if err != nil {
			return nil, err
		}
		fs := afero.NewBasePathFs(afero.NewOsFs(), dir)
		if err := seedFiles(fs, opts.StringMap(FilesKey, nil)); err != nil {
			return nil, err
		}
		return fs, nil
	},
	fixtures.DependsOn(TmpDirName),
	fixtures.WithDescription("filesystem rooted at tmpdir"),
)

func seedFiles(fs afero.Fs, files map[string]string) error {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating parent of %s: %w", path, err)
		}
		if err := afero.WriteFile(fs, path, []byte(files[path]), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}
