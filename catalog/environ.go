package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cast"

	fixtures "github.com/pumped-fn/pumped-fixtures"
)

// ClearKey is the reserved environ option that starts the test from an empty
// environment.
const ClearKey = "clear"

// Environ applies variables to the process environment for the duration of a
// test and restores the previous environment exactly at teardown. Every option
// other than "clear" is a variable name mapped to its value.
//
// The process environment is global: tests using Environ must not run in
// parallel with tests reading it.
var Environ = NewEnviron(EnvironName, nil)

// NewEnviron declares an environ-style fixture named name. Defaults are
// applied before the test options; their values may reference ${tmpdir},
// which expands to the tmpdir fixture, and any existing variable.
func NewEnviron(name string, defaults map[string]string) *fixtures.Fixture[map[string]string] {
	return fixtures.DefineScoped(name,
		func(opts fixtures.Options, fx *fixtures.Fixtures) (map[string]string, func() error, error) {
			return applyEnviron(defaults, opts, fx)
		},
		fixtures.DependsOn(TmpDirName),
		fixtures.WithDescription("process environment restored at teardown"),
	)
}

func applyEnviron(defaults map[string]string, opts fixtures.Options, fx *fixtures.Fixtures) (map[string]string, func() error, error) {
	tmpdir, err := TmpDir.Get(fx)
	if err != nil {
		return nil, nil, err
	}

	expand := func(key string) string {
		if key == TmpDirName {
			return tmpdir
		}
		return os.Getenv(key)
	}

	vars := make(map[string]string, len(defaults)+opts.Len())
	for key, value := range defaults {
		vars[key] = os.Expand(value, expand)
	}
	for key, value := range opts.Without(ClearKey).ToMap() {
		s, err := cast.ToStringE(value)
		if err != nil {
			return nil, nil, fmt.Errorf("environ option %s: %w", key, err)
		}
		vars[key] = s
	}

	snapshot := os.Environ()
	restore := func() error {
		return restoreEnviron(snapshot)
	}

	if opts.Bool(ClearKey, false) {
		os.Clearenv()
	}
	for key, value := range vars {
		if err := os.Setenv(key, value); err != nil {
			return nil, restore, fmt.Errorf("setting %s: %w", key, err)
		}
	}

	return vars, restore, nil
}

// restoreEnviron replaces the process environment with snapshot, a value
// previously returned by os.Environ.
func restoreEnviron(snapshot []string) error {
	os.Clearenv()

	var errs []error
	for _, entry := range snapshot {
		if entry == "" {
			continue
		}
		// skip the leading byte so Windows drive entries like "=C:=C:\" keep their key
		i := strings.Index(entry[1:], "=")
		if i < 0 {
			continue
		}
		key, value := entry[:i+1], entry[i+2:]
		if err := os.Setenv(key, value); err != nil {
			errs = append(errs, fmt.Errorf("restoring %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
