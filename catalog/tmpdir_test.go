package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fixtures "github.com/pumped-fn/pumped-fixtures"
)

func TestTmpDir_RemovedAtTeardown(t *testing.T) {
	scope, fx := enter(t, nil, TmpDirName)

	dir, err := TmpDir.Get(fx)
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "fixture-"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt"), []byte("x"), 0o644))
	require.NoError(t, scope.Exit())

	assert.NoDirExists(t, dir)
}

func TestTmpDir_Options(t *testing.T) {
	set := fixtures.OptionSet{}.With(TmpDirName, map[string]any{"prefix": "orders-", "keep": true})
	scope, fx := enter(t, set, TmpDirName)

	dir, err := TmpDir.Get(fx)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	assert.True(t, strings.HasPrefix(filepath.Base(dir), "orders-"))
	assert.Empty(t, scope.Acquired())

	require.NoError(t, scope.Exit())
	assert.DirExists(t, dir, "keep leaves the directory in place")
}

func TestTmpDir_Distinct(t *testing.T) {
	_, first := enter(t, nil, TmpDirName)
	_, second := enter(t, nil, TmpDirName)
	t.Cleanup(func() {
		first.Scope().Exit()
		second.Scope().Exit()
	})

	a, _ := TmpDir.Get(first)
	b, _ := TmpDir.Get(second)
	assert.NotEqual(t, a, b)
}
