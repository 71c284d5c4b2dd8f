package canvas

import (
	"go/build"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/inamate/annotate"

// jsImports returns every import reachable from the package in dir when
// built for js/wasm, following packages of this module only.
func jsImports(t *testing.T, root, dir string) map[string]bool {
	t.Helper()
	ctx := build.Default
	ctx.GOOS, ctx.GOARCH = "js", "wasm"
	ctx.CgoEnabled = false

	seen := map[string]bool{}
	var walk func(dir string)
	walk = func(dir string) {
		pkg, err := ctx.ImportDir(dir, 0)
		require.NoError(t, err, dir)
		for _, imp := range pkg.Imports {
			if seen[imp] {
				continue
			}
			seen[imp] = true
			if rest, ok := strings.CutPrefix(imp, modulePath+"/"); ok {
				walk(filepath.Join(root, filepath.FromSlash(rest)))
			}
		}
	}
	walk(dir)
	return seen
}

func TestBrowserBuildAvoidsNativeDeps(t *testing.T) {
	root, err := filepath.Abs(filepath.Join("..", ".."))
	require.NoError(t, err)
	deps := jsImports(t, root, filepath.Join(root, "cmd", "wasm"))

	require.True(t, deps[modulePath+"/internal/canvas"])
	assert.True(t, deps[modulePath+"/internal/clipboard"])
	for _, native := range []string{
		modulePath + "/internal/store",
		modulePath + "/internal/document",
		"modernc.org/sqlite",
		"github.com/atotto/clipboard",
	} {
		assert.False(t, deps[native], native)
	}
}
