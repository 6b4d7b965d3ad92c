package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/phprune/internal/testutil"
	"github.com/panbanda/phprune/pkg/config"
)

func tree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	testutil.CreateFileTree(t, testutil.OsFS(), dir, files)
	return dir
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		r, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(r)
	}
	return out
}

func TestNewScanner(t *testing.T) {
	s, err := NewScanner(nil)
	require.NoError(t, err)
	assert.NotNil(t, s.config)

	cfg := config.DefaultConfig()
	cfg.Input.FilePattern = "("
	_, err = NewScanner(cfg)
	assert.Error(t, err)
}

func TestScanDir_Order(t *testing.T) {
	root := tree(t, map[string]string{
		"b.php":             "",
		"a.php":             "",
		"Models/User.php":   "",
		"Models/Admin.php":  "",
		"Http/Kernel.php":   "",
		"Http/Sub/Deep.php": "",
		"readme.md":         "",
	})

	s, err := NewScanner(nil)
	require.NoError(t, err)
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Http/Sub/Deep.php",
		"Http/Kernel.php",
		"Models/Admin.php",
		"Models/User.php",
		"a.php",
		"b.php",
	}, rel(t, root, files))
}

func TestScanDir_Exclusions(t *testing.T) {
	root := tree(t, map[string]string{
		"app/User.php":            "",
		"vendor/lib/Lib.php":      "",
		"storage/cache/Cache.php": "",
		"app/User.blade.php":      "",
	})

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"storage/", "*.blade.php"}
	s, err := NewScanner(cfg)
	require.NoError(t, err)
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"app/User.php"}, rel(t, root, files))
}

func TestScanDir_Gitignore(t *testing.T) {
	root := tree(t, map[string]string{
		".gitignore":         "generated\n",
		"app/User.php":       "",
		"generated/Stub.php": "",
	})
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	cfg := config.DefaultConfig()
	s, err := NewScanner(cfg)
	require.NoError(t, err)
	files, err := s.ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app/User.php"}, rel(t, root, files))

	cfg.Exclude.Gitignore = false
	s, err = NewScanner(cfg)
	require.NoError(t, err)
	files, err = s.ScanDir(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"app/User.php", "generated/Stub.php"}, rel(t, root, files))
}

func TestScanDir_GitignoreBelowRepoRoot(t *testing.T) {
	repo := tree(t, map[string]string{
		".gitignore":          "/app/cache.php\n",
		"app/.gitignore":      "legacy/\n",
		"app/A.php":           "",
		"app/cache.php":       "",
		"app/legacy/Old.php":  "",
		"app/Models/User.php": "",
	})
	require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0o755))

	cfg := config.DefaultConfig()
	cfg.Exclude.Patterns = []string{"/Models/"}
	s, err := NewScanner(cfg)
	require.NoError(t, err)
	root := filepath.Join(repo, "app")
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	// Config patterns are anchored at the scan root, .gitignore files at
	// their own directory.
	assert.Equal(t, []string{"A.php"}, rel(t, root, files))
}

func TestScanDir_FilePattern(t *testing.T) {
	root := tree(t, map[string]string{
		"User.php":  "",
		"User.inc":  "",
		"bootstrap": "",
	})

	cfg := config.DefaultConfig()
	cfg.Input.FilePattern = `.+\.(php|inc)$`
	s, err := NewScanner(cfg)
	require.NoError(t, err)
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"User.inc", "User.php"}, rel(t, root, files))
}

func TestDiscover(t *testing.T) {
	root := tree(t, map[string]string{
		"app/User.php":       "",
		"public/index.php":   "",
		"public/api/v1.php":  "",
		"routes/web.php":     "",
		"bootstrap/boot.php": "",
	})

	s, err := NewScanner(nil)
	require.NoError(t, err)
	files, err := s.Discover(root, []string{"public", "routes"})
	require.NoError(t, err)

	var paths []string
	var entry []bool
	for _, f := range files {
		paths = append(paths, f.Path)
		entry = append(entry, f.Entrypoint)
	}
	assert.Equal(t, []string{
		"app/User.php",
		"bootstrap/boot.php",
		"public/api/v1.php",
		"public/index.php",
		"routes/web.php",
	}, rel(t, root, paths))
	assert.Equal(t, []bool{false, false, true, true, true}, entry)
}

func TestDiscover_MissingEntrypoint(t *testing.T) {
	root := tree(t, map[string]string{"app/User.php": ""})

	s, err := NewScanner(nil)
	require.NoError(t, err)
	_, err = s.Discover(root, []string{"public"})
	assert.ErrorContains(t, err, "entrypoint public")
}

func TestScanDir_Symlinks(t *testing.T) {
	root := tree(t, map[string]string{"real.php": ""})
	outside := tree(t, map[string]string{"outside.php": ""})

	if err := os.Symlink(filepath.Join(root, "real.php"), filepath.Join(root, "link.php")); err != nil {
		t.Skip("Symlinks not supported on this system")
	}
	require.NoError(t, os.Symlink(filepath.Join(outside, "outside.php"), filepath.Join(root, "escape.php")))
	require.NoError(t, os.Symlink("/nonexistent/file.php", filepath.Join(root, "dangling.php")))

	s, err := NewScanner(nil)
	require.NoError(t, err)
	files, err := s.ScanDir(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"link.php", "real.php"}, rel(t, root, files))
}

func TestIsWithinRoot(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"same path", tmpDir, true},
		{"child path", filepath.Join(tmpDir, "subdir", "file.php"), true},
		{"path outside root", "/some/other/path", false},
		{"parent path", filepath.Dir(tmpDir), false},
		{"similar prefix but different dir", tmpDir + "2/file.php", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isWithinRoot(tt.path, tmpDir))
		})
	}
}

func TestFindGitRoot(t *testing.T) {
	tmpDir := t.TempDir()
	assert.Empty(t, findGitRoot(tmpDir))

	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755))
	assert.Equal(t, tmpDir, findGitRoot(tmpDir))

	subDir := filepath.Join(tmpDir, "src", "pkg")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	assert.Equal(t, tmpDir, findGitRoot(subDir))
}
