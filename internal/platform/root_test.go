package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConfig(t *testing.T) {
	// base/
	//   project/ (fireclass.yaml)
	//     subdir/
	//       nested/
	//   empty/
	baseDir := t.TempDir()
	projectDir := filepath.Join(baseDir, "project")
	subDir := filepath.Join(projectDir, "subdir")
	nestedDir := filepath.Join(subDir, "nested")
	emptyDir := filepath.Join(baseDir, "empty")

	require.NoError(t, os.MkdirAll(nestedDir, 0o755))
	require.NoError(t, os.MkdirAll(emptyDir, 0o755))
	want := filepath.Join(projectDir, ConfigFile)
	require.NoError(t, os.WriteFile(want, []byte("adapter: memory\n"), 0o644))

	tests := []struct {
		name      string
		startPath string
		wantErr   bool
	}{
		{name: "Start at Root", startPath: projectDir},
		{name: "Start in Subdir", startPath: subDir},
		{name: "Start Nested Deeply", startPath: nestedDir},
		{name: "No Config Found", startPath: emptyDir, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindConfig(tt.startPath)
			if tt.wantErr {
				// A fireclass.yaml further up (e.g. in the user's temp dir) would be found too.
				if err == nil {
					assert.NotEqual(t, want, got)
					return
				}
				require.ErrorIs(t, err, ErrNoConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestFindConfig_IgnoresDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ConfigFile), 0o755))

	got, err := FindConfig(dir)
	if err == nil {
		assert.NotEqual(t, filepath.Join(dir, ConfigFile), got)
	}
}
