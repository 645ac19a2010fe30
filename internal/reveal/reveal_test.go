package reveal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type launch struct {
	name string
	args []string
}

func fake(goos string, fail error) (*Revealer, *[]launch) {
	var calls []launch
	return &Revealer{goos: goos, start: func(name string, args ...string) error {
		calls = append(calls, launch{name, args})
		return fail
	}}, &calls
}

func TestCommand(t *testing.T) {
	tests := []struct {
		goos string
		file bool
		name string
		args []string
	}{
		{"windows", false, "explorer", []string{"/out"}},
		{"windows", true, "explorer", []string{"/select,", "/out/a.pdf"}},
		{"darwin", false, "open", []string{"/out"}},
		{"darwin", true, "open", []string{"-R", "/out/a.pdf"}},
		{"linux", false, "xdg-open", []string{"/out"}},
		{"linux", true, "xdg-open", []string{"/out"}},
	}
	for _, tt := range tests {
		r := &Revealer{goos: tt.goos}
		path := "/out"
		if tt.file {
			path = "/out/a.pdf"
		}
		name, args := r.Command(path, tt.file)
		assert.Equal(t, tt.name, name, tt.goos)
		assert.Equal(t, tt.args, args, tt.goos)
	}
}

func TestReveal(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.pdf")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	r, calls := fake("darwin", nil)
	require.NoError(t, r.Dir(dir))
	require.NoError(t, r.File(file))
	require.NoError(t, r.File(dir), "a directory is opened, not selected")

	assert.Equal(t, []launch{
		{"open", []string{dir}},
		{"open", []string{"-R", file}},
		{"open", []string{dir}},
	}, *calls)
}

func TestReveal_Errors(t *testing.T) {
	r, calls := fake("linux", nil)
	assert.Error(t, r.Dir(filepath.Join(t.TempDir(), "missing")))
	assert.Empty(t, *calls)

	boom := errors.New("xdg-open: not found")
	r, _ = fake("linux", boom)
	assert.ErrorIs(t, r.Dir(t.TempDir()), boom)
}
