package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jverho/kontor/internal/domain"
)

func TestManifestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "hr", `{
		"name": "Human Resources",
		"version": "2.0.1",
		"menu": [
			{"id": "staff", "label": "Staff", "path": "/hr/staff", "position": 10},
			{"label": "Leave Requests", "path": "/hr/leave", "position": 20}
		]
	}`)

	man, err := NewManifestLoader(dir).Load("hr")
	require.NoError(t, err)

	assert.Equal(t, "hr", man.Slug)
	assert.Equal(t, "Human Resources", man.Name)
	assert.Equal(t, "2.0.1", man.Version)

	require.Len(t, man.Menu, 2)
	assert.Equal(t, "hr.staff", man.Menu[0].ID)
	assert.Equal(t, "hr", man.Menu[0].Module)
	// Missing id derives from the label.
	assert.Equal(t, "hr.leave-requests", man.Menu[1].ID)
}

func TestManifestLoader_Missing(t *testing.T) {
	_, err := NewManifestLoader(t.TempDir()).Load("ghost")
	require.ErrorIs(t, err, domain.ErrModuleNotFound)
}

func TestManifestLoader_SlugMismatch(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "hr", `{"slug": "payroll", "name": "HR"}`)

	_, err := NewManifestLoader(dir).Load("hr")
	require.Error(t, err)
}

func TestManifestLoader_RequiresName(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "hr", `{"version": "1.0.0"}`)

	_, err := NewManifestLoader(dir).Load("hr")
	require.Error(t, err)
}
