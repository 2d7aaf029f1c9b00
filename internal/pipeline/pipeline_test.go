package pipeline

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/ebsdio"
	"github.com/microtex-data/grainmesh/internal/fsutil"
	"github.com/microtex-data/grainmesh/internal/mesher"
	"github.com/microtex-data/grainmesh/internal/plot"
	"github.com/microtex-data/grainmesh/internal/store"
)

// twoGrainMap is a 4x4 map at step 1: grain 1 fills columns 0-1, grain 2
// columns 2-3, and the cell at (1,1) is missing from the file.
const twoGrainMap = `x,y,grain_id,phi_1,Phi,phi_2
0,0,1,0,0,0
1,0,1,0,0,0
2,0,2,0.5,0.5,0.5
3,0,2,0.5,0.5,0.5
0,1,1,0,0,0
2,1,2,0.5,0.5,0.5
3,1,2,0.5,0.5,0.5
0,2,1,0,0,0
1,2,1,0,0,0
2,2,2,0.5,0.5,0.5
3,2,2,0.5,0.5,0.5
0,3,1,0,0,0
1,3,1,0,0,0
2,3,2,0.5,0.5,0.5
3,3,2,0.5,0.5,0.5
`

func importedController(t *testing.T) (*Controller, fsutil.FileSystem) {
	t.Helper()
	fsys := fsutil.NewMemory()
	require.NoError(t, fsys.WriteFile("/maps/two.csv", []byte(twoGrainMap), 0644))
	c := New(fsys, nil)
	require.NoError(t, c.Import("/maps/two.csv", ebsdio.ImportOptions{}))
	return c, fsys
}

func TestImportBuildsState(t *testing.T) {
	c, _ := importedController(t)

	g := c.Grid()
	require.NotNil(t, g)
	assert.Equal(t, 4, g.Rows)
	assert.Equal(t, 4, g.Cols)
	assert.Equal(t, 1, g.VoidCount())
	assert.Equal(t, 2, c.Registry().Len())
	assert.Empty(t, c.Operations())

	b, ok, err := c.Bounds()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, ebsd.Bounds{XMin: 0, XMax: 4, YMin: 0, YMax: 4}, b)
}

func TestOperationsBeforeImport(t *testing.T) {
	cases := []struct {
		name string
		call func(c *Controller) error
	}{
		{"clean", func(c *Controller) error { _, err := c.Clean(1); return err }},
		{"smooth", func(c *Controller) error { _, err := c.Smooth(1); return err }},
		{"fill", func(c *Controller) error { _, err := c.Fill(1); return err }},
		{"remove-grains", func(c *Controller) error { _, err := c.RemoveGrains(2); return err }},
		{"resample", func(c *Controller) error { return c.Resample(2) }},
		{"redefine", func(c *Controller) error {
			return c.RedefineDomain(ebsd.Bounds{XMin: 0, XMax: 1, YMin: 0, YMax: 1})
		}},
		{"grips", func(c *Controller) error { return c.AddGrips(1) }},
		{"bounds", func(c *Controller) error { _, _, err := c.Bounds(); return err }},
		{"summarize", func(c *Controller) error { _, err := c.Summarize(); return err }},
		{"export-elements", func(c *Controller) error { return c.ExportElements("/out/e.csv", true) }},
		{"spn", func(c *Controller) error { return c.WriteSPN("/out/v.spn", 1) }},
		{"plot", func(c *Controller) error { return c.PlotPNG("/out/m.png", plot.MapOptions{}) }},
		{"mesh", func(c *Controller) error { return c.Mesh(nil, MeshOptions{}) }},
		{"record", func(c *Controller) error { _, err := c.Record(nil); return err }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New(fsutil.NewMemory(), nil)
			require.ErrorIs(t, tc.call(c), ebsd.ErrState)
		})
	}
}

func TestPipelineSequence(t *testing.T) {
	c, _ := importedController(t)

	remaining, err := c.Fill(1)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 0, c.Grid().VoidCount())

	// Two clean half-planes are stable under the majority vote.
	changed, err := c.Clean(1)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)

	require.NoError(t, c.AddGrips(2))
	g := c.Grid()
	assert.Equal(t, 8, g.Cols)
	assert.Equal(t, 4, g.Rows)
	assert.Equal(t, ebsd.GripIDs{Left: 3, Right: 4}, c.GripIDs())
	assert.Equal(t, 4, c.Registry().Len())
	assert.Equal(t, 3, g.At(0, 0).GrainID)
	assert.Equal(t, 4, g.At(0, 7).GrainID)

	assert.Equal(t, []string{"fill iters=1", "clean iters=1", "grips n=2"}, c.Operations())
}

func TestResampleAndRedefine(t *testing.T) {
	c, _ := importedController(t)

	require.NoError(t, c.Resample(2))
	g := c.Grid()
	assert.Equal(t, 2, g.Rows)
	assert.Equal(t, 2, g.Cols)
	assert.InDelta(t, 2.0, g.Lattice.Step, 1e-12)

	// A window that misses the map leaves the state untouched.
	err := c.RedefineDomain(ebsd.Bounds{XMin: 50, XMax: 60, YMin: 0, YMax: 4})
	require.ErrorIs(t, err, ebsd.ErrDomain)
	assert.Equal(t, 2, c.Grid().Cols)

	require.NoError(t, c.RedefineDomain(ebsd.Bounds{XMin: 0, XMax: 2, YMin: 0, YMax: 4}))
	g = c.Grid()
	assert.Equal(t, 2, g.Rows)
	assert.Equal(t, 1, g.Cols)

	assert.Equal(t, []string{"resample factor=2", "redefine x=[0,2] y=[0,4]"}, c.Operations())
}

func TestExports(t *testing.T) {
	c, fsys := importedController(t)

	require.NoError(t, c.ExportElements("/out/elements.csv", true))
	require.NoError(t, c.ExportGrains("/out/grains.csv", true))
	require.NoError(t, c.ExportBounds("/out/bounds.csv"))
	require.NoError(t, c.WriteSPN("/out/voxels.spn", 2))

	for _, path := range []string{"/out/elements.csv", "/out/grains.csv", "/out/bounds.csv", "/out/voxels.spn"} {
		data, err := fsys.ReadFile(path)
		require.NoError(t, err, path)
		assert.NotEmpty(t, data, path)
	}

	spn, err := fsys.ReadFile("/out/voxels.spn")
	require.NoError(t, err)
	assert.Len(t, strings.Fields(string(spn)), 4*4*2)
	assert.Contains(t, string(spn), "100000", "void should export under the default id")
}

func TestPlots(t *testing.T) {
	c, fsys := importedController(t)

	require.NoError(t, c.PlotPNG("/out/map.png", plot.MapOptions{ShowIDs: true, Boundaries: true}))
	require.NoError(t, c.PlotHTML("/out/map.html"))

	png, err := fsys.ReadFile("/out/map.png")
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	html, err := fsys.ReadFile("/out/map.html")
	require.NoError(t, err)
	assert.Contains(t, string(html), "echarts")
}

func TestMeshWritesArtifacts(t *testing.T) {
	c, fsys := importedController(t)

	// The mock runner does not touch the filesystem, so plant the artifact
	// Sculpt would have written.
	require.NoError(t, fsys.WriteFile("/run/mesh.e.e.1.0", []byte("exodus"), 0644))

	runner := &mesher.MockRunner{Output: []byte("meshed")}
	err := c.Mesh(runner, MeshOptions{
		PSculptPath:   "/opt/sculpt/psculpt",
		NumProcessors: 2,
		ZElements:     3,
		Dir:           "/run",
	})
	require.NoError(t, err)

	call := runner.LastCall()
	require.NotNil(t, call)
	assert.Equal(t, "mpiexec", call.Name)

	assert.True(t, fsys.Exists("/run/voxels.spn"))
	assert.True(t, fsys.Exists("/run/input.i"))
	assert.True(t, fsys.Exists("/run/mesh.e"))
	assert.False(t, fsys.Exists("/run/mesh.e.e.1.0"))
	assert.Contains(t, c.Operations(), "mesh z=3 procs=2")
}

func TestRecordRoundTrip(t *testing.T) {
	c, _ := importedController(t)
	_, err := c.Fill(1)
	require.NoError(t, err)

	db, err := store.NewDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer db.Close()

	rs := store.NewRunStore(db.DB)
	id, err := c.Record(rs)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := rs.GetRun(id)
	require.NoError(t, err)
	assert.Equal(t, "/maps/two.csv", run.SourcePath)
	assert.Equal(t, 4, run.Cols)
	assert.Equal(t, 4, run.Rows)
	assert.Equal(t, 2, run.GrainCount)
	assert.Equal(t, 0, run.VoidCount)
	assert.Equal(t, []string{"fill iters=1"}, run.Operations)

	grains, err := rs.GrainsForRun(id)
	require.NoError(t, err)
	require.Len(t, grains, 2)
	assert.Equal(t, 1, grains[0].GrainID)
	assert.Equal(t, 2, grains[1].GrainID)
}
