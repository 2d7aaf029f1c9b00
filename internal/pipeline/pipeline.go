// Package pipeline sequences grid operations over one imported map and fans
// the result out to exports, plots, the mesh generator and the run store.
package pipeline

import (
	"fmt"
	"path/filepath"

	"github.com/microtex-data/grainmesh/internal/config"
	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/ebsdio"
	"github.com/microtex-data/grainmesh/internal/fsutil"
	"github.com/microtex-data/grainmesh/internal/mesher"
	"github.com/microtex-data/grainmesh/internal/plot"
	"github.com/microtex-data/grainmesh/internal/store"
)

// Controller owns the working grid and its registry. Operations mutate or
// replace the grid, verify registry consistency, and append to the run's
// operation log. Every method except Import demands a prior import.
//
// The controller is single-threaded by design: one map, one operation at a
// time, matching the batch model of the processing run.
type Controller struct {
	fsys fsutil.FileSystem
	cfg  *config.TuningConfig

	grid   *ebsd.Grid
	reg    *ebsd.Registry
	source string
	ops    []string
	grips  ebsd.GripIDs
}

// New builds a controller over the given filesystem and tuning config. A nil
// filesystem uses the real one; a nil config uses all defaults.
func New(fsys fsutil.FileSystem, cfg *config.TuningConfig) *Controller {
	if fsys == nil {
		fsys = fsutil.OS{}
	}
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	return &Controller{fsys: fsys, cfg: cfg}
}

func (c *Controller) ready() error {
	if c.grid == nil {
		return fmt.Errorf("%w: no map imported", ebsd.ErrState)
	}
	return nil
}

func (c *Controller) passCfg() ebsd.PassConfig {
	return ebsd.PassConfig{Conn: c.cfg.GetConnectivity()}
}

// record logs a completed operation for the run store.
func (c *Controller) record(format string, args ...interface{}) {
	c.ops = append(c.ops, fmt.Sprintf(format, args...))
}

// verify cross-checks the registry against the grid after a mutation. A
// mismatch is an engine bug; the controller reports it and never repairs.
func (c *Controller) verify() error {
	return c.reg.Verify(c.grid)
}

// Import parses the map file and builds the working grid and registry. Any
// previously imported state is replaced and the operation log reset. If the
// options carry no spacing tolerance the configured one applies.
func (c *Controller) Import(path string, opts ebsdio.ImportOptions) error {
	if opts.SpacingTolerance == 0 {
		opts.SpacingTolerance = c.cfg.GetSpacingTolerance()
	}
	g, err := ebsdio.ReadMap(c.fsys, path, opts)
	if err != nil {
		return err
	}
	c.grid = g
	c.reg = ebsd.BuildRegistry(g)
	c.source = path
	c.ops = nil
	c.grips = ebsd.GripIDs{}
	return nil
}

// Grid exposes the working grid, nil before import.
func (c *Controller) Grid() *ebsd.Grid { return c.grid }

// Registry exposes the working registry, nil before import.
func (c *Controller) Registry() *ebsd.Registry { return c.reg }

// GripIDs returns the reserved grain ids of the last AddGrips call. Both are
// zero when no grip material exists.
func (c *Controller) GripIDs() ebsd.GripIDs { return c.grips }

// Operations returns the log of completed operations, oldest first.
func (c *Controller) Operations() []string {
	out := make([]string, len(c.ops))
	copy(out, c.ops)
	return out
}

// Bounds reports the non-void extent of the working grid. ok is false when
// every cell is void.
func (c *Controller) Bounds() (b ebsd.Bounds, ok bool, err error) {
	if err := c.ready(); err != nil {
		return ebsd.Bounds{}, false, err
	}
	b, ok = c.grid.Bounds()
	return b, ok, nil
}

// Summarize reports the grain-area distribution of the working registry.
func (c *Controller) Summarize() (ebsd.AreaSummary, error) {
	if err := c.ready(); err != nil {
		return ebsd.AreaSummary{}, err
	}
	return ebsd.Summarize(c.reg), nil
}

// Clean runs the strict-majority reassignment pass and returns the number of
// cell switches.
func (c *Controller) Clean(iterations int) (changed int, err error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	changed, err = ebsd.Clean(c.grid, c.reg, iterations, c.passCfg())
	if err != nil {
		return 0, err
	}
	if err := c.verify(); err != nil {
		return 0, err
	}
	c.record("clean iters=%d", iterations)
	return changed, nil
}

// Smooth runs the plurality boundary-smoothing pass and returns the number
// of cell switches.
func (c *Controller) Smooth(iterations int) (changed int, err error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	changed, err = ebsd.Smooth(c.grid, c.reg, iterations, c.passCfg())
	if err != nil {
		return 0, err
	}
	if err := c.verify(); err != nil {
		return 0, err
	}
	c.record("smooth iters=%d", iterations)
	return changed, nil
}

// Fill adopts void cells into neighboring grains and returns how many voids
// remain after the given iteration count.
func (c *Controller) Fill(iterations int) (remaining int, err error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	remaining, err = ebsd.Fill(c.grid, c.reg, iterations, c.passCfg())
	if err != nil {
		return 0, err
	}
	if err := c.verify(); err != nil {
		return 0, err
	}
	c.record("fill iters=%d", iterations)
	return remaining, nil
}

// RemoveGrains dissolves grains below the area threshold and returns how
// many were removed.
func (c *Controller) RemoveGrains(threshold float64) (removed int, err error) {
	if err := c.ready(); err != nil {
		return 0, err
	}
	removed, err = ebsd.RemoveGrains(c.grid, c.reg, threshold, c.passCfg())
	if err != nil {
		return 0, err
	}
	if err := c.verify(); err != nil {
		return 0, err
	}
	c.record("remove-grains threshold=%g", threshold)
	return removed, nil
}

// Resample rescales the grid by the given step factor and rebuilds the
// registry.
func (c *Controller) Resample(factor float64) error {
	if err := c.ready(); err != nil {
		return err
	}
	g, err := ebsd.Resample(c.grid, factor)
	if err != nil {
		return err
	}
	c.grid = g
	c.reg = ebsd.BuildRegistry(g)
	if err := c.verify(); err != nil {
		return err
	}
	c.record("resample factor=%g", factor)
	return nil
}

// RedefineDomain crops the grid to the requested physical window and
// rebuilds the registry.
func (c *Controller) RedefineDomain(want ebsd.Bounds) error {
	if err := c.ready(); err != nil {
		return err
	}
	g, err := ebsd.RedefineDomain(c.grid, want)
	if err != nil {
		return err
	}
	c.grid = g
	c.reg = ebsd.BuildRegistry(g)
	if err := c.verify(); err != nil {
		return err
	}
	c.record("redefine x=[%g,%g] y=[%g,%g]", want.XMin, want.XMax, want.YMin, want.YMax)
	return nil
}

// AddGrips appends grip columns to both vertical edges using the configured
// grip orientation and rebuilds the registry.
func (c *Controller) AddGrips(numElements int) error {
	if err := c.ready(); err != nil {
		return err
	}
	g, ids, err := ebsd.AddGrips(c.grid, numElements, c.cfg.GetGripOrientation())
	if err != nil {
		return err
	}
	c.grid = g
	c.reg = ebsd.BuildRegistry(g)
	c.grips = ids
	if err := c.verify(); err != nil {
		return err
	}
	c.record("grips n=%d", numElements)
	return nil
}

// ExportElements writes the per-cell CSV.
func (c *Controller) ExportElements(path string, degrees bool) error {
	if err := c.ready(); err != nil {
		return err
	}
	return ebsdio.WriteElements(c.fsys, path, c.grid, degrees)
}

// ExportGrains writes the per-grain CSV with quaternion-mean orientations.
func (c *Controller) ExportGrains(path string, degrees bool) error {
	if err := c.ready(); err != nil {
		return err
	}
	return ebsdio.WriteGrains(c.fsys, path, c.grid, c.reg, degrees)
}

// ExportBounds writes the non-void bounds CSV.
func (c *Controller) ExportBounds(path string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return ebsdio.WriteBounds(c.fsys, path, c.grid)
}

// WriteSPN writes the dense voxel export, mapping void to the configured
// export id.
func (c *Controller) WriteSPN(path string, zElements int) error {
	if err := c.ready(); err != nil {
		return err
	}
	return ebsdio.WriteSPN(c.fsys, path, c.grid, zElements, c.cfg.GetVoidExportID())
}

// PlotPNG renders the IPF-coloured map. A zero CellPixels takes the
// configured default.
func (c *Controller) PlotPNG(path string, opts plot.MapOptions) error {
	if err := c.ready(); err != nil {
		return err
	}
	if opts.CellPixels == 0 {
		opts.CellPixels = c.cfg.GetPlotCellPixels()
	}
	return plot.WriteMapPNG(c.fsys, path, c.grid, c.reg, opts)
}

// PlotHTML renders the interactive grain map.
func (c *Controller) PlotHTML(path string) error {
	if err := c.ready(); err != nil {
		return err
	}
	return plot.WriteGrainMapHTML(c.fsys, path, c.grid)
}

// MeshOptions configures one mesh generator invocation.
type MeshOptions struct {
	// PSculptPath locates the psculpt executable.
	PSculptPath string
	// NumProcessors is the MPI process count.
	NumProcessors int
	// ZElements is the extruded thickness in voxels.
	ZElements int
	// Dir receives voxels.spn, input.i and mesh.e.
	Dir string
}

// Mesh exports the voxel file and drives the external mesh generator over
// it. The runner may be nil for a real invocation. On success Dir holds the
// final mesh.e artifact.
func (c *Controller) Mesh(runner mesher.Runner, opts MeshOptions) error {
	if err := c.ready(); err != nil {
		return err
	}
	spnPath := filepath.Join(opts.Dir, "voxels.spn")
	if err := c.WriteSPN(spnPath, opts.ZElements); err != nil {
		return err
	}
	job := mesher.Job{
		PSculptPath:   opts.PSculptPath,
		NumProcessors: opts.NumProcessors,
		Cols:          c.grid.Cols,
		Rows:          c.grid.Rows,
		ZElements:     opts.ZElements,
		StepSize:      c.grid.Lattice.Step,
		SPNPath:       spnPath,
		InputPath:     filepath.Join(opts.Dir, "input.i"),
		ExodusPath:    filepath.Join(opts.Dir, "mesh.e"),
	}
	if err := mesher.New(c.fsys, runner).Mesh(job); err != nil {
		return err
	}
	c.record("mesh z=%d procs=%d", opts.ZElements, opts.NumProcessors)
	return nil
}

// Record persists the run and its per-grain summaries and returns the run
// id.
func (c *Controller) Record(st *store.RunStore) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	run := &store.Run{
		SourcePath: c.source,
		StepSize:   c.grid.Lattice.Step,
		Cols:       c.grid.Cols,
		Rows:       c.grid.Rows,
		GrainCount: c.reg.Len(),
		VoidCount:  c.grid.VoidCount(),
		Operations: c.Operations(),
	}
	if err := st.InsertRun(run); err != nil {
		return "", err
	}

	ids := c.reg.IDs()
	grains := make([]store.GrainSummary, 0, len(ids))
	for _, id := range ids {
		grains = append(grains, store.GrainSummary{
			GrainID:     id,
			Cells:       c.reg.Count(id),
			Area:        c.reg.Area(id),
			Orientation: ebsdio.GrainOrientation(c.grid, c.reg, id),
		})
	}
	if err := st.InsertGrainSummaries(run.RunID, grains); err != nil {
		return "", err
	}
	return run.RunID, nil
}
