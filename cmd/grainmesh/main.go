// Package main converts a digitized EBSD map into cleaned exports, grain map
// plots and a simulation-ready voxel mesh.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/microtex-data/grainmesh/internal/config"
	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/ebsdio"
	"github.com/microtex-data/grainmesh/internal/fsutil"
	"github.com/microtex-data/grainmesh/internal/pipeline"
	"github.com/microtex-data/grainmesh/internal/plot"
	"github.com/microtex-data/grainmesh/internal/store"
	"github.com/microtex-data/grainmesh/internal/timeutil"
	"github.com/microtex-data/grainmesh/internal/version"
)

// Config holds the parsed command line.
type Config struct {
	Input      string
	Step       float64
	Degrees    bool
	TuningPath string

	ColX    string
	ColY    string
	ColID   string
	ColPhi1 string
	ColPhi  string
	ColPhi2 string

	ResampleFactor float64
	Redefine       string
	RemoveGrains   float64
	FillIters      int
	CleanIters     int
	SmoothIters    int
	GripElements   int

	OutDir         string
	Stamp          bool
	Title          string
	ExportElements bool
	ExportGrains   bool
	ExportBounds   bool
	PlotPNG        bool
	PlotHTML       bool
	WriteSPN       bool
	IPFDirection   string
	ShowIDs        bool
	Boundaries     bool

	PSculptPath string
	ZElements   int
	Processors  int

	DBPath string

	ShowVersion bool
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Println(version.String())
		return
	}

	if cfg.Input == "" {
		log.Fatal("an input map file is required (-input)")
	}

	if err := run(cfg); err != nil {
		log.Fatalf("grainmesh: %v", err)
	}
}

func parseFlags() Config {
	cfg := Config{}

	flag.StringVar(&cfg.Input, "input", "", "Path to the EBSD map CSV")
	flag.Float64Var(&cfg.Step, "step", 0, "Pixel spacing in microns (0 = infer from coordinates)")
	flag.BoolVar(&cfg.Degrees, "degrees", true, "Treat map and export angles as degrees")
	flag.StringVar(&cfg.TuningPath, "config", "", "Path to a tuning config JSON")

	flag.StringVar(&cfg.ColX, "col-x", "", "Column name for x (default \"x\")")
	flag.StringVar(&cfg.ColY, "col-y", "", "Column name for y (default \"y\")")
	flag.StringVar(&cfg.ColID, "col-id", "", "Column name for the grain id (default \"grain_id\")")
	flag.StringVar(&cfg.ColPhi1, "col-phi1", "", "Column name for phi_1 (default \"phi_1\")")
	flag.StringVar(&cfg.ColPhi, "col-phi", "", "Column name for Phi (default \"Phi\")")
	flag.StringVar(&cfg.ColPhi2, "col-phi2", "", "Column name for phi_2 (default \"phi_2\")")

	flag.Float64Var(&cfg.ResampleFactor, "resample", 0, "Resample step factor (0 = skip; >1 coarsens, <1 refines)")
	flag.StringVar(&cfg.Redefine, "redefine", "", "Crop window as xmin,xmax,ymin,ymax in microns")
	flag.Float64Var(&cfg.RemoveGrains, "remove-grains", 0, "Remove grains below this area in square microns (0 = skip)")
	flag.IntVar(&cfg.FillIters, "fill", 0, "Void fill iterations")
	flag.IntVar(&cfg.CleanIters, "clean", 0, "Majority clean iterations")
	flag.IntVar(&cfg.SmoothIters, "smooth", 0, "Boundary smooth iterations")
	flag.IntVar(&cfg.GripElements, "grips", 0, "Grip columns to append on each side")

	flag.StringVar(&cfg.OutDir, "out", "results", "Output directory")
	flag.BoolVar(&cfg.Stamp, "stamp", false, "Write into a timestamped run directory under -out")
	flag.StringVar(&cfg.Title, "title", "", "Run title appended to the stamped directory name")
	flag.BoolVar(&cfg.ExportElements, "export-elements", false, "Write elements.csv")
	flag.BoolVar(&cfg.ExportGrains, "export-grains", false, "Write grains.csv")
	flag.BoolVar(&cfg.ExportBounds, "export-bounds", false, "Write bounds.csv")
	flag.BoolVar(&cfg.PlotPNG, "plot", false, "Write map.png")
	flag.BoolVar(&cfg.PlotHTML, "html", false, "Write map.html")
	flag.BoolVar(&cfg.WriteSPN, "spn", false, "Write voxels.spn")
	flag.StringVar(&cfg.IPFDirection, "ipf", "x", "IPF colouring axis: x, y or z")
	flag.BoolVar(&cfg.ShowIDs, "ids", false, "Label grain ids on the PNG map")
	flag.BoolVar(&cfg.Boundaries, "boundaries", false, "Draw grain boundaries on the PNG map")

	flag.StringVar(&cfg.PSculptPath, "psculpt", "", "Path to the psculpt executable (empty = no meshing)")
	flag.IntVar(&cfg.ZElements, "z-elements", 1, "Extruded mesh thickness in voxels")
	flag.IntVar(&cfg.Processors, "procs", 1, "MPI processes for the mesh generator")

	flag.StringVar(&cfg.DBPath, "db", "", "SQLite file to record the run in (empty = no record)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print the version and exit")

	flag.Parse()
	return cfg
}

func run(cfg Config) error {
	tuning := config.EmptyTuningConfig()
	if cfg.TuningPath != "" {
		loaded, err := config.LoadTuningConfig(cfg.TuningPath)
		if err != nil {
			return err
		}
		tuning = loaded
	}

	fsys := fsutil.OS{}
	if err := fsys.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if cfg.Stamp {
		dir, err := fsutil.TimestampedDir(fsys, timeutil.RealClock{}, cfg.OutDir, cfg.Title)
		if err != nil {
			return err
		}
		cfg.OutDir = dir
		log.Printf("grainmesh: writing run output to %s", dir)
	}

	ctrl := pipeline.New(fsys, tuning)
	err := ctrl.Import(cfg.Input, ebsdio.ImportOptions{
		Headers: ebsdio.HeaderMap{
			X: cfg.ColX, Y: cfg.ColY, GrainID: cfg.ColID,
			Phi1: cfg.ColPhi1, Phi: cfg.ColPhi, Phi2: cfg.ColPhi2,
		},
		StepSize: cfg.Step,
		Degrees:  cfg.Degrees,
	})
	if err != nil {
		return err
	}
	g := ctrl.Grid()
	log.Printf("grainmesh: imported %s: %dx%d cells, %d grains, %d voids, step=%g",
		cfg.Input, g.Cols, g.Rows, ctrl.Registry().Len(), g.VoidCount(), g.Lattice.Step)

	if err := applyOperations(ctrl, cfg); err != nil {
		return err
	}

	if err := writeOutputs(ctrl, cfg); err != nil {
		return err
	}

	if cfg.DBPath != "" {
		if err := recordRun(ctrl, cfg.DBPath); err != nil {
			return err
		}
	}

	s, err := ctrl.Summarize()
	if err != nil {
		return err
	}
	g = ctrl.Grid()
	log.Printf("grainmesh: done: %dx%d cells, %d grains, total area %g, mean %g, voids %d",
		g.Cols, g.Rows, s.Grains, s.TotalArea, s.MeanArea, g.VoidCount())
	return nil
}

// applyOperations runs the requested grid operations in the documented
// order: resample, redefine, remove-grains, fill, clean, smooth, grips.
func applyOperations(ctrl *pipeline.Controller, cfg Config) error {
	if cfg.ResampleFactor > 0 {
		if err := ctrl.Resample(cfg.ResampleFactor); err != nil {
			return err
		}
		g := ctrl.Grid()
		log.Printf("grainmesh: resampled by %g: now %dx%d at step=%g",
			cfg.ResampleFactor, g.Cols, g.Rows, g.Lattice.Step)
	}
	if cfg.Redefine != "" {
		want, err := parseBounds(cfg.Redefine)
		if err != nil {
			return err
		}
		if err := ctrl.RedefineDomain(want); err != nil {
			return err
		}
		g := ctrl.Grid()
		log.Printf("grainmesh: redefined domain: now %dx%d", g.Cols, g.Rows)
	}
	if cfg.RemoveGrains > 0 {
		removed, err := ctrl.RemoveGrains(cfg.RemoveGrains)
		if err != nil {
			return err
		}
		log.Printf("grainmesh: removed %d grains below %g", removed, cfg.RemoveGrains)
	}
	if cfg.FillIters > 0 {
		remaining, err := ctrl.Fill(cfg.FillIters)
		if err != nil {
			return err
		}
		log.Printf("grainmesh: filled voids, %d remaining", remaining)
	}
	if cfg.CleanIters > 0 {
		changed, err := ctrl.Clean(cfg.CleanIters)
		if err != nil {
			return err
		}
		log.Printf("grainmesh: cleaned %d cells", changed)
	}
	if cfg.SmoothIters > 0 {
		changed, err := ctrl.Smooth(cfg.SmoothIters)
		if err != nil {
			return err
		}
		log.Printf("grainmesh: smoothed %d cells", changed)
	}
	if cfg.GripElements > 0 {
		if err := ctrl.AddGrips(cfg.GripElements); err != nil {
			return err
		}
		ids := ctrl.GripIDs()
		log.Printf("grainmesh: added grips: left id %d, right id %d", ids.Left, ids.Right)
	}
	return nil
}

func writeOutputs(ctrl *pipeline.Controller, cfg Config) error {
	out := func(name string) string { return filepath.Join(cfg.OutDir, name) }

	if cfg.ExportElements {
		if err := ctrl.ExportElements(out("elements.csv"), cfg.Degrees); err != nil {
			return err
		}
	}
	if cfg.ExportGrains {
		if err := ctrl.ExportGrains(out("grains.csv"), cfg.Degrees); err != nil {
			return err
		}
	}
	if cfg.ExportBounds {
		if err := ctrl.ExportBounds(out("bounds.csv")); err != nil {
			return err
		}
	}
	if cfg.PlotPNG {
		dir, err := plot.ParseDirection(cfg.IPFDirection)
		if err != nil {
			return err
		}
		opts := plot.MapOptions{Direction: dir, ShowIDs: cfg.ShowIDs, Boundaries: cfg.Boundaries}
		if err := ctrl.PlotPNG(out("map.png"), opts); err != nil {
			return err
		}
	}
	if cfg.PlotHTML {
		if err := ctrl.PlotHTML(out("map.html")); err != nil {
			return err
		}
	}

	if cfg.PSculptPath != "" {
		err := ctrl.Mesh(nil, pipeline.MeshOptions{
			PSculptPath:   cfg.PSculptPath,
			NumProcessors: cfg.Processors,
			ZElements:     cfg.ZElements,
			Dir:           cfg.OutDir,
		})
		if err != nil {
			return err
		}
		log.Printf("grainmesh: mesh written to %s", out("mesh.e"))
	} else if cfg.WriteSPN {
		if err := ctrl.WriteSPN(out("voxels.spn"), cfg.ZElements); err != nil {
			return err
		}
	}
	return nil
}

func recordRun(ctrl *pipeline.Controller, dbPath string) error {
	db, err := store.NewDB(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := ctrl.Record(store.NewRunStore(db.DB))
	if err != nil {
		return err
	}
	log.Printf("grainmesh: recorded run %s", id)
	return nil
}

// parseBounds reads "xmin,xmax,ymin,ymax".
func parseBounds(s string) (ebsd.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return ebsd.Bounds{}, fmt.Errorf("%w: redefine wants xmin,xmax,ymin,ymax, got %q", ebsd.ErrInput, s)
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return ebsd.Bounds{}, fmt.Errorf("%w: redefine bound %q: %v", ebsd.ErrInput, p, err)
		}
		vals[i] = v
	}
	return ebsd.Bounds{XMin: vals[0], XMax: vals[1], YMin: vals[2], YMax: vals[3]}, nil
}
