// Package mesher drives the external Sculpt hex mesh generator over an
// exported SPN voxel file.
package mesher

import (
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"strings"

	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/fsutil"
)

// Sculpt reads its settings from an input deck. The dimension and path
// fields vary per job; the mesh improvement and solver settings are fixed
// because adaptive meshing produces broken elements on grain maps.
const deckTemplate = `BEGIN SCULPT

    nelx = %d
    nely = %d
    nelz = %d
    scale = %v

    smooth = 3
    defeature = 1
    pillow_curves = true
    pillow_boundaries = true
    micro_shave = true

    opt_threshold = 0.7
    pillow_curve_layers = 3
    pillow_curve_thresh = 0.3

    laplacian_iters = 5
    max_opt_iters = 50

    input_spn = %s
    exodus_file = %s

END SCULPT
`

// Job describes one Sculpt invocation.
type Job struct {
	PSculptPath   string  // psculpt executable
	NumProcessors int     // MPI ranks
	Cols          int     // elements along x
	Rows          int     // elements along y
	ZElements     int     // extruded thickness in elements
	StepSize      float64 // element edge length
	SPNPath       string  // voxel file consumed by Sculpt
	InputPath     string  // input deck destination
	ExodusPath    string  // final mesh destination
}

func (j Job) validate() error {
	if j.PSculptPath == "" {
		return fmt.Errorf("%w: psculpt path not set", ebsd.ErrInput)
	}
	if j.NumProcessors < 1 {
		return fmt.Errorf("%w: num processors %d, need at least 1", ebsd.ErrInput, j.NumProcessors)
	}
	if j.ZElements < 1 {
		return fmt.Errorf("%w: z elements %d, need at least 1", ebsd.ErrInput, j.ZElements)
	}
	if j.Cols < 1 || j.Rows < 1 {
		return fmt.Errorf("%w: empty grid %dx%d", ebsd.ErrInput, j.Cols, j.Rows)
	}
	if j.StepSize <= 0 {
		return fmt.Errorf("%w: step size %v", ebsd.ErrInput, j.StepSize)
	}
	return nil
}

// Deck renders the Sculpt input deck for the job.
func (j Job) Deck() string {
	return fmt.Sprintf(deckTemplate, j.Cols, j.Rows, j.ZElements, j.StepSize, j.SPNPath, j.ExodusPath)
}

// Mesher runs Sculpt jobs.
type Mesher struct {
	fsys   fsutil.FileSystem
	runner Runner
}

// New returns a Mesher writing through fsys. A nil runner uses os/exec.
func New(fsys fsutil.FileSystem, runner Runner) *Mesher {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Mesher{fsys: fsys, runner: runner}
}

// Mesh writes the input deck and runs psculpt under mpiexec, blocking until
// the generator exits. Sculpt names its output <exodus_file>.e.1.0; on
// success the file is moved to the requested path. A non-zero exit is
// reported as an ExternalToolError carrying the captured output.
func (m *Mesher) Mesh(job Job) error {
	if err := job.validate(); err != nil {
		return err
	}
	if err := m.fsys.WriteFile(job.InputPath, []byte(job.Deck()), 0o644); err != nil {
		return fmt.Errorf("write input deck: %w", err)
	}

	procs := strconv.Itoa(job.NumProcessors)
	args := []string{"-n", procs, job.PSculptPath, "-j", procs, "-i", job.InputPath}
	log.Printf("mesher: mpiexec %s", strings.Join(args, " "))
	out, err := m.runner.Run("mpiexec", args...)
	if err != nil {
		return &ebsd.ExternalToolError{
			Tool:     "psculpt",
			ExitCode: exitCode(err),
			Output:   string(out),
		}
	}
	return m.fsys.Rename(job.ExodusPath+".e.1.0", job.ExodusPath)
}

// exitCode extracts the process exit status, or -1 if the command never ran.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
