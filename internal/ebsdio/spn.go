package ebsdio

import (
	"bufio"
	"fmt"

	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/fsutil"
)

// DefaultVoidExportID is the grain id written for void cells in grid
// exports, chosen to stay clear of any measured id.
const DefaultVoidExportID = 100000

// WriteSPN exports the dense grain-id voxel grid the mesh generator
// consumes: x-major, then y, each column replicated zElements times along z,
// one x-column per line. Void cells carry voidID (DefaultVoidExportID when
// zero or negative).
func WriteSPN(fsys fsutil.FileSystem, path string, g *ebsd.Grid, zElements, voidID int) error {
	if zElements < 1 {
		return fmt.Errorf("%w: z elements %d must be >= 1", ebsd.ErrInput, zElements)
	}
	if voidID <= 0 {
		voidID = DefaultVoidExportID
	}
	w, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create spn export: %w", err)
	}
	defer w.Close()

	bw := bufio.NewWriter(w)
	for col := 0; col < g.Cols; col++ {
		for row := 0; row < g.Rows; row++ {
			id := g.At(row, col).GrainID
			if id == ebsd.VoidGrainID {
				id = voidID
			}
			for z := 0; z < zElements; z++ {
				if row > 0 || z > 0 {
					if err := bw.WriteByte(' '); err != nil {
						return err
					}
				}
				if _, err := fmt.Fprintf(bw, "%d", id); err != nil {
					return err
				}
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
