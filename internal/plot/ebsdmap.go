package plot

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/fsutil"
)

// MapOptions controls how a grain map is rendered.
type MapOptions struct {
	// Direction is the sample axis for IPF colouring.
	Direction Direction
	// CellPixels is the square pixel block drawn per cell.
	CellPixels int
	// ShowIDs draws each grain id at its centroid.
	ShowIDs bool
	// Boundaries darkens edges between cells of different grains.
	Boundaries bool
}

var (
	voidColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	boundaryColor = color.RGBA{A: 255}
)

// RenderImage rasterises the grid with row 0 at the top of the image, the
// way the map reads on the instrument. Void cells come out white.
func RenderImage(g *ebsd.Grid, opts MapOptions) *image.RGBA {
	px := opts.CellPixels
	if px < 1 {
		px = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, g.Cols*px, g.Rows*px))

	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			cell := g.At(row, col)
			c := voidColor
			if !cell.Void() {
				c = EulerToRGB(cell.Orientation, opts.Direction)
			}
			for y := row * px; y < (row+1)*px; y++ {
				for x := col * px; x < (col+1)*px; x++ {
					img.SetRGBA(x, y, c)
				}
			}
		}
	}

	if opts.Boundaries {
		drawBoundaries(img, g, px)
	}
	return img
}

// drawBoundaries paints the shared edge black wherever two neighboring
// cells belong to different grains.
func drawBoundaries(img *image.RGBA, g *ebsd.Grid, px int) {
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			id := g.At(row, col).GrainID
			if col+1 < g.Cols && g.At(row, col+1).GrainID != id {
				x := (col+1)*px - 1
				for y := row * px; y < (row+1)*px; y++ {
					img.SetRGBA(x, y, boundaryColor)
				}
			}
			if row+1 < g.Rows && g.At(row+1, col).GrainID != id {
				y := (row+1)*px - 1
				for x := col * px; x < (col+1)*px; x++ {
					img.SetRGBA(x, y, boundaryColor)
				}
			}
		}
	}
}

// WriteMapPNG plots the grain map with micron axes and saves it as a PNG.
// When opts.ShowIDs is set and reg is non-nil, grain ids are printed at
// their centroids.
func WriteMapPNG(fsys fsutil.FileSystem, path string, g *ebsd.Grid, reg *ebsd.Registry, opts MapOptions) error {
	if g == nil || g.Rows == 0 || g.Cols == 0 {
		return fmt.Errorf("%w: cannot plot an empty grid", ebsd.ErrInput)
	}
	if g.Lattice.Step <= 0 {
		return fmt.Errorf("%w: grid step %g must be > 0", ebsd.ErrInput, g.Lattice.Step)
	}

	step := g.Lattice.Step
	width := float64(g.Cols) * step
	height := float64(g.Rows) * step

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Grain map, IPF-%s", opts.Direction)
	p.X.Label.Text = "x (um)"
	p.Y.Label.Text = "y (um)"

	img := plotter.NewImage(RenderImage(g, opts), 0, 0, width, height)
	p.Add(img)

	if opts.ShowIDs && reg != nil {
		labels, err := grainLabels(g, reg, step, height)
		if err != nil {
			return fmt.Errorf("label grain map: %w", err)
		}
		p.Add(labels)
	}

	w := 10 * vg.Inch
	h := vg.Length(height/width) * 10 * vg.Inch
	wt, err := p.WriterTo(w, h, "png")
	if err != nil {
		return fmt.Errorf("render grain map: %w", err)
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("save grain map: %w", err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("save grain map: %w", err)
	}
	return f.Close()
}

// grainLabels builds centered id labels at grain centroids. The raster has
// row 0 at the top so centroid rows flip onto the micron y axis.
func grainLabels(g *ebsd.Grid, reg *ebsd.Registry, step, height float64) (*plotter.Labels, error) {
	ids := reg.IDs()
	xyl := plotter.XYLabels{}
	for _, id := range ids {
		if id == ebsd.VoidGrainID {
			continue
		}
		row, col, ok := reg.Centroid(g, id)
		if !ok {
			continue
		}
		xyl.XYs = append(xyl.XYs, plotter.XY{
			X: (col + 0.5) * step,
			Y: height - (row+0.5)*step,
		})
		xyl.Labels = append(xyl.Labels, strconv.Itoa(id))
	}

	labels, err := plotter.NewLabels(xyl)
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}
	return labels, nil
}
