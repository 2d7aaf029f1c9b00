package plot

import (
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/microtex-data/grainmesh/internal/ebsd"
	"github.com/microtex-data/grainmesh/internal/fsutil"
)

// viridisRamp colours the grain id scale in the interactive map.
var viridisRamp = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// WriteGrainMapHTML renders the grid as a standalone interactive heatmap.
// Each cell is coloured by grain id; hovering reports (col, row, id).
func WriteGrainMapHTML(fsys fsutil.FileSystem, path string, g *ebsd.Grid) error {
	hm, err := grainHeatmap(g)
	if err != nil {
		return err
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("save grain heatmap: %w", err)
	}
	if err := hm.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render grain heatmap: %w", err)
	}
	return f.Close()
}

// grainHeatmap builds the chart. The y axis is a category axis with row 0
// at the top, matching the raster orientation of the map.
func grainHeatmap(g *ebsd.Grid) (*charts.HeatMap, error) {
	if g == nil || g.Rows == 0 || g.Cols == 0 {
		return nil, fmt.Errorf("%w: cannot plot an empty grid", ebsd.ErrInput)
	}

	cols := make([]string, g.Cols)
	for c := range cols {
		cols[c] = strconv.Itoa(c)
	}
	// Category index 0 sits at the bottom of the chart, so the row labels
	// count down from the top.
	rows := make([]string, g.Rows)
	for i := range rows {
		rows[i] = strconv.Itoa(g.Rows - 1 - i)
	}

	data := make([]opts.HeatMapData, 0, g.Rows*g.Cols)
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			cell := g.At(row, col)
			if cell.Void() {
				continue
			}
			data = append(data, opts.HeatMapData{Value: []interface{}{col, g.Rows - 1 - row, cell.GrainID}})
		}
	}

	maxID := g.MaxGrainID()
	if maxID == 0 {
		maxID = 1
	}

	height := 900 * g.Rows / g.Cols
	if height < 300 {
		height = 300
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Grain Map", Width: "900px", Height: fmt.Sprintf("%dpx", height)}),
		charts.WithTitleOpts(opts.Title{Title: "Grain Map", Subtitle: fmt.Sprintf("%d x %d cells, step=%g um", g.Cols, g.Rows, g.Lattice.Step)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Name: "col"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Name: "row", Data: rows}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxID),
			InRange:    &opts.VisualMapInRange{Color: viridisRamp},
		}),
	)
	hm.SetXAxis(cols).AddSeries("grains", data)
	return hm, nil
}
