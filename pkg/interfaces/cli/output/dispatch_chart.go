package output

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/vsinha/wareopt/pkg/application/dto"
)

// DispatchChart lays out a lane-by-slot timeline of planned vehicles
type DispatchChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	RowHeight    int
	FirstSlot    int
	LastSlot     int
}

// DispatchCell is one lane and slot with at least one vehicle
type DispatchCell struct {
	Lane   string
	Record dto.DispatchRecord
	X      int
	Width  int
	Color  string
}

// NewDispatchChart sizes a chart for the result's dispatches
func NewDispatchChart(result *dto.PlanResult) *DispatchChart {
	if len(result.Dispatches) == 0 {
		return &DispatchChart{
			Width:        800,
			Height:       200,
			MarginLeft:   150,
			MarginTop:    50,
			MarginRight:  50,
			MarginBottom: 50,
			RowHeight:    25,
		}
	}

	first, last := int(result.Dispatches[0].SlotIndex), int(result.Dispatches[0].SlotIndex)
	lanes := make(map[string]bool)
	for _, d := range result.Dispatches {
		first = min(first, int(d.SlotIndex))
		last = max(last, int(d.SlotIndex))
		lanes[laneName(d)] = true
	}

	rowHeight := 30
	return &DispatchChart{
		Width:        1200,
		Height:       len(lanes)*rowHeight + 140,
		MarginLeft:   200,
		MarginTop:    60,
		MarginRight:  100,
		MarginBottom: 80,
		RowHeight:    rowHeight,
		FirstSlot:    first,
		LastSlot:     last,
	}
}

func laneName(d dto.DispatchRecord) string {
	return fmt.Sprintf("%s → %s", d.Group, d.Facility)
}

// GenerateSVG renders the chart
func (dc *DispatchChart) GenerateSVG(result *dto.PlanResult) string {
	if len(result.Dispatches) == 0 {
		return dc.generateEmptyChart()
	}

	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, dc.Width, dc.Height))
	svg.WriteString(`<defs><style>`)
	svg.WriteString(`.lane-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.slot-label { font-family: Arial, sans-serif; font-size: 10px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.dispatch-cell { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.cell-text { font-family: Arial, sans-serif; font-size: 9px; fill: white; }`)
	svg.WriteString(`</style></defs>`)

	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, dc.Width, dc.Height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="30" class="title" text-anchor="middle">Inbound Dispatches - %s</text>`,
		dc.Width/2, html.EscapeString(result.ScenarioID)))

	rows := dc.organizeCells(dc.createCells(result.Dispatches))
	dc.drawSlotAxis(&svg, result)
	dc.drawLaneRows(&svg, rows)
	dc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (dc *DispatchChart) slotWidth() int {
	slots := dc.LastSlot - dc.FirstSlot + 1
	return max(1, (dc.Width-dc.MarginLeft-dc.MarginRight)/slots)
}

func (dc *DispatchChart) slotX(slot int) int {
	return dc.MarginLeft + (slot-dc.FirstSlot)*dc.slotWidth()
}

func (dc *DispatchChart) createCells(records []dto.DispatchRecord) []DispatchCell {
	cells := make([]DispatchCell, 0, len(records))
	for _, d := range records {
		cells = append(cells, DispatchCell{
			Lane:   laneName(d),
			Record: d,
			X:      dc.slotX(int(d.SlotIndex)) + 1,
			Width:  max(2, dc.slotWidth()-2),
			Color:  dc.getCellColor(d),
		})
	}
	return cells
}

func (dc *DispatchChart) organizeCells(cells []DispatchCell) map[string][]DispatchCell {
	rows := make(map[string][]DispatchCell)
	for _, c := range cells {
		rows[c.Lane] = append(rows[c.Lane], c)
	}
	return rows
}

func (dc *DispatchChart) drawSlotAxis(svg *strings.Builder, result *dto.PlanResult) {
	slots := make(map[int]string)
	for _, d := range result.Dispatches {
		slots[int(d.SlotIndex)] = d.Slot.String()
	}

	// label every slot when they fit, otherwise only slots with dispatches
	every := dc.slotWidth() >= 40
	axisY := dc.Height - dc.MarginBottom
	for s := dc.FirstSlot; s <= dc.LastSlot; s++ {
		label, ok := slots[s]
		if !ok && !every {
			continue
		}
		if !ok {
			label = fmt.Sprintf("#%d", s)
		}
		x := dc.slotX(s) + dc.slotWidth()/2
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="slot-label" text-anchor="middle">%s</text>`,
			x, axisY+15, label))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			dc.slotX(s), dc.MarginTop, dc.slotX(s), axisY))
	}

	svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
		dc.MarginLeft, axisY, dc.Width-dc.MarginRight, axisY))
}

func (dc *DispatchChart) drawLaneRows(svg *strings.Builder, rows map[string][]DispatchCell) {
	lanes := make([]string, 0, len(rows))
	for lane := range rows {
		lanes = append(lanes, lane)
	}
	sort.Strings(lanes)

	for i, lane := range lanes {
		y := dc.MarginTop + i*dc.RowHeight

		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="lane-label" text-anchor="end">%s</text>`,
			dc.MarginLeft-15, y+dc.RowHeight/2+4, html.EscapeString(lane)))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" class="grid-line"/>`,
			dc.MarginLeft, y+dc.RowHeight, dc.Width-dc.MarginRight, y+dc.RowHeight))

		for _, c := range rows[lane] {
			dc.drawCell(svg, c, y)
		}
	}
}

func (dc *DispatchChart) drawCell(svg *strings.Builder, c DispatchCell, rowY int) {
	height := dc.RowHeight - 4
	y := rowY + 2

	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="%s" class="dispatch-cell">`,
		c.X, y, c.Width, height, c.Color))
	svg.WriteString(fmt.Sprintf(`<title>%s %s: %d vehicle(s), weight %.1f%%, volume %.1f%%, binding %s</title></rect>`,
		html.EscapeString(c.Lane), c.Record.Slot, c.Record.Vehicles,
		c.Record.WeightUtilization, c.Record.VolumeUtilization, c.Record.Binding))

	if c.Width > 20 {
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="cell-text" text-anchor="middle">%d</text>`,
			c.X+c.Width/2, y+height/2+3, c.Record.Vehicles))
	}
}

func (dc *DispatchChart) drawLegend(svg *strings.Builder) {
	legendX := dc.Width - dc.MarginRight - 200
	legendY := dc.Height - dc.MarginBottom + 30

	items := []struct {
		color string
		label string
	}{
		{"#4CAF50", "Meets minimum fill"},
		{"#FF9800", "Below minimum fill"},
	}
	for i, item := range items {
		x := legendX + i*110
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="8" fill="%s"/>`, x, legendY, item.color))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="slot-label">%s</text>`, x+16, legendY+8, item.label))
	}
}

func (dc *DispatchChart) getCellColor(d dto.DispatchRecord) string {
	if d.Shortfall {
		return "#FF9800"
	}
	return "#4CAF50"
}

func (dc *DispatchChart) generateEmptyChart() string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">No Dispatches Planned</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, dc.Width, dc.Height, dc.Width, dc.Height, dc.Width/2, dc.Height/2)
}
