package render

import (
	"bytes"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/Freeeeeet/driver_availability/internal/model"
)

// Layout
const (
	imageWidth      = 980
	headerHeight    = 70
	leftLabelsWidth = 70
	legendHeight    = 50
	rowHeight       = 20
	dayWidth        = (imageWidth - leftLabelsWidth - 20) / totalDaysInWeek
	dayPaddingX     = 6
	cellRadius      = 4.0
	totalDaysInWeek = 7
)

var imageHeight = headerHeight + model.SlotsPerDay*rowHeight + legendHeight

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	textColor      = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 255}
	periodColor    = color.NRGBA{90, 90, 90, 255}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{220, 220, 220, 255}

	slotAvailableColor    = color.RGBA{133, 193, 85, 220}
	slotNotAvailableColor = color.RGBA{235, 120, 120, 220}
	slotConditionalColor  = color.RGBA{245, 200, 90, 230}
	slotTextColor         = color.RGBA{20, 24, 28, 230}
)

var weekdayShort = map[model.WeekdayKey]string{
	model.Monday:    "Mon",
	model.Tuesday:   "Tue",
	model.Wednesday: "Wed",
	model.Thursday:  "Thu",
	model.Friday:    "Fri",
	model.Saturday:  "Sat",
	model.Sunday:    "Sun",
}

// WeekImage draws the pattern as a 7 x 36 grid and encodes it as PNG.
func WeekImage(title string, pattern model.WeekPattern) ([]byte, error) {
	pattern = model.NormalizeWeekPattern(pattern)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	drawHeader(dc, title, pattern.SlotCount())
	drawTimeLabels(dc)
	for i, day := range model.WeekdayKeys {
		drawDay(dc, i, day, pattern[day])
	}
	drawPeriodLines(dc)
	drawLegend(dc)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rowY(slot int) float64 {
	return float64(headerHeight + (slot-model.MinSlot)*rowHeight)
}

func colX(dayIndex int) float64 {
	return float64(leftLabelsWidth + dayIndex*dayWidth)
}

func drawHeader(dc *gg.Context, title string, slots int) {
	dc.SetColor(textColor)
	dc.DrawStringAnchored(title, imageWidth/2, 18, 0.5, 0.5)
	dc.DrawStringAnchored(slotsLabel(slots), imageWidth/2, 36, 0.5, 0.5)

	for i, day := range model.WeekdayKeys {
		dc.DrawStringAnchored(weekdayShort[day], colX(i)+float64(dayWidth)/2, float64(headerHeight)-10, 0.5, 0.5)
	}
}

// drawTimeLabels labels every full hour.
func drawTimeLabels(dc *gg.Context) {
	dc.SetColor(hourLabelColor)
	for _, slot := range model.AllSlots() {
		if slot%2 != 0 {
			continue
		}
		t, _ := model.SlotToTime(slot)
		dc.DrawStringAnchored(t, float64(leftLabelsWidth)-8, rowY(slot)+rowHeight/2, 1, 0.5)
	}
}

func drawDay(dc *gg.Context, dayIndex int, day model.WeekdayKey, slots model.SlotStatuses) {
	x := colX(dayIndex)
	if dayIndex%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, float64(headerHeight), float64(dayWidth), float64(model.SlotsPerDay*rowHeight))
	dc.Fill()

	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)
	for _, slot := range model.AllSlots() {
		if slot%2 == 0 {
			dc.DrawLine(x, rowY(slot), x+float64(dayWidth), rowY(slot))
			dc.Stroke()
		}
	}

	for _, t := range slots.Times() {
		slot, err := model.TimeToSlot(t)
		if err != nil {
			continue
		}
		drawCell(dc, x, rowY(slot), slots[t], t)
	}
}

func drawCell(dc *gg.Context, x, y float64, status model.AvailabilityStatus, label string) {
	w := float64(dayWidth - dayPaddingX*2)
	dc.SetColor(statusColor(status))
	dc.DrawRoundedRectangle(x+dayPaddingX, y+1, w, rowHeight-2, cellRadius)
	dc.Fill()

	dc.SetColor(slotTextColor)
	dc.DrawStringAnchored(label, x+dayPaddingX+6, y+rowHeight/2, 0, 0.5)
}

// drawPeriodLines separates morning, afternoon and evening.
func drawPeriodLines(dc *gg.Context) {
	dc.SetColor(periodColor)
	dc.SetLineWidth(1.5)
	right := colX(totalDaysInWeek)
	for _, p := range model.Periods[1:] {
		slots, err := model.PeriodSlots(p)
		if err != nil || len(slots) == 0 {
			continue
		}
		first := slots[0]
		dc.DrawLine(float64(leftLabelsWidth), rowY(first), right, rowY(first))
		dc.Stroke()
	}
}

func drawLegend(dc *gg.Context) {
	items := []struct {
		label string
		clr   color.Color
	}{
		{"available", slotAvailableColor},
		{"not available", slotNotAvailableColor},
		{"conditional", slotConditionalColor},
	}

	x := float64(leftLabelsWidth)
	y := float64(imageHeight - legendHeight + 18)
	for _, item := range items {
		dc.SetColor(item.clr)
		dc.DrawRoundedRectangle(x, y, 20, 14, 3)
		dc.Fill()

		dc.SetColor(textColor)
		dc.DrawStringAnchored(item.label, x+28, y+7, 0, 0.5)
		x += 160
	}
}

func statusColor(status model.AvailabilityStatus) color.Color {
	switch status {
	case model.StatusNotAvailable:
		return slotNotAvailableColor
	case model.StatusConditional:
		return slotConditionalColor
	default:
		return slotAvailableColor
	}
}

func slotsLabel(n int) string {
	if n == 1 {
		return "1 slot"
	}
	return strconv.Itoa(n) + " slots"
}
