// Command week_preview renders a template's week grid to a PNG file, the same
// image the bot sends on a template card.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/Freeeeeet/driver_availability/internal/controller/render"
	"github.com/Freeeeeet/driver_availability/internal/model"
)

func main() {
	in := flag.String("in", "", "template JSON file with name and weekPattern; a sample week when empty")
	out := flag.String("out", "week_preview.png", "output PNG path")
	flag.Parse()

	tmpl, err := loadTemplate(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	png, err := render.WeekImage(tmpl.Name, tmpl.WeekPattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, png, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("%s: %d slots, %d bytes\n", *out, tmpl.WeekPattern.SlotCount(), len(png))
}

func loadTemplate(path string) (*model.AvailabilityTemplate, error) {
	if path == "" {
		return sampleTemplate(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var t model.AvailabilityTemplate
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := t.WeekPattern.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// sampleTemplate: weekday mornings and afternoons, conditional evenings, weekends off.
func sampleTemplate() *model.AvailabilityTemplate {
	fill := func(slots model.SlotStatuses, p model.Period, status model.AvailabilityStatus) {
		times, _ := model.PeriodTimes(p)
		for _, t := range times {
			slots[t] = status
		}
	}

	pattern := model.WeekPattern{}
	for _, day := range model.WeekdayKeys {
		slots := model.SlotStatuses{}
		switch day {
		case model.Saturday, model.Sunday:
			fill(slots, model.PeriodMorning, model.StatusNotAvailable)
		default:
			fill(slots, model.PeriodMorning, model.StatusAvailable)
			fill(slots, model.PeriodAfternoon, model.StatusAvailable)
			fill(slots, model.PeriodEvening, model.StatusConditional)
		}
		pattern[day] = slots
	}

	return &model.AvailabilityTemplate{Name: "Sample week", WeekPattern: model.NormalizeWeekPattern(pattern)}
}
