package ui

import (
	"fmt"
	"strings"

	"github.com/five82/aperture/internal/device"
	"github.com/five82/aperture/internal/fetchsync"
	"github.com/five82/aperture/internal/state"
)

// field describes one editable member of a settings resource. key is the
// JSON member name sent in the edit.
type field[T any] struct {
	key   string
	label string
	show  func(T) string
	next  func(T, int) any
}

// settingRow is a field bound to a live engine.
type settingRow struct {
	section string
	label   string
	value   func() string
	pending func() bool
	adjust  func(step int) error
}

func bindFields[T any](eng *fetchsync.Engine[T], section string, fields []field[T]) []settingRow {
	if eng == nil {
		return nil
	}
	rows := make([]settingRow, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, settingRow{
			section: section,
			label:   f.label,
			value: func() string {
				return f.show(eng.Snapshot().Data)
			},
			pending: func() bool {
				return eng.Snapshot().Input.Has(f.key)
			},
			adjust: func(step int) error {
				p, err := state.Field(f.key, f.next(eng.Snapshot().Data, step))
				if err != nil {
					return err
				}
				return eng.SubmitEdit(p)
			},
		})
	}
	return rows
}

func stepClamp(v, step, lo, hi int) int {
	return max(lo, min(hi, v+step))
}

var cameraFields = []field[device.CameraSettings]{
	{
		key:   "exposureMode",
		label: "Exposure mode",
		show:  func(c device.CameraSettings) string { return c.ExposureMode },
		next: func(c device.CameraSettings, step int) any {
			return device.Cycle(device.ExposureModes, c.ExposureMode, step)
		},
	},
	{
		key:   "shutterSpeed",
		label: "Shutter speed",
		show:  func(c device.CameraSettings) string { return device.ShutterLabel(c.ShutterSpeed) },
		next: func(c device.CameraSettings, step int) any {
			return device.Cycle(device.ShutterSpeeds, c.ShutterSpeed, step)
		},
	},
	{
		key:   "iso",
		label: "ISO",
		show:  func(c device.CameraSettings) string { return device.ISOLabel(c.ISO) },
		next: func(c device.CameraSettings, step int) any {
			return device.Cycle(device.ISOValues, c.ISO, step)
		},
	},
	{
		key:   "exposureCompensation",
		label: "Exposure comp.",
		show:  func(c device.CameraSettings) string { return fmt.Sprintf("%+d", c.ExposureCompensation) },
		next: func(c device.CameraSettings, step int) any {
			return stepClamp(c.ExposureCompensation, step, -10, 10)
		},
	},
	{
		key:   "awbMode",
		label: "White balance",
		show:  func(c device.CameraSettings) string { return c.AwbMode },
		next: func(c device.CameraSettings, step int) any {
			return device.Cycle(device.AwbModes, c.AwbMode, step)
		},
	},
	{
		key:   "imageEffect",
		label: "Image effect",
		show:  func(c device.CameraSettings) string { return c.ImageEffect },
		next: func(c device.CameraSettings, step int) any {
			return device.Cycle(device.ImageEffects, c.ImageEffect, step)
		},
	},
	{
		key:   "rotation",
		label: "Rotation",
		show:  func(c device.CameraSettings) string { return fmt.Sprintf("%d°", c.Rotation) },
		next: func(c device.CameraSettings, step int) any {
			return device.Cycle(device.Rotations, c.Rotation, step)
		},
	},
}

var photoFields = []field[device.PhotoSettings]{
	{
		key:   "timelapse",
		label: "Timelapse",
		show:  func(p device.PhotoSettings) string { return device.TimelapseLabel(p.TimelapseMS) },
		next: func(p device.PhotoSettings, step int) any {
			return device.Cycle(device.Timelapses, p.TimelapseMS, step)
		},
	},
	{
		key:   "width",
		label: "Width",
		show:  func(p device.PhotoSettings) string { return fmt.Sprintf("%d px", p.Width) },
		next: func(p device.PhotoSettings, step int) any {
			return stepClamp(p.Width, step*16, 64, 4056)
		},
	},
	{
		key:   "height",
		label: "Height",
		show:  func(p device.PhotoSettings) string { return fmt.Sprintf("%d px", p.Height) },
		next: func(p device.PhotoSettings, step int) any {
			return stepClamp(p.Height, step*16, 64, 3040)
		},
	},
	{
		key:   "quality",
		label: "JPEG quality",
		show:  func(p device.PhotoSettings) string { return fmt.Sprintf("%d", p.Quality) },
		next: func(p device.PhotoSettings, step int) any {
			return stepClamp(p.Quality, step*5, 1, 100)
		},
	},
}

// adjustSelected applies step to the selected row and reports any rejection
// in the flash line.
func (m *Model) adjustSelected(step int) {
	if m.settingsRow < 0 || m.settingsRow >= len(m.rows) {
		return
	}
	row := m.rows[m.settingsRow]
	if err := row.adjust(step); err != nil {
		m.flash = fmt.Sprintf("%s: %v", row.label, err)
		m.flashErr = true
		return
	}
	m.flash = ""
}

func (m Model) renderSettings(width, height int) string {
	styles := m.theme.Styles()
	var b strings.Builder

	section := ""
	for i, row := range m.rows {
		if row.section != section {
			if section != "" {
				b.WriteString("\n")
			}
			section = row.section
			b.WriteString(styles.AccentText.Bold(true).Render(section))
			b.WriteString("\n")
		}
		marker := "  "
		if row.pending() {
			marker = styles.WarningText.Render("* ")
		}
		line := fmt.Sprintf("%-16s %s", row.label, row.value())
		if i == m.settingsRow {
			line = styles.Selected.Render(line)
		} else {
			line = styles.Text.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderGrid())

	return m.renderBox("Settings", b.String(), width, height, m.grid.editing == gridIdle)
}
