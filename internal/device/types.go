package device

import (
	"fmt"
	"strings"
	"time"
)

// CameraSettings mirrors /api/settings/camera. Values are passed through to
// the device as-is; the device decides what it accepts.
type CameraSettings struct {
	ExposureMode         string `json:"exposureMode"`
	ShutterSpeed         int    `json:"shutterSpeed"` // microseconds, 0 = auto
	ISO                  int    `json:"iso"`          // 0 = auto
	ExposureCompensation int    `json:"exposureCompensation"`
	AwbMode              string `json:"awbMode"`
	ImageEffect          string `json:"imageEffect"`
	Rotation             int    `json:"rotation"`
}

// PhotoSettings mirrors /api/settings/photo.
type PhotoSettings struct {
	TimelapseMS int `json:"timelapse"` // 0 disables timelapse capture
	Width       int `json:"width"`
	Height      int `json:"height"`
	Quality     int `json:"quality"`
}

// FileListResponse mirrors /api/files.
type FileListResponse struct {
	Files []File `json:"files"`
}

// File is one photo stored on the device.
type File struct {
	Name string    `json:"name"`
	Date time.Time `json:"date"`
	Size int64     `json:"size"`
}

// DeleteFilesRequest is the body of /api/files/delete.
type DeleteFilesRequest struct {
	Files []string `json:"files"`
}

// Option lists offered by the settings panel. The device may accept more.
var (
	ExposureModes = []string{
		"auto", "night", "nightpreview", "backlight", "spotlight", "sports",
		"snow", "beach", "verylong", "fixedfps", "antishake", "fireworks", "off",
	}
	AwbModes = []string{
		"auto", "off", "sun", "cloud", "shade", "tungsten", "fluorescent",
		"incandescent", "flash", "horizon", "greyworld",
	}
	ImageEffects = []string{
		"none", "negative", "solarise", "sketch", "denoise", "emboss", "oilpaint",
		"hatch", "gpen", "pastel", "watercolour", "film", "blur", "saturation",
		"colourswap", "washedout", "posterise", "colourpoint", "colourbalance", "cartoon",
	}
	ShutterSpeeds = []int{0, 100, 250, 500, 1000, 2000, 4000, 8000, 16667, 33333, 66667, 125000, 250000, 500000, 1000000}
	ISOValues     = []int{0, 100, 200, 320, 400, 500, 640, 800}
	Rotations     = []int{0, 90, 180, 270}
	Timelapses    = []int{0, 1000, 2000, 5000, 10000, 30000, 60000, 300000}
)

// ShutterLabel renders a shutter speed in the usual 1/N s form.
func ShutterLabel(us int) string {
	switch {
	case us <= 0:
		return "auto"
	case us >= 1000000:
		return fmt.Sprintf("%gs", float64(us)/1e6)
	default:
		return fmt.Sprintf("1/%ds", (1000000+us/2)/us)
	}
}

// ISOLabel renders an ISO value.
func ISOLabel(iso int) string {
	if iso <= 0 {
		return "auto"
	}
	return fmt.Sprintf("%d", iso)
}

// TimelapseLabel renders a timelapse interval.
func TimelapseLabel(ms int) string {
	if ms <= 0 {
		return "off"
	}
	return (time.Duration(ms) * time.Millisecond).String()
}

// SizeLabel renders a byte count for the gallery.
func SizeLabel(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Cycle returns the entry after current in options, wrapping around. step may
// be negative. An unknown current value starts from the first entry.
func Cycle[E comparable](options []E, current E, step int) E {
	if len(options) == 0 {
		return current
	}
	idx := -1
	for i, opt := range options {
		if opt == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return options[0]
	}
	n := len(options)
	return options[((idx+step)%n+n)%n]
}

// NormalizeMode lowercases and trims a mode string from user input.
func NormalizeMode(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
