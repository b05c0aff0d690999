package device

import (
	"encoding/json"
	"testing"
	"time"
)

func TestShutterLabel(t *testing.T) {
	tests := []struct {
		us   int
		want string
	}{
		{0, "auto"},
		{-5, "auto"},
		{1000, "1/1000s"},
		{33333, "1/30s"},
		{16667, "1/60s"},
		{1000000, "1s"},
		{2500000, "2.5s"},
	}
	for _, tt := range tests {
		if got := ShutterLabel(tt.us); got != tt.want {
			t.Errorf("ShutterLabel(%d) = %q, want %q", tt.us, got, tt.want)
		}
	}
}

func TestLabels(t *testing.T) {
	if got := ISOLabel(0); got != "auto" {
		t.Fatalf("ISOLabel(0) = %q, want auto", got)
	}
	if got := ISOLabel(400); got != "400" {
		t.Fatalf("ISOLabel(400) = %q, want 400", got)
	}
	if got := TimelapseLabel(0); got != "off" {
		t.Fatalf("TimelapseLabel(0) = %q, want off", got)
	}
	if got := TimelapseLabel(5000); got != "5s" {
		t.Fatalf("TimelapseLabel(5000) = %q, want 5s", got)
	}
	if got := SizeLabel(512); got != "512 B" {
		t.Fatalf("SizeLabel(512) = %q, want 512 B", got)
	}
	if got := SizeLabel(3 * 1024 * 1024); got != "3.0 MiB" {
		t.Fatalf("SizeLabel(3MiB) = %q, want 3.0 MiB", got)
	}
}

func TestCycle(t *testing.T) {
	opts := []string{"a", "b", "c"}
	if got := Cycle(opts, "a", 1); got != "b" {
		t.Fatalf("Cycle(a,+1) = %q, want b", got)
	}
	if got := Cycle(opts, "c", 1); got != "a" {
		t.Fatalf("Cycle(c,+1) = %q, want a", got)
	}
	if got := Cycle(opts, "a", -1); got != "c" {
		t.Fatalf("Cycle(a,-1) = %q, want c", got)
	}
	if got := Cycle(opts, "zzz", 1); got != "a" {
		t.Fatalf("Cycle(unknown) = %q, want a", got)
	}
	if got := Cycle([]int{}, 7, 1); got != 7 {
		t.Fatalf("Cycle(empty) = %d, want 7", got)
	}
}

func TestCameraSettingsJSONFieldNames(t *testing.T) {
	raw := []byte(`{"exposureMode":"night","shutterSpeed":33333,"iso":400,"exposureCompensation":-2,"awbMode":"sun","imageEffect":"sketch","rotation":180}`)
	var cs CameraSettings
	if err := json.Unmarshal(raw, &cs); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	want := CameraSettings{ExposureMode: "night", ShutterSpeed: 33333, ISO: 400, ExposureCompensation: -2, AwbMode: "sun", ImageEffect: "sketch", Rotation: 180}
	if cs != want {
		t.Fatalf("CameraSettings = %#v, want %#v", cs, want)
	}
}

func TestFileListDecodesDates(t *testing.T) {
	raw := []byte(`{"files":[{"name":"img_0001.jpg","date":"2026-10-17T08:30:00Z","size":2048}]}`)
	var resp FileListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if len(resp.Files) != 1 || resp.Files[0].Name != "img_0001.jpg" {
		t.Fatalf("Files = %#v, want img_0001.jpg", resp.Files)
	}
	if !resp.Files[0].Date.Equal(time.Date(2026, 10, 17, 8, 30, 0, 0, time.UTC)) {
		t.Fatalf("Date = %v, want 2026-10-17 08:30 UTC", resp.Files[0].Date)
	}
}
