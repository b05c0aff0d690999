// Package device provides an HTTP client for the camera's settings and file
// API.
//
// # Resources
//
// Settings are plain JSON documents that the device hands out with GET and
// replaces with POST. The POST reply is the device's canonical copy, which
// may differ from what was sent when the device clamps or normalizes values.
// Resource[T] wraps one such document and satisfies fetchsync.Transport, so
// an engine can poll and write it directly:
//
//	client, err := device.NewClient("192.168.1.20:8080")
//	if err != nil {
//		return err
//	}
//	camera := fetchsync.New(client.Camera(), device.CameraSettings{}, opts)
//
// The stored photos are exposed read-only through Gallery, and removed with
// DeleteFiles.
//
// # API Endpoints
//
//   - GET/POST /api/settings/camera: exposure, white balance, effect, rotation
//   - GET/POST /api/settings/photo: capture size, quality, timelapse interval
//   - GET /api/files: stored photos
//   - POST /api/files/delete: remove photos by name
//
// # Request Handling
//
// All requests carry Accept: application/json, a User-Agent of
// aperture/<version> and an X-Request-ID header. When the request context
// came from a fetchsync engine the header carries that attempt's id, so
// device-side logs line up with the engine's. Requests time out after five
// seconds.
//
// Errors are wrapped with what failed:
//   - "execute request: dial tcp: connection refused"
//   - "api /api/settings/camera returned status 500"
//   - "decode response: unexpected end of JSON input"
//
// # URL Construction
//
// The client accepts "host:port" or a full URL. The scheme defaults to http
// and any path, query or fragment is dropped.
package device
