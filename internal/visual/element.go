// Package visual describes the things a user can export as a picture: charts
// drawn by go-chart, markup fragments that embed an <svg>, and snapshots
// that are already rasterized.
package visual

// Element is an opaque handle to something renderable. The capturer
// inspects which optional render methods an element provides.
type Element interface {
	// Name identifies the element in logs and alerts.
	Name() string
}
