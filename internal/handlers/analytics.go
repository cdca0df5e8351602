package handlers

// Analytics holds client instrumentation configuration surfaced to templates.
type Analytics struct {
	GA4MeasurementID string // e.g. G-XXXXXXXXXX
	// Debug sets debug_mode on the gtag config so hits show in DebugView.
	Debug bool
}

// Enabled reports whether any tag should be emitted.
func (a Analytics) Enabled() bool { return a.GA4MeasurementID != "" }
