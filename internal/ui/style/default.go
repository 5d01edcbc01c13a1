package style

import _ "embed"

// DefaultCSS styles the palette panels, tooltip, status line and inspector.
//
//go:embed default.css
var DefaultCSS string
