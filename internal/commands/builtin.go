package commands

import (
	"errors"
	"fmt"
	"strings"
)

// Host is what the built-in commands act on. The app implements it on the main thread.
type Host interface {
	Recolor(part, value string) error
	// Load starts an asynchronous model load.
	Load(source string) error
	// PartLines describes each part's binding and color, one line per part.
	PartLines() []string
	// Snapshot writes a WebP image and returns its path. Empty path and zero width mean defaults.
	Snapshot(path string, width int) (string, error)
	// SetOverlay toggles "fps", "mem", "stats" or "grid".
	SetOverlay(name string, show bool) error
}

// RegisterBuiltins registers color, load, parts, snapshot, fps, mem, stats, grid and help.
// Command output is passed to emit.
func RegisterBuiltins(r *Registry, h Host, emit func(string)) {
	colorFS := NewFlagSet("color")
	part := colorFS.String("part", "front", "part to recolor (front or back)")
	r.Register("color", "[--part front|back] #RRGGBB", colorFS, func(args []string) error {
		if len(args) != 1 {
			return errors.New("color: expected one color value")
		}
		return h.Recolor(*part, args[0])
	})

	r.Register("load", "<path or url>", nil, func(args []string) error {
		if len(args) != 1 {
			return errors.New("load: expected one model source")
		}
		return h.Load(args[0])
	})

	r.Register("parts", "", nil, func([]string) error {
		for _, l := range h.PartLines() {
			emit(l)
		}
		return nil
	})

	snapFS := NewFlagSet("snapshot")
	out := snapFS.String("out", "", "output file (default: snapshot dir, timestamped)")
	width := snapFS.Int("width", 0, "output width in pixels (default: config)")
	r.Register("snapshot", "[--out file.webp] [--width N]", snapFS, func([]string) error {
		path, err := h.Snapshot(*out, *width)
		if err != nil {
			return err
		}
		emit("snapshot saved to " + path)
		return nil
	})

	for _, name := range []string{"fps", "mem", "stats", "grid"} {
		registerToggle(r, h, name)
	}

	r.Register("help", "", nil, func([]string) error {
		for _, l := range r.Help() {
			emit(l)
		}
		return nil
	})
}

func registerToggle(r *Registry, h Host, name string) {
	fs := NewFlagSet(name)
	show := fs.Bool("show", false, "show the "+name+" overlay")
	hide := fs.Bool("hide", false, "hide the "+name+" overlay")
	r.Register(name, "--show|--hide", fs, func([]string) error {
		if *show == *hide {
			return fmt.Errorf("%s: use exactly one of --show or --hide", name)
		}
		return h.SetOverlay(name, *show)
	})
}

// JoinPartLine formats one PartLines entry.
func JoinPartLine(part, node, color string) string {
	if node == "" {
		node = "(not bound)"
	}
	return strings.TrimSpace(fmt.Sprintf("%-5s %s %s", part, node, color))
}
