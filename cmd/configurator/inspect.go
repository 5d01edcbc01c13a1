package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"configurator/internal/asset"
	"configurator/internal/configurator"
	"configurator/internal/logger"
	"configurator/internal/palette"
	"configurator/internal/scenegraph"
)

func newInspectCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [model]",
		Short: "List the mesh nodes of a model and preview which parts bind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *f)
			if err != nil {
				return err
			}
			source := cfg.ModelPath
			if len(args) == 1 {
				source = args[0]
			}
			lines := logger.New("")
			lines.SetEcho(cmd.ErrOrStderr())
			log := lines.Slog(cfg.Level())

			loader := &asset.Loader{Override: cfg.PartManifest(), Log: log}
			res := loader.LoadSync(cmd.Context(), source)
			if res.Err != nil {
				return res.Err
			}
			return inspect(cmd.OutOrStdout(), res, cfg.Identifiers(), log)
		},
	}
}

// inspect prints every mesh node with its groups, then binds a viewer to the tree and
// prints the outcome per part.
func inspect(w io.Writer, res asset.Result, ids map[string]string, log *slog.Logger) error {
	fmt.Fprintf(w, "model: %s (%d meshes)\n", res.Path, res.MeshCount)
	res.Root.TraverseMeshes(func(n *scenegraph.Node) {
		fmt.Fprintf(w, "  %s\n", n.Path())
		for i, g := range n.Mesh.Geometry.Groups {
			color := "-"
			if i < len(n.Mesh.Materials) {
				if c, ok := n.Mesh.Materials[i].(scenegraph.Colorer); ok {
					color = palette.FormatColor(c.Color())
				}
			}
			fmt.Fprintf(w, "    group %d: %s mesh=%d color=%s\n", i, g.Kind, g.EngineIndex, color)
		}
	})

	parts := map[configurator.Part]string{}
	for name, id := range ids {
		parts[configurator.Part(name)] = id
	}
	v := configurator.New(parts, log)
	defer v.Close()
	report, err := v.Attach(res.Root, res.Manifest)
	if err != nil {
		return err
	}
	for _, p := range configurator.Parts {
		if path, ok := report.Bound[p]; ok {
			fmt.Fprintf(w, "%-5s -> %s\n", p, path)
		} else {
			fmt.Fprintf(w, "%-5s -> (not bound, identifier %q)\n", p, v.Identifier(p))
		}
		for _, extra := range report.Ambiguous[p] {
			fmt.Fprintf(w, "      also matched %s\n", extra)
		}
	}
	return nil
}
