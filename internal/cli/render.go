package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docviz/docviz/pkg/pipeline"
	"github.com/docviz/docviz/pkg/render"
)

// Supported static output formats.
const (
	formatSVG = "svg"
	formatPNG = "png"
	formatPDF = "pdf"
	formatDOT = "dot"
)

// renderCommand creates the render command for static snapshots.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		configPath string
		formatsStr string
		output     string
		kind       string
		detailed   bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a static snapshot of the link graph or toctree",
		Long: `Render the link graph or toctree as a static image.

The graph is built the same way as 'docviz build' but instead of the
interactive viewer a Graphviz-laid-out snapshot is written, suitable for
READMEs and reports.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if err := validateFormats(formats); err != nil {
				return err
			}
			if kind != "linkgraph" && kind != "toctree" {
				return fmt.Errorf("unknown graph kind %q (want linkgraph or toctree)", kind)
			}

			cfg, baseDir, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			spinner := newSpinner(ctx, fmt.Sprintf("Rendering %s...", kind))
			spinner.Start()

			res, err := pipeline.Run(ctx, pipeline.Options{
				Config:     cfg,
				BaseDir:    baseDir,
				Logger:     c.Logger,
				Fetcher:    c.newFetcher(ctx, cfg.Cache, noCache),
				SkipAssets: true,
			})
			if err != nil {
				spinner.StopWithError("Render failed")
				return err
			}

			var dot string
			if kind == "toctree" {
				dot = render.ToctreeDOT(res.Toctree)
			} else {
				dot = render.LinkGraphDOT(res.Document, render.Options{Detailed: detailed})
			}

			base := output
			if base == "" {
				base = kind
			}
			base = strings.TrimSuffix(base, "."+strings.ToLower(formats[0]))

			var written []string
			for _, format := range formats {
				data, err := renderFormat(dot, format)
				if err != nil {
					spinner.StopWithError("Render failed")
					return err
				}
				path := base + "." + format
				if err := os.WriteFile(path, data, 0o644); err != nil {
					spinner.StopWithError("Render failed")
					return fmt.Errorf("write %s: %w", path, err)
				}
				written = append(written, path)
			}
			spinner.Stop()

			printSuccess("Rendered %s", kind)
			for _, path := range written {
				printFile(path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (default docviz.toml)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVar(&kind, "kind", "linkgraph", "graph to render: linkgraph or toctree")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include page paths in node labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable external fetch caching")

	return cmd
}

func renderFormat(dot, format string) ([]byte, error) {
	switch format {
	case formatDOT:
		return []byte(dot), nil
	case formatSVG:
		return render.RenderSVG(dot)
	case formatPNG:
		return render.RenderPNG(dot, 2.0)
	case formatPDF:
		return render.RenderPDF(dot)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		switch f {
		case formatSVG, formatPNG, formatPDF, formatDOT:
		default:
			return fmt.Errorf("unknown format %q (want svg, png, pdf, or dot)", f)
		}
	}
	return nil
}
