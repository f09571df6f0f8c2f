// main.go
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ctf-catalog/config"
	"ctf-catalog/logger"
	"ctf-catalog/models"
	"ctf-catalog/page"
	"ctf-catalog/services"
	"ctf-catalog/views"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "ctf-catalog",
		Short:        "OSINT CTF challenge catalog server",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newRenderCmd(), newValidateCmd())
	return root
}

// =============================================================================
// SERVE
// =============================================================================

func newServeCmd() *cobra.Command {
	var configDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configDir)
			if err != nil {
				return err
			}
			opts := logger.DefaultOptions()
			opts.File = cfg.Log.File
			if err := logger.InitLogger(opts); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer logger.Sync()
			logger.SetLogLevel(cfg.Server.Mode)
			gin.SetMode(cfg.Server.Mode)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, err := newServer(ctx, cfg)
			if err != nil {
				return err
			}
			defer srv.close()
			return srv.run(ctx)
		},
	}
	cmd.Flags().StringVar(&configDir, "config", ".", "directory holding config.yaml")
	return cmd
}

// =============================================================================
// RENDER
// =============================================================================

func newRenderCmd() *cobra.Command {
	var catalogPath, skeletonPath, outPath string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the initial catalog page as static HTML",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return renderPage(out, catalogPath, skeletonPath)
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "data/catalog.json", "catalog file (JSON or YAML)")
	cmd.Flags().StringVar(&skeletonPath, "skeleton", "", "page markup; empty uses the built-in page")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file; empty writes to stdout")
	return cmd
}

// renderPage performs intake and writes the page as a browser would first receive it.
// A failed intake still renders, with the error panel in the grid.
func renderPage(w io.Writer, catalogPath, skeletonPath string) error {
	skeleton, err := views.ParseSkeleton(skeletonPath)
	if err != nil {
		return err
	}
	snap := services.NewCatalogStore(services.FileSource(catalogPath)).Current()
	view, err := page.New("static", page.Options{Skeleton: skeleton, Snapshot: snap})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, view.HTML())
	return err
}

// =============================================================================
// VALIDATE
// =============================================================================

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <catalog>",
		Short: "Check that a catalog file loads and print its stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateCatalog(cmd.OutOrStdout(), args[0])
		},
	}
}

func validateCatalog(w io.Writer, path string) error {
	cat, err := services.LoadCatalog(path)
	if err != nil {
		return err
	}
	snap := services.NewSnapshot(cat)
	fmt.Fprintf(w, "%s: %d collections, %d challenges\n", path, snap.Stats.CollectionCount, snap.Stats.TotalChallenges)
	for _, col := range cat.Collections {
		unchecked := 0
		for _, d := range models.Difficulties {
			for _, ch := range col.Challenges.Bucket(d) {
				if !ch.HasAnswer() {
					unchecked++
				}
			}
		}
		if unchecked > 0 {
			fmt.Fprintf(w, "  #%d %s: %d challenge(s) without an answer\n", col.ID, col.Title, unchecked)
		}
	}
	return nil
}
