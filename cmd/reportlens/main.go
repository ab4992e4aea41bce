// Command reportlens runs the clinical document analysis service:
// text extraction with OCR fallback, section segmentation, condition
// and radiology finding detection, terminology tagging and nutrition
// guidance assembly.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/reportlens/internal/config"
	"github.com/custodia-labs/reportlens/internal/core/ports/driving"
	"github.com/custodia-labs/reportlens/internal/core/services"
	"github.com/custodia-labs/reportlens/internal/extract"
	"github.com/custodia-labs/reportlens/internal/guidance"
	"github.com/custodia-labs/reportlens/internal/guidance/foods"
	"github.com/custodia-labs/reportlens/internal/logger"
	"github.com/custodia-labs/reportlens/internal/refdata"
	"github.com/custodia-labs/reportlens/internal/server"
	"github.com/custodia-labs/reportlens/internal/terminology"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	flagVerbose bool
	flagConfig  string
)

func main() {
	root := &cobra.Command{
		Use:   "reportlens",
		Short: "Clinical document analysis and nutrition guidance service",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.SetVerbose(flagVerbose)
		},
	}
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file")

	root.AddCommand(serveCmd(), analyzeCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildService assembles the pipeline from configuration.
func buildService(cfg *config.Config) driving.AnalysisService {
	foodClient := foods.NewClient(cfg.FoodDataAPIKey)
	store := refdata.NewStore(cfg.DataDir)

	return services.NewAnalysisService(
		extract.New(),
		terminology.NewTagger(terminology.NewClient(cfg.TerminologyAPIKey)),
		guidance.New(foodClient, guidance.NewFetcher(), cfg.LowResource),
		refdata.NewMapper(store, foodClient),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP upload and analysis server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			srv, err := server.New(buildService(cfg), cfg.UploadDir, cfg.StaticDir)
			if err != nil {
				return err
			}

			color.New(color.FgGreen, color.Bold).Printf("reportlens %s\n", Version)
			fmt.Printf("listening on %s\n", cfg.ListenAddr)
			if cfg.TerminologyAPIKey == "" {
				color.Yellow("terminology API key not set: concept tagging disabled")
			}
			if cfg.FoodDataAPIKey == "" {
				color.Yellow("food data API key not set: live guidance disabled")
			}
			if err := extract.CheckAvailable(); err != nil {
				color.Yellow("%v\n%s", err, extract.InstallInstructions())
			}

			return http.ListenAndServe(cfg.ListenAddr, srv)
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a local document and print the JSON report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			path := args[0]
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")

			analysis, err := buildService(cfg).Analyze(cmd.Context(), path, ext, filepath.Base(path))
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(analysis)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the reportlens version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("reportlens %s\n", Version)
		},
	}
}
