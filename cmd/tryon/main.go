package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/virtual-tryon/internal/compositor"
	"github.com/fpang/virtual-tryon/internal/logging"
	"github.com/fpang/virtual-tryon/internal/pipeline"
	"github.com/fpang/virtual-tryon/internal/source"
)

// CLI flags
var (
	personFlag    string
	garmentFlag   string
	outputFlag    string
	remoteURLFlag string
	apiKeyFlag    string
	seedFlag      int64
)

// rootCmd is the main Cobra command for the tryon CLI.
var rootCmd = &cobra.Command{
	Use:   "tryon",
	Short: "Virtual try-on compositing - preview a garment on a person photo",
	Long: `Tryon combines a person photo and a garment photo into a try-on preview.

The remote AI compositor produces the highest-fidelity result. When it is
unavailable, times out, or the circuit breaker is open, a locally rendered
layered-blend preview is produced instead; if even that fails, a placeholder
card is returned. The command always writes a result image.

Image references can be local file paths, http(s) URLs, or data URIs.

Examples:
  tryon --person me.jpg --garment shirt.png --output preview.jpg
  tryon -p me.jpg -g shirt.png -o preview.jpg --remote-url https://api.example.com
  tryon -p photo.jpg -g dress.jpg -o out.jpg --seed 7  # reproducible fallback render`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().StringVarP(&personFlag, "person", "p", "", "Person image reference (required)")
	rootCmd.Flags().StringVarP(&garmentFlag, "garment", "g", "", "Garment image reference (required)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "tryon-result.jpg", "Where to write the result image")
	rootCmd.Flags().StringVar(&remoteURLFlag, "remote-url", os.Getenv("TRYON_REMOTE_URL"), "Base URL of the remote compositor (default $TRYON_REMOTE_URL)")
	rootCmd.Flags().StringVar(&apiKeyFlag, "api-key", os.Getenv("TRYON_API_KEY"), "API key for the remote compositor (default $TRYON_API_KEY)")
	rootCmd.Flags().Int64Var(&seedFlag, "seed", time.Now().UnixNano(), "Seed for the fallback renderer (default: current time)")
	rootCmd.MarkFlagRequired("person")
	rootCmd.MarkFlagRequired("garment")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runMain is the main execution logic called by Cobra.
func runMain(cmd *cobra.Command, args []string) {
	logging.Init()

	log.Info().
		Str("person", personFlag).
		Str("garment", garmentFlag).
		Str("output", outputFlag).
		Msg("Starting virtual try-on")

	p := pipeline.New(
		pipeline.DefaultConfig(),
		source.NewFetcher(),
		compositor.NewRemoteClient(remoteURLFlag, apiKeyFlag),
		compositor.NewFallback(seedFlag),
		compositor.Placeholder{},
	)

	result := p.ProcessComposite(context.Background(), pipeline.CompositeRequest{
		Person:  source.Image{Ref: personFlag},
		Garment: source.Image{Ref: garmentFlag},
	})

	if err := os.WriteFile(outputFlag, result.Image, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", outputFlag).Msg("failed to write result image")
	}

	fmt.Println()
	fmt.Println(pipeline.Explain(result))
	if suggestions := pipeline.ImprovementSuggestions(result); len(suggestions) > 0 {
		fmt.Println("\nFor a better result:")
		for _, s := range suggestions {
			fmt.Printf("  - %s\n", s)
		}
	}
	fmt.Printf("\nWrote %s (%s, method %s, quality %.1f/10, %s)\n",
		outputFlag, result.MIMEType, result.Method, result.QualityScore,
		result.ProcessingTime.Round(time.Millisecond))
}
