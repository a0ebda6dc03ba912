package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quoteline/quoteline/internal/calculation"
	"github.com/quoteline/quoteline/internal/config"
	"github.com/quoteline/quoteline/internal/domain"
	"github.com/quoteline/quoteline/internal/output"
	"github.com/quoteline/quoteline/internal/rating"
	"github.com/quoteline/quoteline/internal/refdata"
	"github.com/quoteline/quoteline/internal/server"
	"github.com/quoteline/quoteline/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "quoteline %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(os.Stdout, info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "quoteline",
	Short: "Proposal premium aggregation pipeline",
	Long:  "Rates risk items, aggregates sections, applies proposal adjustments and pro-rata, and renders the calculation breakdown.",
}

// ratingService picks the local engine or a remote client depending on the
// --server flag.
func ratingService(cmd *cobra.Command) calculation.Service {
	serverURL, _ := cmd.Flags().GetString("server")
	if serverURL != "" {
		return rating.NewClient(serverURL, &http.Client{Timeout: 30 * time.Second})
	}
	return rating.NewLocalService()
}

// reportGenerator resolves SMI codes through the built-in label feed, cached
// the way a dropdown feed would be.
func reportGenerator() *output.ReportGenerator {
	labels := refdata.NewCachedLookup(refdata.SMICodes(), time.Hour)
	return output.NewReportGeneratorWithLabels(labels)
}

// runPipeline drives a proposal through the full calculation sequence and
// returns the normalized breakdown.
func runPipeline(ctx context.Context, proposal *domain.Proposal, svc calculation.Service) (*domain.CalculationBreakdown, error) {
	session := calculation.NewProposalSession(proposal, svc)

	sections, _ := session.AuthoritativeSections()
	for i := range sections {
		if err := session.CalculateSection(ctx, sections[i].ID); err != nil {
			return nil, fmt.Errorf("calculate section %s: %w", sections[i].Name, err)
		}
	}

	if _, err := session.CalculateAggregate(ctx); err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if _, err := session.ApplyAdjustments(ctx); err != nil {
		return nil, fmt.Errorf("adjustments: %w", err)
	}
	if _, err := session.ApplyProRata(ctx); err != nil {
		return nil, fmt.Errorf("pro-rata: %w", err)
	}

	return session.Breakdown(ctx)
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [proposal-file]",
	Short: "Run the full premium calculation for a proposal",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		proposal, err := parser.LoadFromFile(args[0])
		if err != nil {
			log.Fatal(err)
		}

		breakdown, err := runPipeline(cmd.Context(), proposal, ratingService(cmd))
		if err != nil {
			log.Fatal(err)
		}

		format, _ := cmd.Flags().GetString("format")
		outFile, _ := cmd.Flags().GetString("output")
		w := os.Stdout
		if outFile != "" {
			f, err := os.Create(outFile)
			if err != nil {
				log.Fatal(err)
			}
			defer f.Close()
			w = f
		}
		if err := reportGenerator().Generate(w, breakdown, format); err != nil {
			log.Fatal(err)
		}
	},
}

var breakdownCmd = &cobra.Command{
	Use:   "breakdown [proposal-id]",
	Short: "Fetch and render a recorded calculation breakdown",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		serverURL, _ := cmd.Flags().GetString("server")
		if serverURL == "" {
			log.Fatal("--server is required: breakdowns are recorded by a running rating service")
		}
		client := rating.NewClient(serverURL, &http.Client{Timeout: 30 * time.Second})

		raw, err := client.GetBreakdown(cmd.Context(), args[0])
		if err != nil {
			log.Fatal(err)
		}
		breakdown := calculation.NewBreakdownNormalizer().Normalize(raw)

		format, _ := cmd.Flags().GetString("format")
		if err := reportGenerator().Generate(os.Stdout, breakdown, format); err != nil {
			log.Fatal(err)
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [proposal-file]",
	Short: "Validate a proposal file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		proposal, err := parser.LoadFromFile(args[0])
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Proposal file %s is valid (%d sections, %d risk items)\n",
			args[0], len(proposal.Sections), proposal.RiskItemCount())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the rating service HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")

		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		srv := server.New(rating.NewLocalService(), logger)

		httpServer := &http.Server{
			Addr:              addr,
			Handler:           srv.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		logger.Info("rating service listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui [proposal-file]",
	Short: "Browse a proposal's calculation breakdown interactively",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		proposal, err := parser.LoadFromFile(args[0])
		if err != nil {
			log.Fatal(err)
		}

		breakdown, err := runPipeline(cmd.Context(), proposal, ratingService(cmd))
		if err != nil {
			log.Fatal(err)
		}

		p := tea.NewProgram(tui.NewModel(breakdown), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			log.Fatal(err)
		}
	},
}

func init() {
	calculateCmd.Flags().StringP("format", "f", "console", "Output format (console, json, csv, pdf)")
	calculateCmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	calculateCmd.Flags().String("server", "", "Rating server base URL (default: built-in engine)")

	breakdownCmd.Flags().StringP("format", "f", "console", "Output format (console, json, csv, pdf)")
	breakdownCmd.Flags().String("server", "", "Rating server base URL (required)")

	tuiCmd.Flags().String("server", "", "Rating server base URL (default: built-in engine)")

	serveCmd.Flags().String("addr", ":8080", "Listen address")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(breakdownCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
