package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"oracle/adapters/excel"
	"oracle/adapters/files"
	"oracle/adapters/llm"
	mdreport "oracle/adapters/report"
	"oracle/app"
	"oracle/domain/core"
	"oracle/domain/report"
	"oracle/internal/api"
	"oracle/internal/config"
	"oracle/internal/dispatch"
	"oracle/ports"
)

const banner = `
  ___  ____      _    ____ _     _____
 / _ \|  _ \    / \  / ___| |   | ____|
| | | | |_) |  / _ \| |   | |   |  _|
| |_| |  _ <  / ___ \ |___| |___| |___
 \___/|_| \_\/_/   \_\____|_____|_____|
 simulation orchestration engine
`

func main() {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "oracle",
		Short: "Fan templated hypotheses out to a generative model and aggregate the results",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newReportCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var (
		category      string
		count         int
		model         string
		outputDir     string
		templatesDir  string
		maxConcurrent int
		delay         float64
	)

	cmd := &cobra.Command{
		Use:   "run [domain]",
		Short: "Run every simulation in a domain template",
		Long: `Load <templates-dir>/<domain>.json, fan its hypotheses out to the model
under the configured concurrency and pacing limits, and write results,
summary markdown, HTML, and an xlsx workbook into the output directory.

Example: oracle run business --category pricing --count 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			applyFlagOverrides(cfg, model, outputDir, templatesDir, maxConcurrent, delay, cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runDomain(ctx, cfg, args[0], category, count)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Run a single category instead of the whole template")
	cmd.Flags().IntVar(&count, "count", 0, "Override the per-category hypothesis count")
	cmd.Flags().StringVar(&model, "model", "", "Override the model name")
	cmd.Flags().StringVar(&outputDir, "output", "", "Override the output directory")
	cmd.Flags().StringVar(&templatesDir, "templates", "", "Override the templates directory")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", 0, "Override the concurrency limit")
	cmd.Flags().Float64Var(&delay, "delay", -1, "Override the delay between call starts, in seconds")

	return cmd
}

func applyFlagOverrides(cfg *config.Config, model, outputDir, templatesDir string, maxConcurrent int, delay float64, cmd *cobra.Command) {
	if model != "" {
		cfg.AI.Model = model
	}
	if outputDir != "" {
		cfg.Paths.OutputDir = outputDir
	}
	if templatesDir != "" {
		cfg.Paths.TemplatesDir = templatesDir
	}
	if maxConcurrent > 0 {
		cfg.Run.MaxConcurrent = maxConcurrent
	}
	if cmd.Flags().Changed("delay") && delay >= 0 {
		cfg.Run.DelayBetweenCalls = time.Duration(delay * float64(time.Second))
	}
}

func runDomain(ctx context.Context, cfg *config.Config, domain, category string, count int) error {
	fmt.Print(banner)
	log.Printf("[CLI] Domain=%s model=%s concurrency=%d delay=%v",
		domain, cfg.AI.Model, cfg.Run.MaxConcurrent, cfg.Run.DelayBetweenCalls)

	tpl, err := files.LoadTemplate(cfg.Paths.TemplatesDir, domain)
	if err != nil {
		return err
	}

	client, err := llm.NewGeminiClient(cfg.AI)
	if err != nil {
		return err
	}

	dispatcher, err := dispatch.New(cfg.Run.MaxConcurrent, cfg.Run.DelayBetweenCalls)
	if err != nil {
		return err
	}

	writer, err := files.NewResultWriter(cfg.Paths.OutputDir)
	if err != nil {
		return err
	}

	svc := app.NewSimulationService(client, dispatcher, cfg.Run, app.WithResultSink(writer))
	run, runErr := svc.Run(ctx, app.RunRequest{
		Template:      tpl,
		Domain:        domain,
		Category:      category,
		CountOverride: count,
	})
	if run == nil {
		return runErr
	}

	if err := writeArtifacts(cfg, domain, run); err != nil {
		return err
	}

	fmt.Printf("\nRun %s complete: %d simulations, %d degraded\n", run.RunID, run.Attempted, run.Degraded)
	if usage, ok := ports.CompletionPort(client).(ports.UsageReporter); ok {
		fmt.Printf("Total tokens used: %d\n", usage.TotalTokens())
	}
	if runErr != nil {
		fmt.Println("Run was interrupted; output holds the completed portion only.")
		return runErr
	}
	return nil
}

// writeArtifacts persists the flattened run, the aggregate summary in
// markdown and HTML, and the xlsx workbook.
func writeArtifacts(cfg *config.Config, domain string, run *app.RunResult) error {
	writer, err := files.NewResultWriter(cfg.Paths.OutputDir)
	if err != nil {
		return err
	}
	if err := writer.WriteAll(domain, run.Results()); err != nil {
		return err
	}

	aggregator := &report.Aggregator{TopN: cfg.Run.TopN}
	summary := aggregator.Aggregate(domain, run.ResultsByCategory)
	summary.RunID = run.RunID
	summary.GeneratedAt = core.Now()

	if err := writer.WriteSummaryMarkdown(domain, mdreport.RenderMarkdown(summary)); err != nil {
		return err
	}
	if err := writer.WriteFile(domain+"_summary.html", mdreport.RenderHTML(summary)); err != nil {
		return err
	}

	workbook, err := excel.WriteWorkbook(summary, run.ResultsByCategory)
	if err != nil {
		return err
	}
	return writer.WriteFile(excel.Filename(domain), workbook)
}

func newReportCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "report [domain]",
		Short: "Re-render the summary report from persisted results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No API calls here, so no key needed
			cfg, err := config.LoadOffline()
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.Paths.OutputDir = outputDir
			}
			return renderReport(cfg, args[0])
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "", "Override the output directory")
	return cmd
}

func renderReport(cfg *config.Config, domain string) error {
	writer, err := files.NewResultWriter(cfg.Paths.OutputDir)
	if err != nil {
		return err
	}

	results, err := files.LoadResults(cfg.Paths.OutputDir, domain)
	if err != nil {
		return err
	}

	grouped := files.GroupByCategory(results)
	aggregator := &report.Aggregator{TopN: cfg.Run.TopN}
	summary := aggregator.Aggregate(domain, grouped)
	summary.GeneratedAt = core.Now()

	if err := writer.WriteSummaryMarkdown(domain, mdreport.RenderMarkdown(summary)); err != nil {
		return err
	}
	if err := writer.WriteFile(domain+"_summary.html", mdreport.RenderHTML(summary)); err != nil {
		return err
	}
	fmt.Printf("Report regenerated for %s (%d results)\n", domain, len(results))
	return nil
}

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve persisted results over a read-only JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOffline()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Server.Port = port
			}

			srv := api.NewServer(cfg.Paths.OutputDir, &report.Aggregator{TopN: cfg.Run.TopN})
			return srv.ListenAndServe(":" + cfg.Server.Port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Port to listen on")
	return cmd
}
