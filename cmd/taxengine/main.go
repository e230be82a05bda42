package main

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/finhelm/taxengine/internal/api"
	"github.com/finhelm/taxengine/internal/config"
	"github.com/finhelm/taxengine/internal/domain"
	"github.com/finhelm/taxengine/internal/output"
	"github.com/finhelm/taxengine/internal/pipeline"
	"github.com/finhelm/taxengine/internal/report"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "taxengine",
	Short: "Federal tax computation engine CLI",
	Long:  "Calculates 2025 federal income tax returns with AMT, passive-loss, foreign-tax-credit, and entity-structure analysis",
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [input-file]",
	Short: "Run a tax calculation from a YAML input file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		strict, _ := cmd.Flags().GetBool("strict")
		verbose, _ := cmd.Flags().GetBool("verbose")

		parser := config.NewInputParser()
		input, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		var opts []pipeline.Option
		if verbose {
			opts = append(opts, pipeline.WithLogger(simpleCLILogger{}))
		}
		p := pipeline.New(domain.NewTaxYear2025(), opts...)
		res, err := p.Calculate(cmd.Context(), pipeline.Request{
			Return:   &input.TaxReturn,
			Prior:    input.Prior,
			UseCache: input.UseCache && !noCache,
			Strict:   input.Strict || strict,
		})
		if err != nil {
			return err
		}
		return output.GenerateReport(res, format)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		// .env is optional; real deployments set the environment directly.
		_ = godotenv.Load()

		var store report.Store
		if url := os.Getenv("DATABASE_URL"); url != "" {
			pgStore, err := report.NewPostgresStore(cmd.Context(), url)
			if err != nil {
				return fmt.Errorf("connect report store: %w", err)
			}
			if err := pgStore.InitSchema(cmd.Context()); err != nil {
				return fmt.Errorf("initialize report schema: %w", err)
			}
			store = pgStore
		} else {
			log.Println("DATABASE_URL not set; using in-memory report store")
			store = report.NewMemoryStore()
		}

		router := api.SetupRouter(pipeline.New(domain.NewTaxYear2025()), store)
		log.Printf("listening on %s", addr)
		return router.Run(addr)
	},
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "taxengine %s (commit %s, built %s)\n", version, commit, date)
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

func init() {
	calculateCmd.Flags().String("format", "console", "Output format: console or json")
	calculateCmd.Flags().Bool("no-cache", false, "Disable the result cache for this run")
	calculateCmd.Flags().Bool("strict", false, "Abort on validation errors instead of accumulating them")
	calculateCmd.Flags().Bool("verbose", false, "Log calculation detail")

	serveCmd.Flags().String("addr", ":8080", "Listen address")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(migrateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
