package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/yurifrl/nettou/pkg/config"
	"github.com/yurifrl/nettou/pkg/csv"
	"github.com/yurifrl/nettou/pkg/models"
	"github.com/yurifrl/nettou/pkg/report"
	"github.com/yurifrl/nettou/pkg/service"
)

const store = "Netto"

var (
	cliFilters   filters
	cfgFile      string
	verbose      bool
	yamlOutput   bool
	showProducts bool
	dumpRecords  bool
)

var rootCmd = &cobra.Command{
	Use:           "nettou",
	Short:         "Summarise Netto receipts from your mailbox",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		// Show help when no subcommand is provided
		return cmd.Help()
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Fetch receipts over IMAP and print spending statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ledger, err := mailboxLedger(cmd)
		if err != nil {
			return err
		}
		return printSummary(cmd.OutOrStdout(), ledger)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Fetch receipts over IMAP and print every purchase as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ledger, err := mailboxLedger(cmd)
		if err != nil {
			return err
		}
		keep, err := cliFilters.toFilterFunc()
		if err != nil {
			return err
		}
		return csv.Write(cmd.OutOrStdout(), ledger.Records(), keep)
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <path>",
	Short: "Parse receipt emails saved to disk (file, directory or glob)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		processor := service.NewProcessor(config.New(), logger)
		ledger, err := processor.ProcessPath(args[0])
		if err != nil {
			return err
		}

		if dumpRecords {
			return dump(cmd.OutOrStdout(), ledger)
		}
		return printSummary(cmd.OutOrStdout(), ledger)
	},
}

func newLogger() *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    verbose,
		ReportTimestamp: true,
		Prefix:          "nettou",
		Level:           level,
	})
}

func mailboxLedger(cmd *cobra.Command) (*models.Ledger, error) {
	logger := newLogger()

	// Load configuration (config file + env + flag overrides)
	cfg, err := config.Build(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	return service.NewProcessor(cfg, logger).ProcessMailbox()
}

func printSummary(w io.Writer, ledger *models.Ledger) error {
	keep, err := cliFilters.toFilterFunc()
	if err != nil {
		return err
	}

	s, err := report.Summarize(ledger.Filter(keep))
	if err != nil {
		return err
	}

	if yamlOutput {
		return report.WriteYAML(w, s)
	}
	report.Print(w, s, store)
	if showProducts {
		fmt.Fprintln(w)
		report.PrintProducts(w, s)
	}
	return nil
}

type dumpRow struct {
	Time    string
	Product string
	Amount  int
	Price   string
}

func dump(w io.Writer, ledger *models.Ledger) error {
	keep, err := cliFilters.toFilterFunc()
	if err != nil {
		return err
	}

	var rows []dumpRow
	for _, r := range ledger.Filter(keep).Records() {
		rows = append(rows, dumpRow{
			Time:    r.Time().Format("2006-01-02 15:04:05"),
			Product: r.Product(),
			Amount:  r.Amount(),
			Price:   r.Price().StringFixed(2),
		})
	}

	printer := pp.New()
	printer.SetOutput(w)
	if w != os.Stdout {
		printer.SetColoringEnabled(false)
	}
	_, err = printer.Println(rows)
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Mailbox flags, bound to the configuration keys of the same name
	rootCmd.PersistentFlags().String(config.KeyServer, "", "IMAP server, host or host:port (default "+config.DefaultServer+")")
	rootCmd.PersistentFlags().String(config.KeyUser, "", "IMAP username")
	rootCmd.PersistentFlags().String(config.KeyPassword, "", "IMAP password")
	rootCmd.PersistentFlags().String(config.KeyFolder, "", "Folder holding the receipts (default "+config.DefaultFolder+")")
	rootCmd.PersistentFlags().String(config.KeySender, "", "Receipt sender address (default "+config.DefaultSender+")")

	// Filter flags (global)
	rootCmd.PersistentFlags().StringVar(&cliFilters.startDate, "start", "", "Start date (YYYY/MM/DD)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.endDate, "end", "", "End date (YYYY/MM/DD)")
	rootCmd.PersistentFlags().StringVar(&cliFilters.product, "product", "", "Filter by product (case insensitive)")
	rootCmd.PersistentFlags().BoolVar(&cliFilters.noDeposit, "no-pant", false, "Leave out bottle deposit records")

	summaryCmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Print the summary as YAML")
	summaryCmd.Flags().BoolVar(&showProducts, "products", false, "Also list the totals of every product")
	parseCmd.Flags().BoolVar(&yamlOutput, "yaml", false, "Print the summary as YAML")
	parseCmd.Flags().BoolVar(&showProducts, "products", false, "Also list the totals of every product")
	parseCmd.Flags().BoolVar(&dumpRecords, "dump", false, "Pretty-print the parsed records instead of a summary")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(parseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
