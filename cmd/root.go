/*
Copyright (c) 2026 moyaru <rbffo@icloud.com>
*/

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MOYARU/uxaudit/internal/app/scan"
	"github.com/MOYARU/uxaudit/internal/app/ui"
	appver "github.com/MOYARU/uxaudit/internal/version"
)

var (
	version = appver.Value

	jsonOutput bool
	maxPages   int
	depth      int
	delay      int
	categories []string
	statusAddr string
)

var rootCmd = &cobra.Command{
	Use:   "uxaudit [target]",
	Short: "uxaudit crawls a website in a headless browser and audits every page for accessibility, performance, design consistency, forms, content, SEO, navigation and dark patterns.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			ui.PrintGradientAsciiArt()
			_ = cmd.Help()
			return
		}
		opts := optionsFromFlags(cmd, args[0])
		opts.JSON = jsonOutput
		opts.StatusAddr = statusAddr
		runOrExit(opts)
	},
}

// optionsFromFlags starts from the policy file and applies the flags the
// user actually set.
func optionsFromFlags(cmd *cobra.Command, target string) scan.Options {
	opts := scan.DefaultOptions()
	opts.Target = target
	flags := cmd.Flags()
	if flags.Changed("max-pages") {
		opts.MaxPages = maxPages
	}
	if flags.Changed("depth") {
		opts.Depth = depth
	}
	if flags.Changed("delay") {
		opts.DelayMs = delay
	}
	if flags.Changed("categories") {
		opts.Categories = categories
	}
	return opts
}

func runOrExit(opts scan.Options) {
	ui.InitLogger()
	if err := scan.RunScan(opts); err != nil {
		fmt.Printf("%sScan failed: %v%s\n", ui.ColorRed, err, ui.ColorReset)
		os.Exit(1)
	}
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&maxPages, "max-pages", 10, "Maximum number of pages to audit (1-100)")
	cmd.Flags().IntVar(&depth, "depth", 2, "Crawling depth (0-5)")
	cmd.Flags().IntVar(&delay, "delay", 1000, "Delay between pages in milliseconds")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "Comma separated categories to run (default: all)")
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	addScanFlags(rootCmd)
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Save the result as a JSON report")
	rootCmd.Flags().StringVar(&statusAddr, "status-addr", "", "Serve the status endpoint on this address while the audit runs")

	rootCmd.Long = ui.AsciiArt + `
uxaudit is a UX/UI website auditor.

Usage:
   uxaudit [target_url] [flags]
   uxaudit serve [target_url] [flags]

Example:
  uxaudit https://example.com
  uxaudit https://example.com --max-pages 25 --depth 3
  uxaudit example.com --categories accessibility,seo --json
  uxaudit serve https://example.com --addr :8080

Flags:
  --max-pages          Maximum number of pages to audit (default: 10)
  --depth              Crawling depth (default: 2)
  --delay              Delay between pages in milliseconds (default: 1000)
  --categories         Categories to run: accessibility, performance,
                       design_consistency, forms, content, seo, navigation,
                       dark_patterns (default: all)
  --json               Save the result as a JSON report
  --status-addr        Serve GET /audits/{id} while the audit runs

Defaults can be pinned in .uxaudit.yaml in the working directory.
Only audit sites you own or have permission to crawl.
`
}
