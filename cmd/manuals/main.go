package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"ai-llm-demos-be/internal/pkg/logger"
	"ai-llm-demos-be/pkg/manual"

	"github.com/spf13/cobra"
)

var (
	devicesFile   string
	downloadDir   string
	textDir       string
	skipHosts     []string
	insecureHosts []string
	jsonOutput    bool
)

var rootCmd = &cobra.Command{
	Use:   "manuals",
	Short: "Download device manuals and extract their text",
	Long:  `Download the manual PDF of every device in a JSON device file and extract its plain text for the inventory service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(devicesFile)
		if err != nil {
			return fmt.Errorf("read devices file: %w", err)
		}
		var devices []manual.Device
		if err := json.Unmarshal(raw, &devices); err != nil {
			return fmt.Errorf("parse devices file: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		pipeline := manual.NewPipeline(manual.Options{
			DownloadDir:   downloadDir,
			TextDir:       textDir,
			SkipHosts:     skipHosts,
			InsecureHosts: insecureHosts,
		}, manual.NewPDFExtractor(), logger.NewZapLogger("logs/manuals.log", false))

		results, err := pipeline.Run(ctx, devices)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(results)
		}

		fmt.Println("=== SUMMARY ===")
		for _, r := range results {
			switch r.Status {
			case manual.StatusSuccess, manual.StatusPartial:
				fmt.Printf("%s: %s (%d characters) -> %s\n", r.Device, r.Status, r.TextLength, r.TextFile)
			default:
				fmt.Printf("%s: %s (%s)\n", r.Device, r.Status, r.Error)
			}
		}
		counts := manual.Tally(results)
		fmt.Printf("Total: %d, success: %d, partial: %d, download failed: %d, errors: %d\n",
			len(results),
			counts[manual.StatusSuccess],
			counts[manual.StatusPartial],
			counts[manual.StatusDownloadFailed],
			counts[manual.StatusError])
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&devicesFile, "devices", "d", "devices.json", "JSON file with [{name, manual}] entries")
	rootCmd.Flags().StringVar(&downloadDir, "download-dir", "downloads", "directory for downloaded PDFs")
	rootCmd.Flags().StringVar(&textDir, "text-dir", "extracted_text", "directory for extracted text")
	rootCmd.Flags().StringSliceVar(&skipHosts, "skip-host", []string{"napatech.com"}, "hosts that are never fetched")
	rootCmd.Flags().StringSliceVar(&insecureHosts, "insecure-host", []string{"docs.qualcomm.com"}, "hosts fetched without certificate verification")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
