package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/chengyao-ihealth/ai-tools/internal/logger"
	"github.com/chengyao-ihealth/ai-tools/config"
	"github.com/chengyao-ihealth/ai-tools/fetcher"
	"github.com/chengyao-ihealth/ai-tools/foodlogapi"
)

var (
	csvPath   string
	imagesDir string
)

var rootCmd = &cobra.Command{
	Use:   "fetchimages",
	Short: "Download the images behind every FoodLogId row of a CSV",
	Long: `fetchimages resolves each FoodLogId of the CSV against the care-portal
food-log API and downloads any image not already present in the images
directory. Existing files are never overwritten; a failing row is logged
and skipped. The ImgName column is written back with the saved filenames.

The session token comes from the FOODLOG_SESSION_TOKEN environment variable
(grab it from the care-portal session storage).`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&csvPath, "csv", "", "CSV file path with a FoodLogId column (required)")
	rootCmd.Flags().StringVar(&imagesDir, "images", "./images", "directory to download images into")
	rootCmd.MarkFlagRequired("csv")
}

func run(cmd *cobra.Command, args []string) error {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	token := os.Getenv("FOODLOG_SESSION_TOKEN")
	if token == "" {
		return errors.New("FOODLOG_SESSION_TOKEN is not set")
	}

	client := foodlogapi.New(cfg.FoodLogAPI.BaseURL, token, time.Duration(cfg.FoodLogAPI.TimeoutSeconds)*time.Second)

	stats, err := fetcher.Run(cmd.Context(), fetcher.Options{
		CSVPath:   csvPath,
		ImagesDir: imagesDir,
		Client:    client,
	})
	if err != nil {
		return err
	}

	logger.InfoWithFields("fetch complete", logger.Fields{
		"rows":       stats.Rows,
		"downloaded": stats.Downloaded,
		"skipped":    stats.Skipped,
		"failed":     stats.Failed,
	})
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
