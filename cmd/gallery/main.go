package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/chengyao-ihealth/ai-tools/internal/logger"
	"github.com/chengyao-ihealth/ai-tools/config"
	"github.com/chengyao-ihealth/ai-tools/csvio"
	"github.com/chengyao-ihealth/ai-tools/gallery"
)

var (
	csvPath    string
	imagesDir  string
	outPath    string
	pageTitle  string
	thumbWidth uint
	openAfter  bool
)

var rootCmd = &cobra.Command{
	Use:   "gallery",
	Short: "Render a food-log CSV into a self-contained HTML gallery",
	Long: `gallery loads a food-log CSV, inlines the referenced images as base64
data URIs and writes one static HTML page with a card per entry. JSON-valued
columns are pretty-printed; reviewer comments and ingredients get a
structured layout. Missing images show as placeholders instead of failing
the run.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&csvPath, "csv", "", "CSV file path (required)")
	rootCmd.Flags().StringVar(&imagesDir, "images", "./images", "directory holding the downloaded images")
	rootCmd.Flags().StringVar(&outPath, "out", "gallery.html", "output HTML filename")
	rootCmd.Flags().StringVar(&pageTitle, "title", "", "HTML page title (default from config)")
	rootCmd.Flags().UintVar(&thumbWidth, "thumb-width", 0, "max embedded image width in pixels (0 = original size)")
	rootCmd.Flags().BoolVar(&openAfter, "open", false, "open the generated file in the default viewer")
	rootCmd.MarkFlagRequired("csv")
}

func run(cmd *cobra.Command, args []string) error {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	if pageTitle == "" {
		pageTitle = cfg.Gallery.Title
	}

	t, err := csvio.Read(csvPath)
	if err != nil {
		return err
	}

	html, err := gallery.Render(t, gallery.Options{
		ImagesDir:  imagesDir,
		Title:      pageTitle,
		ThumbWidth: thumbWidth,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		return err
	}
	logger.InfoWithFields("gallery generated", logger.Fields{"out": outPath, "entries": len(t.Rows)})

	if openAfter {
		abs, err := filepath.Abs(outPath)
		if err != nil {
			abs = outPath
		}
		if err := openFile(abs); err != nil {
			logger.WarnWithFields("failed to open gallery", logger.Fields{"path": abs, "error": err.Error()})
		}
	}
	return nil
}

// openFile hands the path to the OS default opener.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", path)
	case "darwin":
		cmd = exec.Command("open", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	return cmd.Start()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
