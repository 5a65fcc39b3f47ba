package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chengyao-ihealth/ai-tools/internal/logger"
	"github.com/chengyao-ihealth/ai-tools/csvio"
	"github.com/chengyao-ihealth/ai-tools/foodlogapi"
	"github.com/chengyao-ihealth/ai-tools/models"
)

// IDColumn and ImageColumn are the CSV columns the fetcher works with.
// The export of the query tool produces both.
const (
	IDColumn    = "FoodLogId"
	ImageColumn = "ImgName"
)

type Options struct {
	CSVPath   string
	ImagesDir string
	Client    *foodlogapi.Client
}

// Stats summarizes one batch run.
type Stats struct {
	Rows       int
	Downloaded int
	Skipped    int
	Failed     int
}

// Run resolves every FoodLogId row of the CSV to its remote image links
// and downloads whatever is not already on disk. Presence of a file is
// treated as cache-valid; nothing is ever overwritten. A failing row is
// logged and skipped, the batch always continues. The ImgName column is
// rewritten with the semicolon-joined saved names and the CSV is written
// back in place.
func Run(ctx context.Context, opts Options) (Stats, error) {
	var stats Stats

	t, err := csvio.Read(opts.CSVPath)
	if err != nil {
		return stats, err
	}
	idCol := t.ColumnIndex(IDColumn)
	if idCol < 0 {
		return stats, fmt.Errorf("csv %s must contain a %s column", opts.CSVPath, IDColumn)
	}
	imgCol := t.EnsureColumn(ImageColumn)

	if err := os.MkdirAll(opts.ImagesDir, 0o755); err != nil {
		return stats, err
	}

	for i := range t.Rows {
		fid := strings.TrimSpace(t.Get(i, idCol))
		if fid == "" || strings.EqualFold(fid, "nan") {
			continue
		}
		stats.Rows++

		// A row whose recorded files are all on disk needs no lookup at all.
		if names := models.SplitImageNames(t.Get(i, imgCol)); len(names) > 0 && allExist(opts.ImagesDir, names) {
			stats.Skipped++
			continue
		}

		images, err := opts.Client.GetImages(ctx, fid)
		if err != nil {
			logger.ErrorWithFields("food-log lookup failed", logger.Fields{"food_log_id": fid, "error": err.Error()})
			stats.Failed++
			continue
		}

		var saved []string
		for idx, img := range images {
			ext := foodlogapi.GuessExt(img.Link)
			name := fid + ext
			if len(images) > 1 {
				name = fmt.Sprintf("%s_%d%s", fid, idx, ext)
			}
			fpath := filepath.Join(opts.ImagesDir, name)

			if _, err := os.Stat(fpath); err == nil {
				saved = append(saved, name)
				continue
			}

			data, err := opts.Client.Download(ctx, img.Link)
			if err != nil {
				logger.WarnWithFields("image download failed", logger.Fields{"food_log_id": fid, "link": img.Link, "error": err.Error()})
				continue
			}
			if err := os.WriteFile(fpath, data, 0o644); err != nil {
				logger.ErrorWithFields("image write failed", logger.Fields{"path": fpath, "error": err.Error()})
				continue
			}
			stats.Downloaded++
			saved = append(saved, name)
		}

		t.Set(i, imgCol, strings.Join(saved, ";"))
		logger.InfoWithFields("food-log images resolved", logger.Fields{"food_log_id": fid, "files": strings.Join(saved, ";")})
	}

	// Write the resolved filenames back so the gallery can pick them up.
	if err := t.Write(opts.CSVPath); err != nil {
		return stats, fmt.Errorf("write back %s: %w", opts.CSVPath, err)
	}
	return stats, nil
}

func allExist(dir string, names []string) bool {
	for _, n := range names {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			return false
		}
	}
	return true
}
