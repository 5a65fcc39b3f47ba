package fetcher_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chengyao-ihealth/ai-tools/csvio"
	"github.com/chengyao-ihealth/ai-tools/fetcher"
	"github.com/chengyao-ihealth/ai-tools/foodlogapi"
)

// fakePortal serves the food-log lookup endpoint plus the image links it
// hands out, counting image downloads.
type fakePortal struct {
	srv       *httptest.Server
	downloads atomic.Int64
	// images per food-log id
	links map[string][]string
}

func newFakePortal(t *testing.T) *fakePortal {
	t.Helper()
	p := &fakePortal{}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/img/") {
			p.downloads.Add(1)
			w.Write([]byte("image-bytes-" + filepath.Base(r.URL.Path)))
			return
		}

		fid := strings.TrimPrefix(r.URL.Path, "/")
		if r.Header.Get("x-session-token") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		links, ok := p.links[fid]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var images []map[string]string
		for _, l := range links {
			images = append(images, map[string]string{"link": p.srv.URL + l})
		}
		json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"images": images}})
	}))
	t.Cleanup(p.srv.Close)
	return p
}

func (p *fakePortal) client() *foodlogapi.Client {
	return foodlogapi.New(p.srv.URL, "test-token", 5*time.Second)
}

func writeCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "logs.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunDownloadsAndWritesBack(t *testing.T) {
	portal := newFakePortal(t)
	portal.links = map[string][]string{
		"abc":   {"/img/abc.jpg"},
		"multi": {"/img/first.jpg", "/img/second.png"},
	}

	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	csvPath := writeCSV(t, dir, "FoodLogId,MealTitle\nabc,Lunch\nmulti,Dinner\n,\nnan,Skipped\n")

	stats, err := fetcher.Run(context.Background(), fetcher.Options{
		CSVPath:   csvPath,
		ImagesDir: imagesDir,
		Client:    portal.client(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Rows)
	assert.Equal(t, 3, stats.Downloaded)
	assert.Equal(t, 0, stats.Failed)

	assert.FileExists(t, filepath.Join(imagesDir, "abc.jpg"))
	assert.FileExists(t, filepath.Join(imagesDir, "multi_0.jpg"))
	assert.FileExists(t, filepath.Join(imagesDir, "multi_1.png"))

	tbl, err := csvio.Read(csvPath)
	require.NoError(t, err)
	imgCol := tbl.ColumnIndex("ImgName")
	require.GreaterOrEqual(t, imgCol, 0)
	assert.Equal(t, "abc.jpg", tbl.Get(0, imgCol))
	assert.Equal(t, "multi_0.jpg;multi_1.png", tbl.Get(1, imgCol))
}

func TestRunIsIdempotent(t *testing.T) {
	portal := newFakePortal(t)
	portal.links = map[string][]string{"abc": {"/img/abc.jpg"}}

	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	csvPath := writeCSV(t, dir, "FoodLogId\nabc\n")

	opts := fetcher.Options{CSVPath: csvPath, ImagesDir: imagesDir, Client: portal.client()}

	_, err := fetcher.Run(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, int64(1), portal.downloads.Load())

	// second run: files recorded in ImgName exist, so no download happens
	stats, err := fetcher.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), portal.downloads.Load())
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 0, stats.Downloaded)
}

func TestRunContinuesPastFailingRow(t *testing.T) {
	portal := newFakePortal(t)
	portal.links = map[string][]string{"good": {"/img/good.jpg"}}

	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	csvPath := writeCSV(t, dir, "FoodLogId\nunknown\ngood\n")

	stats, err := fetcher.Run(context.Background(), fetcher.Options{
		CSVPath:   csvPath,
		ImagesDir: imagesDir,
		Client:    portal.client(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Downloaded)
	assert.FileExists(t, filepath.Join(imagesDir, "good.jpg"))
}

func TestRunRequiresIDColumn(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeCSV(t, dir, "MealTitle\nLunch\n")

	portal := newFakePortal(t)
	_, err := fetcher.Run(context.Background(), fetcher.Options{
		CSVPath:   csvPath,
		ImagesDir: filepath.Join(dir, "images"),
		Client:    portal.client(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FoodLogId")
}

func TestRunDoesNotOverwriteExistingFile(t *testing.T) {
	portal := newFakePortal(t)
	portal.links = map[string][]string{"abc": {"/img/abc.jpg"}}

	dir := t.TempDir()
	imagesDir := filepath.Join(dir, "images")
	require.NoError(t, os.MkdirAll(imagesDir, 0o755))
	existing := filepath.Join(imagesDir, "abc.jpg")
	require.NoError(t, os.WriteFile(existing, []byte("original"), 0o644))

	csvPath := writeCSV(t, dir, "FoodLogId\nabc\n")
	stats, err := fetcher.Run(context.Background(), fetcher.Options{
		CSVPath:   csvPath,
		ImagesDir: imagesDir,
		Client:    portal.client(),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Downloaded)
	assert.Equal(t, int64(0), portal.downloads.Load())

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data), fmt.Sprintf("existing file must stay untouched, got %q", data))
}
