package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chengyao-ihealth/ai-tools/internal/logger"
	"github.com/chengyao-ihealth/ai-tools/config"
	"github.com/chengyao-ihealth/ai-tools/db"
	"github.com/chengyao-ihealth/ai-tools/export"
	"github.com/chengyao-ihealth/ai-tools/repositories"
)

var (
	mongoURI      string
	database      string
	startDateStr  string
	endDateStr    string
	days          int
	limitPatients int
	patientIDsStr string
	outputPath    string
	noExport      bool
)

var rootCmd = &cobra.Command{
	Use:   "queryfoodlogs",
	Short: "Query food logs from MongoDB for enrolled patients",
	Long: `queryfoodlogs reads the patient ids from uc_enrolled_programs, queries
their food_logs within a time window (newest first), prints a summary and
exports the result as CSV. Logs without images are dropped from the export.
Read-only, one-shot.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI (default: MONGO_DATABASE_URI env)")
	rootCmd.Flags().StringVar(&database, "database", "", "database name (default from config)")
	rootCmd.Flags().StringVar(&startDateStr, "start-date", "", "start date (YYYY-MM-DD)")
	rootCmd.Flags().StringVar(&endDateStr, "end-date", "", "end date (YYYY-MM-DD, inclusive)")
	rootCmd.Flags().IntVar(&days, "days", 0, "lookback window in days from now (overrides the explicit dates)")
	rootCmd.Flags().IntVar(&limitPatients, "limit-patients", 0, "limit the number of patients to query (0 = all)")
	rootCmd.Flags().StringVar(&patientIDsStr, "patient-ids", "", "comma-separated patient ids, skips the enrolled-programs lookup")
	rootCmd.Flags().StringVar(&outputPath, "output", "food_logs.csv", "output CSV file path")
	rootCmd.Flags().BoolVar(&noExport, "no-export", false, "print the summary only, skip the CSV export")
}

func run(cmd *cobra.Command, args []string) error {
	config.InitApp()
	cfg := config.GetConfig()
	logger.Init(cfg.Logging.Level)

	ctx := cmd.Context()

	uri := mongoURI
	if uri == "" {
		uri = os.Getenv("MONGO_DATABASE_URI")
	}
	dbName := database
	if dbName == "" {
		dbName = cfg.Mongo.Database
	}

	if err := db.Init(ctx, uri, dbName); err != nil {
		return fmt.Errorf("connect to mongo: %w", err)
	}
	defer db.Close(ctx)
	logger.Log.Info("mongo connection established")

	// Patient ids: explicit list wins over the enrolled-programs lookup.
	var patientIDs []string
	if patientIDsStr != "" {
		for _, id := range strings.Split(patientIDsStr, ",") {
			if id = strings.TrimSpace(id); id != "" {
				patientIDs = append(patientIDs, id)
			}
		}
		logger.InfoWithFields("using provided patient ids", logger.Fields{"count": len(patientIDs)})
	} else {
		repo := repositories.NewEnrolledProgramRepository(db.Database())
		var err error
		patientIDs, err = repo.PatientIDs(ctx, limitPatients)
		if err != nil {
			return fmt.Errorf("fetch patient ids: %w", err)
		}
	}
	if len(patientIDs) == 0 {
		logger.Log.Warn("no patient ids found")
		return nil
	}

	start, end, err := dateWindow()
	if err != nil {
		return err
	}

	foodLogs := repositories.NewFoodLogRepository(db.Database())
	if total, err := foodLogs.CountAll(ctx); err == nil {
		logger.InfoWithFields("food_logs collection size", logger.Fields{"total": total})
	}

	docs, err := foodLogs.FindByMembers(ctx, patientIDs, start, end)
	if err != nil {
		return fmt.Errorf("query food logs: %w", err)
	}

	table := export.FromDocuments(docs)
	if dropped := export.Dropped(docs); dropped > 0 {
		logger.InfoWithFields("dropped records with empty images", logger.Fields{"count": dropped})
	}

	totalValid, _ := foodLogs.CountValid(ctx)
	printSummary(docs, table.Rows, totalValid, len(patientIDs))

	if noExport || len(table.Rows) == 0 {
		return nil
	}
	if err := table.Write(outputPath); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	logger.InfoWithFields("exported", logger.Fields{"output": outputPath, "rows": len(table.Rows)})
	return nil
}

// dateWindow resolves the --days / --start-date / --end-date flags into an
// optional createdAt range. --days wins over the explicit dates; an
// explicit end date is pinned to the end of its day.
func dateWindow() (*time.Time, *time.Time, error) {
	if days > 0 {
		end := time.Now()
		start := end.AddDate(0, 0, -days)
		logger.InfoWithFields("querying lookback window", logger.Fields{"days": days})
		return &start, &end, nil
	}

	var start, end *time.Time
	if startDateStr != "" {
		t, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --start-date %q: %w", startDateStr, err)
		}
		start = &t
	}
	if endDateStr != "" {
		t, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --end-date %q: %w", endDateStr, err)
		}
		t = t.Add(24*time.Hour - time.Second)
		end = &t
	}
	return start, end, nil
}

func printSummary(docs []bson.M, rows [][]string, totalValid int64, enrolled int) {
	patients := map[string]bool{}
	var minAt, maxAt time.Time
	for _, doc := range docs {
		switch v := doc["memberId"].(type) {
		case primitive.ObjectID:
			patients[v.Hex()] = true
		case string:
			patients[v] = true
		}
		if dt, ok := doc["createdAt"].(primitive.DateTime); ok {
			t := dt.Time()
			if minAt.IsZero() || t.Before(minAt) {
				minAt = t
			}
			if t.After(maxAt) {
				maxAt = t
			}
		}
	}

	fmt.Println("Summary:")
	fmt.Printf("  - Valid food logs: %d\n", len(rows))
	fmt.Printf("  - Patients with food logs: %d\n", len(patients))
	fmt.Printf("  - Total valid food logs in database: %d\n", totalValid)
	fmt.Printf("  - Total enrolled patients: %d\n", enrolled)
	if !minAt.IsZero() {
		fmt.Printf("  - Date range: %s to %s\n", minAt.UTC().Format(time.RFC3339), maxAt.UTC().Format(time.RFC3339))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
