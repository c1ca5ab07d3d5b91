package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/hkretail/promo-dispatch/internal/batch"
	"github.com/hkretail/promo-dispatch/internal/config"
	"github.com/hkretail/promo-dispatch/internal/drive"
	"github.com/hkretail/promo-dispatch/internal/service"
	"github.com/hkretail/promo-dispatch/internal/xlsxio"
	"github.com/hkretail/promo-dispatch/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "promocalc",
		Usage: "Calculate promotion dispatch quantities from inventory and target files",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run one calculation from local input files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "inventory",
						Usage:    "Inventory extract (File A, .csv or .xlsx)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "promotion",
						Usage:    "Promotion target workbook (File B, .xlsx)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Directory the result workbook is written to",
						Value: ".",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Result file name (timestamped automatically)",
					},
					&cli.IntFlag{
						Name:  "lead-time",
						Usage: "Lead time in days added to the demand window",
					},
					&cli.StringFlag{
						Name:  "detail-csv",
						Usage: "Also write the detail rows to this CSV file",
					},
				},
				Action: runOnce,
			},
			{
				Name:  "batch",
				Usage: "Run every input pair found under a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input-dir",
						Usage:    "Directory whose subdirectories each hold one input pair",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Directory the result workbooks are written to",
						Value: ".",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of pairs processed concurrently",
						Value: 4,
					},
					&cli.IntFlag{
						Name:  "lead-time",
						Usage: "Lead time in days added to the demand window",
					},
				},
				Action: runBatch,
			},
			{
				Name:  "fetch",
				Usage: "Download the latest input pair from Google Drive and run it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "folder-id",
						Usage:   "Drive folder holding the input files",
						EnvVars: []string{"DRIVE_FOLDER_ID"},
					},
					&cli.StringFlag{
						Name:  "download-dir",
						Usage: "Directory the inputs are downloaded to",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Directory the result workbook is written to",
					},
					&cli.BoolFlag{
						Name:  "no-run",
						Usage: "Only download, skip the calculation",
					},
				},
				Action: runFetch,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newService() *service.CalcService {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)
	return service.NewCalcService(cfg, nil, nil, nil, nil)
}

func runOnce(c *cli.Context) error {
	svc := newService()

	report, err := svc.Run(c.Context, service.RunRequest{
		InventoryPath: c.String("inventory"),
		PromotionPath: c.String("promotion"),
		OutputDir:     c.String("output-dir"),
		OutputName:    c.String("output"),
		LeadTimeDays:  c.Int("lead-time"),
	})
	if err != nil {
		return err
	}

	for _, warning := range report.Result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	if csvPath := c.String("detail-csv"); csvPath != "" {
		if err := xlsxio.WriteDetailCSV(csvPath, report.Result.Detail); err != nil {
			return err
		}
		fmt.Println(csvPath)
	}

	fmt.Println(report.OutputPath)
	return nil
}

func runBatch(c *cli.Context) error {
	svc := newService()

	pairs, err := batch.DiscoverPairs(c.String("input-dir"))
	if err != nil {
		return err
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no input pairs found under %s", c.String("input-dir"))
	}

	runner := batch.NewRunner(svc, c.Int("workers"))
	outcomes, err := runner.Run(c.Context, pairs, c.String("output-dir"), c.Int("lead-time"))
	if err != nil {
		return err
	}

	failed := 0
	for _, out := range outcomes {
		if out.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", out.Pair.Name, out.Err)
			continue
		}
		fmt.Printf("%s: %s\n", out.Pair.Name, out.OutputPath)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pairs failed", failed, len(outcomes))
	}
	return nil
}

func runFetch(c *cli.Context) error {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	credentials, err := driveCredentials(cfg.Drive)
	if err != nil {
		return err
	}
	driveService, err := drive.NewService(credentials)
	if err != nil {
		return fmt.Errorf("failed to initialize Google Drive service: %w", err)
	}

	folderID := c.String("folder-id")
	if folderID == "" {
		folderID = cfg.Drive.FolderID
	}
	downloadDir := c.String("download-dir")
	if downloadDir == "" {
		downloadDir = cfg.App.UploadDir
	}

	fetcher := drive.NewFetcher(driveService)
	inputs, err := fetcher.FetchInputs(c.Context, drive.FetchOptions{
		FolderID:        folderID,
		DownloadDir:     downloadDir,
		InventoryPrefix: drive.InventoryPrefix,
		PromotionPrefix: drive.PromotionPrefix,
	})
	if err != nil {
		return err
	}

	fmt.Println("inventory:", inputs.InventoryPath)
	fmt.Println("promotion:", inputs.PromotionPath)

	if c.Bool("no-run") {
		return nil
	}

	outputDir := c.String("output-dir")
	if outputDir == "" {
		outputDir = cfg.App.OutputDir
	}

	svc := service.NewCalcService(cfg, nil, nil, nil, nil)
	report, err := svc.Run(c.Context, service.RunRequest{
		InventoryPath: inputs.InventoryPath,
		PromotionPath: inputs.PromotionPath,
		OutputDir:     outputDir,
	})
	if err != nil {
		return err
	}

	fmt.Println(report.OutputPath)
	return nil
}

func driveCredentials(cfg config.DriveConfig) (string, error) {
	if env := os.Getenv("GOOGLE_DRIVE_CREDENTIALS_JSON"); env != "" {
		return env, nil
	}
	if cfg.CredentialsFile == "" {
		return "", fmt.Errorf("set GOOGLE_DRIVE_CREDENTIALS_JSON or DRIVE_CREDENTIALS_FILE")
	}
	data, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
