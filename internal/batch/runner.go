package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hkretail/promo-dispatch/internal/service"
)

// Pair is one inventory extract + promotion workbook to calculate together.
type Pair struct {
	Name          string
	InventoryPath string
	PromotionPath string
}

// Runner executes many calculation pairs concurrently with a bounded worker
// pool. Each pair is independent; one failed pair does not stop the others.
type Runner struct {
	svc     *service.CalcService
	workers int
}

func NewRunner(svc *service.CalcService, workers int) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{svc: svc, workers: workers}
}

// Outcome records how one pair went.
type Outcome struct {
	Pair       Pair
	RunID      int64
	OutputPath string
	Err        error
}

// Run processes all pairs and returns one outcome per pair, in completion
// order. The only error returned directly is context cancellation.
func (r *Runner) Run(ctx context.Context, pairs []Pair, outputDir string, leadTime int) ([]Outcome, error) {
	jobChan := make(chan Pair, len(pairs))
	outChan := make(chan Outcome, len(pairs))
	var wg sync.WaitGroup

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pair := range jobChan {
				outChan <- r.runOne(ctx, pair, outputDir, leadTime)
			}
		}()
	}

	for _, pair := range pairs {
		select {
		case <-ctx.Done():
			close(jobChan)
			wg.Wait()
			return nil, ctx.Err()
		case jobChan <- pair:
		}
	}
	close(jobChan)
	wg.Wait()
	close(outChan)

	outcomes := make([]Outcome, 0, len(pairs))
	for out := range outChan {
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func (r *Runner) runOne(ctx context.Context, pair Pair, outputDir string, leadTime int) Outcome {
	outputName := ""
	if pair.Name != "" {
		outputName = pair.Name + "_Result.xlsx"
	}

	report, err := r.svc.Run(ctx, service.RunRequest{
		InventoryPath: pair.InventoryPath,
		PromotionPath: pair.PromotionPath,
		OutputDir:     outputDir,
		OutputName:    outputName,
		LeadTimeDays:  leadTime,
	})
	if err != nil {
		log.Error().Err(err).Str("pair", pair.Name).Msg("batch pair failed")
		return Outcome{Pair: pair, Err: err}
	}

	return Outcome{
		Pair:       pair,
		RunID:      report.RunID,
		OutputPath: report.OutputPath,
	}
}

// DiscoverPairs scans the immediate subdirectories of root: each one that
// holds exactly one inventory extract (file name containing "file a",
// .csv/.xlsx) and one promotion workbook ("file b", .xlsx) becomes a Pair
// named after the directory. Directories missing either file are skipped
// with a warning.
func DiscoverPairs(root string) ([]Pair, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch dir %s: %w", root, err)
	}

	var pairs []Pair
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())

		inventory, promotion, err := findPairFiles(dir)
		if err != nil {
			return nil, err
		}
		if inventory == "" || promotion == "" {
			log.Warn().Str("dir", dir).Msg("skipping directory without a complete input pair")
			continue
		}

		pairs = append(pairs, Pair{
			Name:          entry.Name(),
			InventoryPath: inventory,
			PromotionPath: promotion,
		})
	}

	return pairs, nil
}

func findPairFiles(dir string) (inventory, promotion string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", "", fmt.Errorf("failed to read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		ext := filepath.Ext(name)
		path := filepath.Join(dir, entry.Name())

		switch {
		case strings.Contains(name, "file a") && (ext == ".csv" || ext == ".xlsx"):
			inventory = path
		case strings.Contains(name, "file b") && ext == ".xlsx":
			promotion = path
		}
	}

	return inventory, promotion, nil
}
