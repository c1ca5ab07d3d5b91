package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default name prefixes the replenishment team uses for the two inputs.
const (
	InventoryPrefix = "Promotion Target File A"
	PromotionPrefix = "Promotion Target File B"
)

// FetchOptions controls where inputs are looked for and stored.
type FetchOptions struct {
	FolderID        string
	DownloadDir     string
	InventoryPrefix string
	PromotionPrefix string
}

// FetchedInputs are the local paths of one downloaded input pair.
type FetchedInputs struct {
	InventoryPath string
	PromotionPath string
}

// Fetcher pulls the newest inventory extract and promotion workbook from a
// Drive folder.
type Fetcher struct {
	service *Service
}

func NewFetcher(s *Service) *Fetcher {
	return &Fetcher{service: s}
}

// FetchInputs downloads the latest matching pair. The inventory extract may
// be .csv or .xlsx; an .xlsx extract has its data sheet converted to CSV so
// downstream processing is uniform. The promotion workbook keeps its .xlsx
// form since both of its sheets are needed.
func (f *Fetcher) FetchInputs(ctx context.Context, opts FetchOptions) (*FetchedInputs, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	inventoryPrefix := opts.InventoryPrefix
	if inventoryPrefix == "" {
		inventoryPrefix = InventoryPrefix
	}
	promotionPrefix := opts.PromotionPrefix
	if promotionPrefix == "" {
		promotionPrefix = PromotionPrefix
	}

	inventoryPath, err := f.fetchInventory(ctx, opts.FolderID, inventoryPrefix, opts.DownloadDir)
	if err != nil {
		return nil, err
	}

	promotion, err := f.service.FindLatest(opts.FolderID, promotionPrefix, ".xlsx")
	if err != nil {
		return nil, err
	}
	if promotion == nil {
		return nil, fmt.Errorf("no promotion workbook matching %q found in folder", promotionPrefix)
	}
	promotionPath, err := f.download(ctx, promotion, opts.DownloadDir)
	if err != nil {
		return nil, err
	}

	return &FetchedInputs{
		InventoryPath: inventoryPath,
		PromotionPath: promotionPath,
	}, nil
}

func (f *Fetcher) fetchInventory(ctx context.Context, folderID, prefix, dir string) (string, error) {
	file, err := f.service.FindLatest(folderID, prefix, ".csv", ".xlsx")
	if err != nil {
		return "", err
	}
	if file == nil {
		return "", fmt.Errorf("no inventory extract matching %q found in folder", prefix)
	}

	localPath, err := f.download(ctx, file, dir)
	if err != nil {
		return "", err
	}

	if strings.EqualFold(filepath.Ext(localPath), ".xlsx") {
		csvPath := strings.TrimSuffix(localPath, filepath.Ext(localPath)) + ".csv"
		if err := inventoryToCSV(localPath, csvPath); err != nil {
			return "", fmt.Errorf("failed to convert %s to csv: %w", file.Name, err)
		}
		_ = os.Remove(localPath)
		return csvPath, nil
	}

	return localPath, nil
}

func (f *Fetcher) download(ctx context.Context, file *File, dir string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	localPath := filepath.Join(dir, file.Name)
	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	if err := f.service.DownloadFile(file.ID, out); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to download %s: %w", file.Name, err)
	}
	out.Close()

	return localPath, nil
}
