package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hkretail/promo-dispatch/internal/config"
	"github.com/hkretail/promo-dispatch/internal/storage"
)

// runPullArchive downloads every object under the given prefix from the
// configured archive bucket, mirroring the key layout under --dest.
func runPullArchive(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Archive.Enabled {
		return fmt.Errorf("archive storage is not configured (set ARCHIVE_ENABLED and friends)")
	}

	client, err := storage.NewS3Client(cfg.Archive)
	if err != nil {
		return err
	}

	destDir := c.String("dest")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure download dir %s: %w", destDir, err)
	}

	paths, err := downloadArchived(c.Context, client, c.String("prefix"), destDir)
	if err != nil {
		return err
	}

	for _, path := range paths {
		log.Printf("downloaded %s", path)
	}
	log.Printf("Pulled %d archived artifacts", len(paths))
	return nil
}

func downloadArchived(ctx context.Context, client storage.ObjectStorage, prefix, destDir string) ([]string, error) {
	listPrefix := strings.TrimSpace(prefix)
	objects, err := client.ListObjects(ctx, listPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive objects for prefix %s: %w", listPrefix, err)
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("no archived artifacts found for prefix %s", listPrefix)
	}

	localPaths := make([]string, 0, len(objects))
	for _, obj := range objects {
		localPath := filepath.Join(destDir, objectRelativePath(listPrefix, obj.Key))
		if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to prepare directory for %s: %w", localPath, err)
		}
		if err := client.DownloadObject(ctx, obj.Key, localPath); err != nil {
			return nil, err
		}
		localPaths = append(localPaths, localPath)
	}

	sort.Strings(localPaths)
	return localPaths, nil
}

func objectRelativePath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	prefixTrimmed := strings.TrimSuffix(strings.TrimSpace(prefix), "/")
	rel := strings.TrimPrefix(key, prefixTrimmed+"/")
	if rel == "" {
		return filepath.Base(key)
	}
	return rel
}
