package library

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/avernet/melodex/internal/metadata"
)

// discoverFiles walks the given folders and returns every supported audio
// file found, sorted for deterministic ingestion order.
func discoverFiles(folders []string) []string {
	var files []string
	for _, folder := range folders {
		_ = filepath.WalkDir(folder, func(path string, d os.DirEntry, walkErr error) error {
			// Skip any walk errors - intentionally continuing to scan other paths
			if walkErr != nil {
				return nil //nolint:nilerr // intentionally skipping errors
			}
			if d.IsDir() {
				return nil
			}
			if !metadata.IsAudioFile(path) {
				return nil
			}
			files = append(files, path)
			return nil
		})
	}
	sort.Strings(files)
	return files
}
