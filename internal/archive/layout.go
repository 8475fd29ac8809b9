package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// partSuffix marks downloads that have not completed yet
const partSuffix = ".part"

// RegionDir returns the directory holding every file of a region
func RegionDir(basePath, region string) string {
	return filepath.Join(basePath, region)
}

// DestinationPath returns where the file for one variable and month is
// written: {dir}/{variable}_{year}-{month}.nc. The month is not
// zero-padded, matching files already produced by earlier loaders.
func DestinationPath(dir, variable string, year, month int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%d-%d.nc", variable, year, month))
}

// PartPath returns the hidden temporary path used while downloading to
// dest. The leading dot keeps it out of the variable's file pattern.
func PartPath(dest string) string {
	return filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+partSuffix)
}

// Files lists the regular files in dir whose name begins with variable,
// sorted by name. A missing dir yields no files.
func Files(dir, variable string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), variable) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	return files, nil
}
