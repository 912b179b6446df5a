package ft

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// NextVersionName returns name with the lowest version suffix not
// already taken in dir, starting at _v2. With doc.pdf and doc_v2.pdf
// present a new doc.pdf becomes doc_v3.pdf.
func NextVersionName(fsmgr FilesystemManager, dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_v%d%s", stem, n, ext)
		exists, err := fsmgr.Exists(filepath.Join(dir, candidate))
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
}

// BackupName returns the name an overwritten document is preserved
// under next to its replacement.
func BackupName(name string, at time.Time) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	return fmt.Sprintf("%s_superseded_%s%s", stem, at.Format("20060102-150405"), ext)
}
