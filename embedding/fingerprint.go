package embedding

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-crypt/x/blake2b"
)

// fingerprintAssets hashes the model assets so operators can tell which
// model a running engine has loaded.
func fingerprintAssets(dir string) (string, error) {
	h, err := blake2b.New(16, nil)
	if err != nil {
		return "", err
	}
	for _, name := range AssetFiles {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			return "", err
		}
		h.Write([]byte(name))
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("hash %s: %w", name, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// missingAssets reports which asset files are absent from dir.
func missingAssets(dir string) []string {
	var missing []string
	for _, name := range AssetFiles {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || info.IsDir() {
			missing = append(missing, name)
		}
	}
	return missing
}
