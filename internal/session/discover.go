package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/born-ml/msnet/internal/moe"
)

// ModelExt is the file extension of loadable models.
const ModelExt = ".onnx"

// Loader loads the model file at path.
type Loader func(path string) (moe.Model, error)

// IsModelFile reports whether name looks like a loadable model file.
func IsModelFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ModelExt) && len(name) > len(ModelExt)
}

// ExpertKey returns the expert key for a model file: its base name
// without extension.
func ExpertKey(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// ListModels returns the model files directly inside dir, sorted by
// name. Other entries, including subdirectories, are ignored.
func ListModels(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read expert dir: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsModelFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}

// Discover loads every model file returned by ListModels and keys it by
// ExpertKey. Any load failure aborts discovery; finding no model returns
// moe.ErrNoExperts.
func Discover(dir string, load Loader) (map[string]moe.Model, error) {
	paths, err := ListModels(dir)
	if err != nil {
		return nil, err
	}

	models := make(map[string]moe.Model, len(paths))
	for _, path := range paths {
		key := ExpertKey(path)
		if _, dup := models[key]; dup {
			return nil, fmt.Errorf("duplicate expert key %q in %s", key, dir)
		}
		m, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load expert %s: %w", filepath.Base(path), err)
		}
		models[key] = m
	}

	if len(models) == 0 {
		return nil, fmt.Errorf("%w in %s", moe.ErrNoExperts, dir)
	}
	return models, nil
}
