package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/msnet/internal/config"
	"github.com/born-ml/msnet/internal/moe"
	"github.com/born-ml/msnet/internal/session"
)

// fakeModels maps file base names to scripted logits.
type fakeModels map[string][]float32

func (f fakeModels) factory(released *int) LoaderFactory {
	return func(*config.Config) (session.Loader, func(), error) {
		load := func(path string) (moe.Model, error) {
			logits, ok := f[filepath.Base(path)]
			if !ok {
				return nil, errors.New("unreadable model")
			}
			return moe.ModelFunc(func([]float32) ([]float32, error) {
				return append([]float32{}, logits...), nil
			}), nil
		}
		return load, func() { *released++ }, nil
	}
}

func setup(t *testing.T, experts ...string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	expertDir := filepath.Join(dir, "experts")
	require.NoError(t, os.Mkdir(expertDir, 0o755))
	for _, name := range experts {
		require.NoError(t, os.WriteFile(filepath.Join(expertDir, name), nil, 0o600))
	}

	cfg := config.Default()
	cfg.RouterModelPath = filepath.Join(dir, "router.onnx")
	cfg.ExpertModelDir = expertDir
	cfg.InputChannels, cfg.InputHeight, cfg.InputWidth = 1, 2, 2
	return &cfg
}

func TestBuild(t *testing.T) {
	cfg := setup(t, "1_2.onnx", "0_3.onnx", "README.md")
	models := fakeModels{
		"router.onnx": {0.1, 0.9, 0.2, 0.05},
		"1_2.onnx":    {0.2, 0.7, 0.3, 0.1},
		"0_3.onnx":    {1, 0, 0, 1},
	}
	released := 0

	p, err := Build(cfg, WithLoaderFactory(models.factory(&released)))
	require.NoError(t, err)

	assert.Equal(t, []string{"0_3", "1_2"}, p.Experts().Keys())

	res, err := p.PredictDetailed(make([]float32, 4))
	require.NoError(t, err)
	assert.Equal(t, "1_2", res.Expert)
	assert.Equal(t, 1, res.Class)

	p.Close()
	p.Close()
	assert.Equal(t, 1, released)
}

func TestBuild_NoExperts(t *testing.T) {
	cfg := setup(t, "notes.txt")
	released := 0

	_, err := Build(cfg, WithLoaderFactory(fakeModels{"router.onnx": {1, 2}}.factory(&released)))
	require.ErrorIs(t, err, moe.ErrNoExperts)
	assert.Equal(t, 1, released)
}

func TestBuild_RouterLoadFailure(t *testing.T) {
	cfg := setup(t, "1_2.onnx")
	released := 0

	_, err := Build(cfg, WithLoaderFactory(fakeModels{"1_2.onnx": {1, 2}}.factory(&released)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load router")
	assert.Equal(t, 1, released)
}

func TestBuild_ExpertLoadFailure(t *testing.T) {
	cfg := setup(t, "1_2.onnx", "broken.onnx")
	released := 0
	models := fakeModels{"router.onnx": {1, 2}, "1_2.onnx": {1, 2}}

	_, err := Build(cfg, WithLoaderFactory(models.factory(&released)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.onnx")
}

func TestBuild_Observers(t *testing.T) {
	cfg := setup(t, "1_2.onnx", "x_2.onnx")
	models := fakeModels{
		"router.onnx": {0.1, 0.9, 0.2},
		"1_2.onnx":    {0.2, 0.7, 0.3},
		"x_2.onnx":    {0.2, 0.7, 0.3},
	}
	released := 0
	obs := &countingObserver{}

	p, err := Build(cfg, WithLoaderFactory(models.factory(&released)), WithObserver(obs), WithObserver(moe.NopObserver{}))
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 1, obs.skipped)
	_, err = p.Predict(make([]float32, 4))
	require.NoError(t, err)
	assert.Equal(t, 1, obs.predicted)
}

func TestONNXLoaders_MissingRouter(t *testing.T) {
	cfg := setup(t, "1_2.onnx")

	_, err := Build(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "router.onnx")
}

type countingObserver struct {
	moe.NopObserver
	skipped   int
	predicted int
}

func (c *countingObserver) LabelSegmentSkipped(string, string, error) { c.skipped++ }
func (c *countingObserver) Predicted(int, string, bool) { c.predicted++ }
