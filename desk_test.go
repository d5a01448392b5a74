package answerdesk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/answerdesk/catalog"
	"github.com/poiesic/answerdesk/embedding"
	"github.com/poiesic/answerdesk/embedding/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDesk(t *testing.T) {
	ctx := context.Background()

	t.Run("opens every component", func(t *testing.T) {
		cfg := DefaultConfig(t.TempDir())
		writeFixture(t, cfg.DataDir)
		require.NoError(t, mock.WriteAssets(cfg.ModelDir, testModel))

		desk, err := OpenDesk(ctx, cfg, WithRuntime(unitRuntime()), WithTopK(1))
		require.NoError(t, err)
		require.NotNil(t, desk)
		defer desk.Close()

		assert.NotNil(t, desk.Catalog())
		assert.NotNil(t, desk.UserContent())
		assert.Equal(t, embedding.StateConfigValidated, desk.Engine().State(), "model is not loaded eagerly")

		res := desk.Retriever().Semantic(ctx, "deposit", 0)
		require.Equal(t, StatusOK, res.Status)
		assert.Equal(t, []int64{1}, hitIDs(res), "desk top-k applies")
	})

	t.Run("missing source is fatal", func(t *testing.T) {
		cfg := DefaultConfig(t.TempDir())
		writeFixture(t, cfg.DataDir)
		require.NoError(t, os.Remove(catalog.SourcePath(cfg.DataDir, catalog.SourceIntroClosing)))

		desk, err := OpenDesk(ctx, cfg, WithRuntime(unitRuntime()))
		require.Error(t, err)
		assert.Nil(t, desk)
		assert.True(t, errors.Is(err, catalog.ErrMissingSource))

		var missing *catalog.MissingSourceError
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, []string{catalog.SourceIntroClosing}, missing.Missing)
	})

	t.Run("invalid model is not fatal", func(t *testing.T) {
		cfg := DefaultConfig(t.TempDir())
		writeFixture(t, cfg.DataDir)
		require.NoError(t, os.MkdirAll(cfg.ModelDir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(cfg.ModelDir, embedding.ConfigFile),
			[]byte(`{"model_name": "m", "license": "mit", "max_length": 4, "output_name": "o", "use_pooling": true}`), 0644))

		desk, err := OpenDesk(ctx, cfg, WithRuntime(unitRuntime()), WithInMemoryUserContent())
		require.NoError(t, err)
		defer desk.Close()

		assert.Equal(t, embedding.StateUnconfigured, desk.Engine().State())
		assert.True(t, desk.Retriever().Semantic(ctx, "deposit", 0).Unavailable())
		assert.NotEmpty(t, desk.Retriever().Keyword("deposit").Hits)
	})

	t.Run("user content persists", func(t *testing.T) {
		cfg := DefaultConfig(t.TempDir())
		writeFixture(t, cfg.DataDir)

		desk, err := OpenDesk(ctx, cfg, WithRuntime(unitRuntime()))
		require.NoError(t, err)
		_, err = desk.UserContent().SaveMemo(ctx, 1, "check lease")
		require.NoError(t, err)
		require.NoError(t, desk.Close())

		desk, err = OpenDesk(ctx, cfg, WithRuntime(unitRuntime()))
		require.NoError(t, err)
		defer desk.Close()
		text, ok, err := desk.UserContent().Memo(ctx, 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "check lease", text)
	})

	t.Run("invalid inference timeout", func(t *testing.T) {
		cfg := DefaultConfig(t.TempDir())
		writeFixture(t, cfg.DataDir)

		_, err := OpenDesk(ctx, cfg, WithRuntime(unitRuntime()), WithInferenceTimeout(-1))
		assert.True(t, errors.Is(err, embedding.ErrInvalidTimeout))
	})
}

func TestDesk_CloseUnloadsModel(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig(t.TempDir())
	writeFixture(t, cfg.DataDir)
	require.NoError(t, mock.WriteAssets(cfg.ModelDir, testModel))
	rt := unitRuntime()

	desk, err := OpenDesk(ctx, cfg, WithRuntime(rt), WithInMemoryUserContent())
	require.NoError(t, err)
	require.NoError(t, desk.Retriever().LoadModel(ctx))

	require.NoError(t, desk.Close())
	assert.Equal(t, 1, rt.Session.Closed())
	assert.Equal(t, embedding.StateConfigValidated, desk.Engine().State())
}
