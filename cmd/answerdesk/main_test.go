package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/poiesic/answerdesk"
	"github.com/poiesic/answerdesk/catalog"
	"github.com/poiesic/answerdesk/core"
	"github.com/poiesic/answerdesk/embedding"
	"github.com/poiesic/answerdesk/embedding/mock"
	"github.com/poiesic/answerdesk/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

var cliModel = embedding.ModelConfig{
	ModelName:  "cli-model",
	License:    "mit",
	HiddenSize: 2,
	MaxLength:  4,
	OutputName: "last_hidden_state",
	UsePooling: true,
}

// setupHome writes answer sources under a fresh home directory. Model assets
// are written only when withModel is set.
func setupHome(t *testing.T, withModel bool) string {
	t.Helper()
	home := t.TempDir()
	cfg := answerdesk.DefaultConfig(home)
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0755))
	require.NoError(t, catalog.WriteFixture(context.Background(), cfg.DataDir, catalog.Fixture{
		Answers: []sqlite.AnswerRow{
			catalog.AnswerRowWithVector(core.AnswerRecord{
				ID: 1, Code: "H-1", Cat1: "Housing", Cat2: "Rent", Cat3: "Deposit",
				Title: "Deposit return", MainText: `Deposits are returned.\nAsk in writing.`,
				Agency1: "Housing Office",
			}, []float32{1, 0}),
			catalog.AnswerRowWithVector(core.AnswerRecord{
				ID: 2, Code: "H-2", Cat1: "Housing", Cat2: "Rent", Cat3: "Increase",
				Title: "Rent increase", MainText: "Increases are capped.",
			}, []float32{0, 1}),
		},
		Agencies: []core.Agency{{ID: 1, Name: "Housing Office", Tel: "120", Paid: "(free)", Website: "housing.example"}},
		Snippets: []core.Snippet{
			{ID: 1, Kind: core.SnippetIntro, Category: "General", Text: "Thank you for your inquiry."},
			{ID: 2, Kind: core.SnippetClosing, Category: "General", Text: "Kind regards."},
		},
		Conjunctions: []string{"Also, ", "However, "},
	}))
	if withModel {
		require.NoError(t, mock.WriteAssets(cfg.ModelDir, cliModel))
	}
	return home
}

func testRuntime() *mock.Runtime {
	rt := mock.NewRuntime()
	rt.Session.RunFunc = func(_ context.Context, ids, _ []int64) ([]float32, error) {
		out := make([]float32, len(ids)*cliModel.HiddenSize)
		for i := 0; i < len(out); i += cliModel.HiddenSize {
			out[i] = 1
		}
		return out, nil
	}
	return rt
}

// run executes the CLI against home and returns stdout and stderr.
func run(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	app := newApp(answerdesk.WithRuntime(testRuntime()))
	var stdout, stderr bytes.Buffer
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(append([]string{"answerdesk", "--log-level", "error", "--home", home}, args...))
	return stdout.String(), stderr.String(), err
}

func TestCategoryCommands(t *testing.T) {
	home := setupHome(t, false)

	out, _, err := run(t, home, "categories")
	require.NoError(t, err)
	assert.Equal(t, "Housing\n", out)

	out, _, err = run(t, home, "categories", "Housing", "Rent")
	require.NoError(t, err)
	assert.Equal(t, "Deposit\nIncrease\n", out)

	_, _, err = run(t, home, "categories", "a", "b", "c")
	assert.Error(t, err)

	out, _, err = run(t, home, "browse", "Housing", "Rent", "Increase")
	require.NoError(t, err)
	assert.Equal(t, "2\tH-2\tRent increase\n", out)

	_, _, err = run(t, home, "browse", "Housing")
	assert.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	t.Run("keyword", func(t *testing.T) {
		home := setupHome(t, false)
		out, _, err := run(t, home, "search", "capped")
		require.NoError(t, err)
		assert.Equal(t, "2\tH-2\tRent increase\n", out)
	})

	t.Run("semantic", func(t *testing.T) {
		home := setupHome(t, true)
		out, _, err := run(t, home, "search", "--mode", "semantic", "--top-k", "1", "deposit")
		require.NoError(t, err)
		assert.Equal(t, "1.0000\t1\tH-1\tDeposit return\n", out)
	})

	t.Run("semantic unavailable", func(t *testing.T) {
		home := setupHome(t, false)
		out, errOut, err := run(t, home, "search", "-m", "semantic", "deposit")
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Contains(t, errOut, "unavailable")
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, _, err := run(t, setupHome(t, false), "search", "--mode", "fuzzy", "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid search mode")
	})

	t.Run("missing source", func(t *testing.T) {
		home := setupHome(t, false)
		cfg := answerdesk.DefaultConfig(home)
		require.NoError(t, os.Remove(catalog.SourcePath(cfg.DataDir, catalog.SourceAgencies)))

		_, _, err := run(t, home, "search", "capped")
		require.Error(t, err)
		assert.Contains(t, err.Error(), catalog.SourceAgencies)
	})
}

func TestPreviewAndReply(t *testing.T) {
	home := setupHome(t, false)

	out, _, err := run(t, home, "preview", "--conjunction", "1", "H-1")
	require.NoError(t, err)
	assert.Equal(t, "However, Deposits are returned.\nAsk in writing.\n※ Housing Office(120(free), housing.example)\n", out)

	out, _, err = run(t, home, "preview", "2")
	require.NoError(t, err)
	assert.Equal(t, "Increases are capped.\n", out)

	_, _, err = run(t, home, "preview", "--conjunction", "5", "H-1")
	assert.Error(t, err)
	_, _, err = run(t, home, "preview", "nope")
	assert.Error(t, err)

	out, _, err = run(t, home, "reply",
		"--intro-category", "General", "--intro", "0",
		"--closing-category", "General", "--closing", "0",
		"--s2", "H-2")
	require.NoError(t, err)
	assert.Equal(t, "Thank you for your inquiry.\n\nIncreases are capped.\n\nKind regards.\n", out)
}

func TestModelCheckCommand(t *testing.T) {
	t.Run("missing assets", func(t *testing.T) {
		out, _, err := run(t, setupHome(t, false), "model", "check")
		require.NoError(t, err)
		assert.Contains(t, out, "state:       unconfigured")
		assert.Contains(t, out, "error:")
	})

	t.Run("load", func(t *testing.T) {
		out, _, err := run(t, setupHome(t, true), "model", "check", "--load")
		require.NoError(t, err)
		assert.Contains(t, out, "probe:       ok=true")
		assert.Contains(t, out, "state:       loaded")
		assert.Contains(t, out, "model:       cli-model (mit)")
		assert.Contains(t, out, "fingerprint:")
	})
}

func TestTemplateCommands(t *testing.T) {
	home := setupHome(t, false)

	out, _, err := run(t, home, "template", "add", "--title", "Deposit refusal", "--text", "We cannot refund.")
	require.NoError(t, err)
	id := strings.SplitN(strings.TrimSpace(out), "\t", 2)[0]

	_, _, err = run(t, home, "template", "add", "--title", "Deposit refusal", "--text", "again")
	require.Error(t, err)

	_, _, err = run(t, home, "template", "add", "--title", "Parking", "--text", "Permits monthly.")
	require.NoError(t, err)

	out, _, err = run(t, home, "template", "list")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	out, _, err = run(t, home, "template", "search", "REFUND")
	require.NoError(t, err)
	assert.Contains(t, out, "Deposit refusal")
	assert.NotContains(t, out, "Parking")

	_, _, err = run(t, home, "template", "delete", id)
	require.NoError(t, err)
	_, _, err = run(t, home, "template", "delete", id)
	assert.Error(t, err)
	_, _, err = run(t, home, "template", "delete", "abc")
	assert.Error(t, err)
}

func TestMemoCommands(t *testing.T) {
	home := setupHome(t, false)

	_, _, err := run(t, home, "memo", "set", "1", "call", "back")
	require.NoError(t, err)
	_, _, err = run(t, home, "memo", "set", "99", "x")
	assert.Error(t, err, "memo needs an existing answer")

	out, _, err := run(t, home, "memo", "get", "1")
	require.NoError(t, err)
	assert.Equal(t, "call back\n", out)

	require.NoError(t, func() error { _, _, err := run(t, home, "memo", "delete", "1"); return err }())
	out, errOut, err := run(t, home, "memo", "get", "1")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "no memo")

	_, _, err = run(t, home, "memo", "get", "one")
	assert.Error(t, err)
}

func TestGlobalFlags(t *testing.T) {
	app := newApp()
	envVars := map[string][]string{}
	for _, flag := range app.Flags {
		switch f := flag.(type) {
		case *cli.StringFlag:
			envVars[f.Name] = f.EnvVars
		case *cli.DurationFlag:
			envVars[f.Name] = f.EnvVars
			assert.Equal(t, embedding.DefaultInferenceTimeout, f.Value)
		}
	}
	assert.Equal(t, []string{"ANSWERDESK_HOME"}, envVars["home"])
	assert.Equal(t, []string{"ANSWERDESK_MODEL_DIR"}, envVars["model-dir"])
	assert.Equal(t, []string{"ANSWERDESK_INFERENCE_TIMEOUT"}, envVars["inference-timeout"])

	t.Run("home from environment", func(t *testing.T) {
		home := setupHome(t, false)
		t.Setenv("ANSWERDESK_HOME", home)

		app := newApp(answerdesk.WithRuntime(testRuntime()))
		var stdout bytes.Buffer
		app.Writer = &stdout
		require.NoError(t, app.Run([]string{"answerdesk", "-l", "error", "categories"}))
		assert.Equal(t, "Housing\n", stdout.String())
	})

	t.Run("directory overrides", func(t *testing.T) {
		home := setupHome(t, false)
		cfg := answerdesk.DefaultConfig(home)

		app := newApp(answerdesk.WithRuntime(testRuntime()))
		var stdout bytes.Buffer
		app.Writer = &stdout
		require.NoError(t, app.Run([]string{"answerdesk", "-l", "error",
			"--home", t.TempDir(), "--data-dir", cfg.DataDir, "categories"}))
		assert.Equal(t, "Housing\n", stdout.String())
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error", "DEBUG", "WaRn"} {
			t.Run(level, func(t *testing.T) {
				app := &cli.App{
					Name:   "test",
					Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
					Before: setupLogger,
					Action: func(c *cli.Context) error { return nil },
				}
				require.NoError(t, app.Run([]string{"test", "--log-level", level}))
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		app := &cli.App{
			Name:   "test",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
		err := app.Run([]string{"test", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
