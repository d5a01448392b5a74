// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/answerdesk"
	"github.com/poiesic/answerdesk/compose"
	"github.com/poiesic/answerdesk/core"
	"github.com/poiesic/answerdesk/embedding"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. Extra options are passed to every Desk the
// commands open.
func newApp(deskOpts ...answerdesk.DeskOption) *cli.App {
	d := &deskCommands{extra: deskOpts}
	return &cli.App{
		Name:  "answerdesk",
		Usage: "Find and compose pre-authored answers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"ANSWERDESK_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "home",
				Usage:   "Base directory holding database/, model/ and user/",
				Value:   ".",
				EnvVars: []string{"ANSWERDESK_HOME"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Answer source directory (overrides <home>/database)",
				EnvVars: []string{"ANSWERDESK_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "model-dir",
				Usage:   "Embedding model directory (overrides <home>/model)",
				EnvVars: []string{"ANSWERDESK_MODEL_DIR"},
			},
			&cli.StringFlag{
				Name:    "user-dir",
				Usage:   "Template and memo database directory (overrides <home>/user)",
				EnvVars: []string{"ANSWERDESK_USER_DIR"},
			},
			&cli.StringFlag{
				Name:    "onnx-library",
				Usage:   "Path to the onnxruntime shared library",
				EnvVars: []string{"ANSWERDESK_ONNX_LIBRARY"},
			},
			&cli.DurationFlag{
				Name:    "inference-timeout",
				Usage:   "Maximum time for one embedding run",
				Value:   embedding.DefaultInferenceTimeout,
				EnvVars: []string{"ANSWERDESK_INFERENCE_TIMEOUT"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "categories",
				Usage:     "List categories, or the sub-categories of the given path",
				ArgsUsage: "[cat1 [cat2]]",
				Action:    d.categories,
			},
			{
				Name:      "browse",
				Usage:     "List the answers filed under a category path",
				ArgsUsage: "cat1 cat2 cat3",
				Action:    d.browse,
			},
			{
				Name:      "search",
				Usage:     "Search answers by keyword or meaning",
				ArgsUsage: "query",
				Action:    d.search,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "Search mode (keyword, semantic)",
						Value:   "keyword",
					},
					&cli.IntFlag{
						Name:    "top-k",
						Aliases: []string{"k"},
						Usage:   "Maximum semantic results",
						Value:   20,
					},
				},
			},
			{
				Name:      "preview",
				Usage:     "Show an answer with its agency contact lines",
				ArgsUsage: "code|id",
				Action:    d.preview,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "conjunction",
						Usage: "Index of the conjunction to prefix (-1 for none)",
						Value: -1,
					},
				},
			},
			{
				Name:   "reply",
				Usage:  "Assemble a reply from an intro, up to three answers and a closing",
				Action: d.reply,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "intro-category", Usage: "Intro snippet category"},
					&cli.IntFlag{Name: "intro", Usage: "Intro snippet index within the category", Value: -1},
					&cli.StringFlag{Name: "closing-category", Usage: "Closing snippet category"},
					&cli.IntFlag{Name: "closing", Usage: "Closing snippet index within the category", Value: -1},
					&cli.StringFlag{Name: "s1", Usage: "Answer code or id for slot S1"},
					&cli.StringFlag{Name: "s2", Usage: "Answer code or id for slot S2"},
					&cli.StringFlag{Name: "s3", Usage: "Answer code or id for slot S3"},
				},
			},
			{
				Name:  "model",
				Usage: "Inspect the embedding model",
				Subcommands: []*cli.Command{
					{
						Name:   "check",
						Usage:  "Validate the model assets and optionally load them",
						Action: d.modelCheck,
						Flags: []cli.Flag{
							&cli.BoolFlag{Name: "load", Usage: "Also load the model and embed a probe sentence"},
						},
					},
				},
			},
			{
				Name:  "template",
				Usage: "Manage reply templates",
				Subcommands: []*cli.Command{
					{
						Name:   "add",
						Usage:  "Add a template",
						Action: d.templateAdd,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "title", Usage: "Template title", Required: true},
							&cli.StringFlag{Name: "text", Usage: "Template text", Required: true},
							&cli.StringFlag{Name: "memo", Usage: "Private note"},
						},
					},
					{
						Name:   "list",
						Usage:  "List templates, most recently modified first",
						Action: d.templateList,
					},
					{
						Name:      "search",
						Usage:     "Search templates ignoring case",
						ArgsUsage: "keyword",
						Action:    d.templateSearch,
					},
					{
						Name:      "delete",
						Usage:     "Delete a template",
						ArgsUsage: "id",
						Action:    d.templateDelete,
					},
				},
			},
			{
				Name:  "memo",
				Usage: "Manage private notes on answers",
				Subcommands: []*cli.Command{
					{
						Name:      "get",
						Usage:     "Show the memo on an answer",
						ArgsUsage: "answer-id",
						Action:    d.memoGet,
					},
					{
						Name:      "set",
						Usage:     "Create or replace the memo on an answer",
						ArgsUsage: "answer-id text",
						Action:    d.memoSet,
					},
					{
						Name:      "delete",
						Usage:     "Delete the memo on an answer",
						ArgsUsage: "answer-id",
						Action:    d.memoDelete,
					},
				},
			},
		},
	}
}

type deskCommands struct {
	extra []answerdesk.DeskOption
}

func deskConfig(c *cli.Context) answerdesk.Config {
	cfg := answerdesk.DefaultConfig(c.String("home"))
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if dir := c.String("model-dir"); dir != "" {
		cfg.ModelDir = dir
	}
	if dir := c.String("user-dir"); dir != "" {
		cfg.UserDir = dir
	}
	return cfg
}

// withDesk opens a Desk for the duration of fn.
func (d *deskCommands) withDesk(c *cli.Context, fn func(ctx context.Context, desk *answerdesk.Desk) error) error {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	opts := []answerdesk.DeskOption{
		answerdesk.WithLogger(slog.Default()),
		answerdesk.WithONNXLibrary(c.String("onnx-library")),
		answerdesk.WithInferenceTimeout(c.Duration("inference-timeout")),
	}
	opts = append(opts, d.extra...)

	desk, err := answerdesk.OpenDesk(ctx, deskConfig(c), opts...)
	if err != nil {
		return fmt.Errorf("failed to open answer desk: %w", err)
	}
	defer desk.Close()
	return fn(ctx, desk)
}

func (d *deskCommands) categories(c *cli.Context) error {
	if c.NArg() > 2 {
		return fmt.Errorf("at most two category levels may be given")
	}
	return d.withDesk(c, func(_ context.Context, desk *answerdesk.Desk) error {
		r := desk.Retriever()
		var names []string
		switch c.NArg() {
		case 0:
			names = r.TopCategories()
		case 1:
			names = r.SubCategories(c.Args().Get(0))
		default:
			names = r.LeafCategories(c.Args().Get(0), c.Args().Get(1))
		}
		for _, name := range names {
			fmt.Fprintln(c.App.Writer, name)
		}
		return nil
	})
}

func (d *deskCommands) browse(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("browse needs cat1, cat2 and cat3")
	}
	return d.withDesk(c, func(_ context.Context, desk *answerdesk.Desk) error {
		args := c.Args()
		printResult(c.App.Writer, desk.Retriever().Browse(args.Get(0), args.Get(1), args.Get(2)))
		return nil
	})
}

func (d *deskCommands) search(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if query == "" {
		return fmt.Errorf("search query is required")
	}
	mode := strings.ToLower(c.String("mode"))
	if mode != "keyword" && mode != "semantic" {
		return fmt.Errorf("invalid search mode %q: must be keyword or semantic", mode)
	}
	return d.withDesk(c, func(ctx context.Context, desk *answerdesk.Desk) error {
		var res *answerdesk.Result
		if mode == "semantic" {
			res = desk.Retriever().Semantic(ctx, query, c.Int("top-k"))
		} else {
			res = desk.Retriever().Keyword(query)
		}
		if res.Unavailable() {
			fmt.Fprintln(c.App.ErrWriter, "semantic search is unavailable: run 'answerdesk model check' for details")
			return nil
		}
		printResult(c.App.Writer, res)
		return nil
	})
}

func (d *deskCommands) preview(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("preview needs one answer code or id")
	}
	return d.withDesk(c, func(_ context.Context, desk *answerdesk.Desk) error {
		rec, err := findRecord(desk, c.Args().First())
		if err != nil {
			return err
		}
		conjunction, err := pick(desk.Catalog().Conjunctions(), c.Int("conjunction"), "conjunction")
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, compose.Preview(rec, conjunction, desk.Catalog()))
		return nil
	})
}

func (d *deskCommands) reply(c *cli.Context) error {
	return d.withDesk(c, func(_ context.Context, desk *answerdesk.Desk) error {
		cat := desk.Catalog()

		intro, err := pickSnippet(cat.Intros(c.String("intro-category")), c.Int("intro"), "intro")
		if err != nil {
			return err
		}
		closing, err := pickSnippet(cat.Closings(c.String("closing-category")), c.Int("closing"), "closing")
		if err != nil {
			return err
		}

		sel := compose.NewSelection()
		defer sel.Close()
		for _, slot := range compose.Slots {
			ref := c.String(strings.ToLower(string(slot)))
			if ref == "" {
				continue
			}
			rec, err := findRecord(desk, ref)
			if err != nil {
				return err
			}
			if err := sel.Set(slot, compose.EntryFromRecord(rec, compose.Preview(rec, "", cat))); err != nil {
				return err
			}
		}

		fmt.Fprintln(c.App.Writer, compose.Assemble(intro, sel, closing))
		return nil
	})
}

func (d *deskCommands) modelCheck(c *cli.Context) error {
	return d.withDesk(c, func(ctx context.Context, desk *answerdesk.Desk) error {
		r := desk.Retriever()
		w := c.App.Writer

		if c.Bool("load") {
			if err := r.LoadModel(ctx); err != nil {
				fmt.Fprintf(c.App.ErrWriter, "load failed: %v\n", err)
			} else {
				start := time.Now()
				_, ok := desk.Engine().Embed(ctx, "probe")
				fmt.Fprintf(w, "probe:       ok=%t in %s\n", ok, time.Since(start).Round(time.Millisecond))
			}
		}

		info := r.ModelInfo()
		fmt.Fprintf(w, "dir:         %s\n", info.Dir)
		fmt.Fprintf(w, "state:       %s\n", info.State)
		if info.Err != nil {
			fmt.Fprintf(w, "error:       %v\n", info.Err)
			return nil
		}
		fmt.Fprintf(w, "model:       %s (%s)\n", info.Config.ModelName, info.Config.License)
		fmt.Fprintf(w, "hidden size: %d\n", info.Config.HiddenSize)
		fmt.Fprintf(w, "max length:  %d\n", info.Config.MaxLength)
		fmt.Fprintf(w, "pooling:     %t\n", info.Config.UsePooling)
		if info.Fingerprint != "" {
			fmt.Fprintf(w, "fingerprint: %s\n", info.Fingerprint)
		}
		return nil
	})
}

func (d *deskCommands) templateAdd(c *cli.Context) error {
	return d.withDesk(c, func(ctx context.Context, desk *answerdesk.Desk) error {
		tpl, err := desk.UserContent().AddTemplate(ctx, c.String("title"), c.String("text"), c.String("memo"))
		if err != nil {
			return fmt.Errorf("failed to add template: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "%d\t%s\n", tpl.ID, tpl.Title)
		return nil
	})
}

func (d *deskCommands) templateList(c *cli.Context) error {
	return d.withDesk(c, func(ctx context.Context, desk *answerdesk.Desk) error {
		templates, err := desk.UserContent().Templates(ctx)
		if err != nil {
			return err
		}
		printTemplates(c.App.Writer, templates)
		return nil
	})
}

func (d *deskCommands) templateSearch(c *cli.Context) error {
	keyword := strings.Join(c.Args().Slice(), " ")
	return d.withDesk(c, func(ctx context.Context, desk *answerdesk.Desk) error {
		templates, err := desk.UserContent().SearchTemplates(ctx, keyword)
		if err != nil {
			return err
		}
		printTemplates(c.App.Writer, templates)
		return nil
	})
}

func (d *deskCommands) templateDelete(c *cli.Context) error {
	id, err := strconv.ParseUint(c.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid template id %q", c.Args().First())
	}
	return d.withDesk(c, func(ctx context.Context, desk *answerdesk.Desk) error {
		if err := desk.UserContent().DeleteTemplate(ctx, core.ID(id)); err != nil {
			return fmt.Errorf("failed to delete template %d: %w", id, err)
		}
		return nil
	})
}

func (d *deskCommands) memoGet(c *cli.Context) error {
	id, err := answerID(c)
	if err != nil {
		return err
	}
	return d.withDesk(c, func(ctx context.Context, desk *answerdesk.Desk) error {
		text, ok, err := desk.UserContent().Memo(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(c.App.ErrWriter, "no memo for answer %d\n", id)
			return nil
		}
		fmt.Fprintln(c.App.Writer, text)
		return nil
	})
}

func (d *deskCommands) memoSet(c *cli.Context) error {
	id, err := answerID(c)
	if err != nil {
		return err
	}
	text := strings.Join(c.Args().Tail(), " ")
	return d.withDesk(c, func(ctx context.Context, desk *answerdesk.Desk) error {
		if _, ok := desk.Catalog().ByID(id); !ok {
			return fmt.Errorf("no answer with id %d", id)
		}
		_, err := desk.UserContent().SaveMemo(ctx, id, text)
		return err
	})
}

func (d *deskCommands) memoDelete(c *cli.Context) error {
	id, err := answerID(c)
	if err != nil {
		return err
	}
	return d.withDesk(c, func(ctx context.Context, desk *answerdesk.Desk) error {
		return desk.UserContent().DeleteMemo(ctx, id)
	})
}

func answerID(c *cli.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid answer id %q", c.Args().First())
	}
	return id, nil
}

// findRecord resolves ref as an answer code first, then as a numeric id.
func findRecord(desk *answerdesk.Desk, ref string) (*core.AnswerRecord, error) {
	if rec, ok := desk.Catalog().ByCode(ref); ok {
		return rec, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if rec, ok := desk.Catalog().ByID(id); ok {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("no answer with code or id %q", ref)
}

// pick returns items[i], or "" when i is negative.
func pick(items []string, i int, what string) (string, error) {
	if i < 0 {
		return "", nil
	}
	if i >= len(items) {
		return "", fmt.Errorf("%s index %d out of range (have %d)", what, i, len(items))
	}
	return items[i], nil
}

func pickSnippet(snippets []core.Snippet, i int, what string) (string, error) {
	texts := make([]string, len(snippets))
	for j, s := range snippets {
		texts[j] = s.Text
	}
	return pick(texts, i, what)
}

func printResult(w io.Writer, res *answerdesk.Result) {
	for _, hit := range res.Hits {
		rec := hit.Record
		if res.Mode == answerdesk.ModeSemantic {
			fmt.Fprintf(w, "%.4f\t%d\t%s\t%s\n", hit.Score, rec.ID, rec.Code, rec.Title)
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", rec.ID, rec.Code, rec.Title)
	}
}

func printTemplates(w io.Writer, templates []*core.Template) {
	for _, tpl := range templates {
		fmt.Fprintf(w, "%d\t%s\t%s\n", tpl.ID, tpl.ModifiedAt.Local().Format(time.DateTime), tpl.Title)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
