package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/answerdesk/core"
	"github.com/poiesic/answerdesk/storage/sqlite"
)

// sources holds the raw contents of the four required sources.
type sources struct {
	answers      []sqlite.AnswerRow
	agencies     []core.Agency
	snippets     []core.Snippet
	conjunctions []string
}

// readSources reads all four sources from dir concurrently on a bounded pool.
// Every reader opens and closes its own handle. Any failure fails the whole
// read; errors from several readers are joined.
func readSources(ctx context.Context, dir string, poolSize int) (*sources, error) {
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var (
		out sources
		wg  sync.WaitGroup
	)
	// one slot per source keeps the joined error in report order
	errs := make([]error, len(RequiredSources))

	tasks := map[string]func() error{
		SourceAnswers: func() (err error) {
			out.answers, err = sqlite.ReadAnswers(ctx, SourcePath(dir, SourceAnswers))
			return err
		},
		SourceAgencies: func() (err error) {
			out.agencies, err = sqlite.ReadAgencies(ctx, SourcePath(dir, SourceAgencies))
			return err
		},
		SourceIntroClosing: func() (err error) {
			out.snippets, err = sqlite.ReadSnippets(ctx, SourcePath(dir, SourceIntroClosing))
			return err
		},
		SourceConjunctions: func() (err error) {
			out.conjunctions, err = readConjunctions(SourcePath(dir, SourceConjunctions))
			return err
		},
	}

	for i, src := range RequiredSources {
		task := tasks[src.Name]
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			if err := task(); err != nil {
				errs[i] = fmt.Errorf("%s: %w", src.Name, err)
			}
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("%s: %w", src.Name, err)
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &out, nil
}

// readConjunctions parses the conjunction list, a JSON array of strings.
func readConjunctions(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var conjunctions []string
	if err := json.Unmarshal(data, &conjunctions); err != nil {
		return nil, fmt.Errorf("malformed conjunction list: %w", err)
	}
	if conjunctions == nil {
		conjunctions = []string{}
	}
	return conjunctions, nil
}
