package main

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mpkfont/pkg/fontpatch"
)

type batchResult struct {
	Input  string
	Output string
	Result *patchResult
	Err    error
}

// Status of the job. Errors that are not patch outcomes count as unreadable input.
func (r *batchResult) Status() fontpatch.Status {
	return fontpatch.StatusOf(r.Err)
}

// patchBatch patches every input into outDir, at most workers at a time.
// Each input is read into its own buffer. A failing input does not stop the
// others; the returned error is only set when ctx is cancelled.
func patchBatch(ctx context.Context, outDir string, inputs []string, fontName string, workers int) ([]*batchResult, error) {
	seen := map[string]string{}
	for _, in := range inputs {
		base := filepath.Base(in)
		if prev, ok := seen[base]; ok {
			return nil, errors.Errorf("%s and %s would both be written to %s", prev, in, base)
		}
		seen[base] = in
	}

	results := make([]*batchResult, len(inputs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, in := range inputs {
		r := &batchResult{
			Input:  in,
			Output: filepath.Join(outDir, filepath.Base(in)),
		}
		results[i] = r

		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				r.Err = err
				return err
			}
			r.Result, r.Err = patchFile(r.Input, r.Output, fontName)
			if r.Err != nil {
				logger.Warn("batch item failed", zap.String("input", in), zap.Error(r.Err))
			}
			return nil
		})
	}

	err := eg.Wait()
	return results, err
}
