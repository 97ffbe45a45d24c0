package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// Processor expands one file with a runner.
type Processor func(Runner, string) (*Result, error)

// ProcessFile is the default Processor.
func ProcessFile(engine Runner, path string) (*Result, error) {
	return engine.Run(path)
}

// Failure is a file that could not be expanded.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string { return fmt.Sprintf("%s: %v", f.Path, f.Err) }
func (f Failure) Unwrap() error { return f.Err }

// Report collects the outcome of processing a set of paths.
type Report struct {
	Results  []*Result
	Failures []Failure
}

func (r *Report) merge(o *Report) {
	r.Results = append(r.Results, o.Results...)
	r.Failures = append(r.Failures, o.Failures...)
}

// Processing runs files one after another, so macros enabled for a file
// never change the grammar under another file's parse.
type Processing struct {
	Logger     *zap.Logger
	Extensions []string
	// Progress receives the progress bar of directory walks; nil disables
	// it.
	Progress io.Writer
}

func (p Processing) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

func (p Processing) hasDesiredExtension(path string) bool {
	return isTargetFile(path, p.Extensions)
}

// ProcessFiles processes every path in order. A path that cannot be
// accessed stops the run; files that fail to expand are reported and
// skipped.
func (p Processing) ProcessFiles(ctx context.Context, engine Runner, paths []string, processor Processor) (*Report, error) {
	report := &Report{}
	for _, path := range paths {
		r, err := p.ProcessPath(ctx, engine, path, processor)
		if r != nil {
			report.merge(r)
		}
		if err != nil {
			p.logger().Error("Error processing path", zap.String("path", path), zap.Error(err))
			return report, err
		}
	}
	return report, nil
}

// ProcessPath processes a file, or every file with a wanted extension under
// a directory. A file named explicitly is processed whatever its extension.
func (p Processing) ProcessPath(ctx context.Context, engine Runner, path string, processor Processor) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	report := &Report{}
	if !info.IsDir() {
		p.processOne(engine, path, processor, report)
		return report, nil
	}

	files, err := Scan(path, p.Extensions)
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", path, err)
	}

	bar := p.progressBar(len(files), path)
	for _, file := range files {
		filePath := file.Path
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}
		bar.Describe(filepath.Base(filePath))
		p.processOne(engine, filePath, processor, report)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	return report, nil
}

func (p Processing) processOne(engine Runner, path string, processor Processor, report *Report) {
	result, err := processor(engine, path)
	if err != nil {
		p.logger().Error("Error processing file", zap.String("file", path), zap.Error(err))
		report.Failures = append(report.Failures, Failure{Path: path, Err: err})
		return
	}
	report.Results = append(report.Results, result)
}

func (p Processing) progressBar(n int, description string) *progressbar.ProgressBar {
	if p.Progress == nil {
		return progressbar.DefaultSilent(int64(n), description)
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(p.Progress),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.Progress)
		}),
	)
}
