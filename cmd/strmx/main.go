// Command strmx computes a matrix of pairwise string similarity or
// distance values over one or two collections of strings (SPEC_FULL
// section 6). It is the CLI wiring around the internal/* core: flag
// parsing and logging follow the teacher's main.go idiom (stdlib flag,
// log/slog, exit codes on package-level const), adapted from a long-
// running SSH/web server to a one-shot batch tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/krieck-labs/strmx/internal/config"
	"github.com/krieck-labs/strmx/internal/errs"
	"github.com/krieck-labs/strmx/internal/hstring"
	"github.com/krieck-labs/strmx/internal/input"
	"github.com/krieck-labs/strmx/internal/matrix"
	"github.com/krieck-labs/strmx/internal/measure"
	_ "github.com/krieck-labs/strmx/internal/measure/bagdist"
	_ "github.com/krieck-labs/strmx/internal/measure/compression"
	_ "github.com/krieck-labs/strmx/internal/measure/editdist"
	_ "github.com/krieck-labs/strmx/internal/measure/kernel"
	"github.com/krieck-labs/strmx/internal/output"
	"github.com/krieck-labs/strmx/internal/progress"
	"github.com/krieck-labs/strmx/internal/vcache"
)

const (
	succeed = 0
	failure = 1
)

var version = "0.1.0"

type cliFlags struct {
	measureName string
	confFile    string
	numThreads  int
	xrange      string
	yrange      string
	verbose     bool
	quiet       bool
	showVersion bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	flags, positional, err := parseFlags(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return failure
	}
	if flags.showVersion {
		fmt.Fprintf(stdout, "strmx %s\n", version)
		return succeed
	}

	level := slog.LevelInfo
	switch {
	case flags.verbose:
		level = slog.LevelDebug
	case flags.quiet:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if len(positional) < 1 {
		slog.Error("missing input_path")
		return failure
	}
	inputPath := positional[0]
	outputPath := ""
	if len(positional) > 1 {
		outputPath = positional[1]
	}

	cfg, warnings, err := config.Load(flags.confFile)
	for _, w := range warnings {
		slog.Warn(w)
	}
	if err != nil {
		slog.Error("configuration error", "err", err)
		return errs.ExitCode(err)
	}
	if flags.measureName != "" {
		cfg.Measures.Type = flags.measureName
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		slog.Warn("abort requested")
		cancel()
	}()

	if err := execute(ctx, cfg, flags, inputPath, outputPath); err != nil {
		slog.Error("run failed", "err", err)
		return errs.ExitCode(err)
	}
	return succeed
}

func parseFlags(args []string, stderr *os.File) (cliFlags, []string, error) {
	fs := flag.NewFlagSet("strmx", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var f cliFlags
	fs.StringVar(&f.measureName, "m", "", "measure name")
	fs.StringVar(&f.confFile, "c", "", "config file")
	fs.IntVar(&f.numThreads, "n", 0, "worker count (0 = GOMAXPROCS)")
	fs.StringVar(&f.xrange, "xrange", "", "column range A:B")
	fs.StringVar(&f.yrange, "yrange", "", "row range A:B")
	fs.BoolVar(&f.verbose, "v", false, "verbose logging")
	fs.BoolVar(&f.quiet, "q", false, "quiet logging")
	fs.BoolVar(&f.showVersion, "V", false, "show version and exit")
	if err := fs.Parse(args); err != nil {
		return f, nil, err
	}
	return f, fs.Args(), nil
}

func execute(ctx context.Context, cfg config.Config, flags cliFlags, inputPath, outputPath string) error {
	strs, err := readAll(cfg, inputPath)
	if err != nil {
		return err
	}
	if len(strs) == 0 {
		return errs.Input(inputPath, fmt.Errorf("no strings read"))
	}

	labels := make([]float64, len(strs))
	sources := make([]string, len(strs))
	for i, s := range strs {
		if l, ok := s.Label(); ok {
			labels[i] = l
		}
		sources[i] = s.Source()
	}

	ms, err := measure.Configure(cfg.Measures.Type, cfg.Measures.SettingsFor(cfg.Measures.Type))
	if err != nil {
		return errs.Measure(cfg.Measures.Type, err)
	}

	xr, err := parseRange(flags.xrange, len(strs))
	if err != nil {
		return errs.Config("--xrange", err)
	}
	yr, err := parseRange(flags.yrange, len(strs))
	if err != nil {
		return errs.Config("--yrange", err)
	}

	cacheSize := cfg.Measures.CacheSize
	vc := vcache.New(cacheSize)

	prog := progress.NewTicker(os.Stderr, 200*time.Millisecond)
	opts := matrix.Options{Workers: flags.numThreads, GlobalCache: cfg.Measures.GlobalCache, Progress: prog}

	m, err := matrix.Fill(ctx, strs, xr, yr, ms, vc, opts, labels, sources)
	if err != nil {
		return err
	}

	w, err := output.New(cfg.Output.Writer, cfg.Output.Separator, cfg.Output.Precision, cfg.Output.SaveIndices, cfg.Output.SaveLabels, cfg.Output.SaveSources, cfg.Output.Sparse, ms.Name())
	if err != nil {
		return errs.Config("output.writer", err)
	}
	if err := w.Open(outputPath); err != nil {
		return errs.Resource(err)
	}
	defer w.Close()
	if _, err := w.Write(m); err != nil {
		return errs.Resource(err)
	}
	return nil
}

func readAll(cfg config.Config, path string) ([]*hstring.HString, error) {
	rdr, err := input.New(cfg.Input.Reader)
	if err != nil {
		return nil, errs.Config("input.reader", err)
	}
	if dr, ok := rdr.(*input.DirReader); ok {
		dr.LabelRegex = cfg.Input.DecodeLabel
	}
	if err := rdr.Open(path); err != nil {
		return nil, errs.Input(path, err)
	}
	defer rdr.Close()

	pcfg := hstring.PreprocConfig{
		DecodeEscapes: cfg.Input.DecodeEscapes,
		CaseFold:      cfg.Input.CaseFold,
		Tokenize:      cfg.Input.Tokenize,
		Reverse:       cfg.Input.Reverse,
	}
	if cfg.Input.Tokenize {
		pcfg.Delimiters = hstring.NewDelimiterSet([]byte(cfg.Input.Delimiters))
		if cfg.Input.StopTokenFile != "" {
			stop, err := loadStopTokens(cfg.Input.StopTokenFile)
			if err != nil {
				return nil, errs.Config("input.stop_token_file", err)
			}
			pcfg.StopTokens = stop
		}
	}

	const batch = 256
	buf := make([]*hstring.HString, batch)
	var out []*hstring.HString
	for {
		n, err := rdr.Read(buf)
		for i := 0; i < n; i++ {
			out = append(out, hstring.Preprocess(buf[i], pcfg))
		}
		if n == 0 || err != nil {
			return out, err
		}
	}
}

// loadStopTokens reads one token surface per line from path and hashes
// each to the identifier filterStopTokens expects.
func loadStopTokens(path string) (map[uint64]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stop := make(map[uint64]struct{})
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		stop[hstring.HashToken([]byte(line))] = struct{}{}
	}
	return stop, nil
}

// parseRange parses "A:B" into a matrix.Range, defaulting to the full
// [0,n) range when spec is empty.
func parseRange(spec string, n int) (matrix.Range, error) {
	if spec == "" {
		return matrix.Range{I: 0, N: n}, nil
	}
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return matrix.Range{}, fmt.Errorf("invalid range %q, want A:B", spec)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return matrix.Range{}, err
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return matrix.Range{}, err
	}
	if a < 0 || b > n || a > b {
		return matrix.Range{}, fmt.Errorf("range %q out of bounds for %d strings", spec, n)
	}
	return matrix.Range{I: a, N: b}, nil
}
