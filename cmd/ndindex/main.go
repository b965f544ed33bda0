// Package main provides the ndindex CLI: gather, scatter and one-hot on any
// engine, with operands given inline as JSON or read from safetensors files.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/born-ml/ndindex/internal/backend/cpu"
	"github.com/born-ml/ndindex/internal/backend/emulated"
	"github.com/born-ml/ndindex/internal/backend/webgpu"
	"github.com/born-ml/ndindex/internal/device"
	"github.com/born-ml/ndindex/internal/engine"
	"github.com/born-ml/ndindex/internal/ops"
	"github.com/born-ml/ndindex/internal/parallel"
	"github.com/born-ml/ndindex/internal/reduce"
	"github.com/born-ml/ndindex/internal/tensor"
	"github.com/born-ml/ndindex/internal/tokenizer"
	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

const usage = `Usage: ndindex [klog flags] <command> [flags]

Commands:
  version     Show version
  device      Resolve a device specifier (ndindex device gpu:1)
  gather      Select rows along axis 0 (-source, -indices)
  gathernd    Gather at coordinate tuples (-source, -indices)
  scatter     Fold updates into a 1-D tensor (-indices, -updates, -size, -reduction)
  scatternd   Fold updates into a tensor (-indices, -updates, -shape, -reduction)
  onehot      One-hot encode class ids (-indices or -text, -depth)
  bow         Token histogram of a text (-text, -encoding)

Tensors are JSON: nested arrays ([[1,2],[3,4]]) or
{"dtype":"int32","shape":[2,1],"data":[1,0]}. With -in, operands missing
from the command line are read by name from a safetensors file or gs:// URI.
`

func main() {
	klog.InitFlags(nil)
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(context.Background(), flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "version":
		fmt.Fprintf(stdout, "ndindex %s\n", version)
		return nil
	case "device":
		return runDevice(ctx, rest, stdout)
	case "gather", "gathernd":
		return runGather(ctx, cmd, rest, stdout)
	case "scatter", "scatternd":
		return runScatter(ctx, cmd, rest, stdout)
	case "onehot":
		return runOneHot(ctx, rest, stdout)
	case "bow":
		return runBagOfWords(ctx, rest, stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

// engineFlags are shared by every command that runs an operation.
type engineFlags struct {
	engine   string
	device   string
	strategy string
	workers  int
	devices  int
	in       string
	out      string
}

func (f *engineFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.engine, "engine", "cpu", "engine: cpu, emulated or webgpu")
	fs.StringVar(&f.device, "device", "", "result device (cpu, cpu:N, gpu, gpu:N); defaults to the operand's device")
	fs.StringVar(&f.strategy, "strategy", "sentinel", "cpu engine min/max strategy: sentinel or touched-mask")
	fs.IntVar(&f.workers, "workers", 0, "cpu engine workers (0 = NumCPU, 1 = sequential)")
	fs.IntVar(&f.devices, "devices", 1, "number of logical devices the engine hosts")
	fs.StringVar(&f.in, "in", "", "safetensors file or gs:// URI holding operands by name")
	fs.StringVar(&f.out, "out", "", "write the result as safetensors to this path or gs:// URI instead of stdout")
}

// newEngine builds the selected engine. The returned func releases it.
func (f *engineFlags) newEngine(ctx context.Context) (engine.Engine, func(), error) {
	log := klog.FromContext(ctx)

	switch f.engine {
	case "cpu":
		strategy, err := reduce.ParseStrategy(f.strategy)
		if err != nil {
			return nil, nil, err
		}
		cfg := cpu.DefaultConfig()
		cfg.Strategy = strategy
		cfg.NumDevices = f.devices
		switch {
		case f.workers == 1:
			cfg.Parallel = parallel.Sequential()
		case f.workers > 1:
			cfg.Parallel.NumWorkers = f.workers
		}
		e := cpu.New(cfg)
		log.V(2).Info("using engine", "engine", e.Name(), "describe", e.Describe())
		return e, func() {}, nil
	case "emulated":
		cfg := emulated.DefaultConfig()
		for i := 1; i < f.devices; i++ {
			cfg.Devices = append(cfg.Devices, tensor.CPUDevice(i))
		}
		e := emulated.New(cfg)
		log.V(2).Info("using engine", "engine", e.Name(), "devices", len(cfg.Devices))
		return e, func() {}, nil
	case "webgpu":
		e, err := webgpu.New()
		if err != nil {
			return nil, nil, err
		}
		log.V(2).Info("using engine", "engine", e.Name())
		return e, e.Release, nil
	default:
		return nil, nil, fmt.Errorf("unknown engine %q (want cpu, emulated or webgpu)", f.engine)
	}
}

// opOptions maps -device onto an ops option.
func (f *engineFlags) opOptions() []ops.Option {
	return []ops.Option{ops.WithDevice(f.device)}
}

func (f *engineFlags) metadata(op string, e engine.Engine) map[string]string {
	return map[string]string{"op": op, "engine": e.Name(), "version": version}
}

func runDevice(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("device", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, release, err := ef.newEngine(ctx)
	if err != nil {
		return err
	}
	defer release()

	specs := fs.Args()
	if len(specs) == 0 {
		specs = []string{""}
	}
	resolver := device.NewResolver(e.Device())
	for _, spec := range specs {
		dev, err := resolver.Resolve(spec)
		if err != nil {
			return err
		}
		hosted := engine.CheckDevice(e.Name(), e.Capabilities(), dev) == nil
		fmt.Fprintf(stdout, "%s\thosted=%t\tengine=%s\n", dev, hosted, e.Name())
	}
	if features := device.HostFeatures(); len(features) > 0 {
		fmt.Fprintf(stdout, "host features: %s\n", strings.Join(features, " "))
	}
	return nil
}

func runGather(ctx context.Context, cmd string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	sourceFlag := fs.String("source", "", "source tensor (JSON)")
	dtypeFlag := fs.String("dtype", "float32", "dtype of a nested-array -source")
	indicesFlag := fs.String("indices", "", "index tensor (JSON, int64 unless given explicitly)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dt, err := tensor.ParseDataType(*dtypeFlag)
	if err != nil {
		return err
	}

	e, release, err := ef.newEngine(ctx)
	if err != nil {
		return err
	}
	defer release()

	operands, err := loadOperands(ctx, ef.in, e.Device())
	if err != nil {
		return err
	}
	source, err := operands.operand("source", *sourceFlag, dt, e.Device())
	if err != nil {
		return err
	}
	indices, err := operands.operand("indices", *indicesFlag, tensor.Int64, e.Device())
	if err != nil {
		return err
	}

	gather := ops.GatherFlat
	if cmd == "gathernd" {
		gather = ops.GatherND
	}
	result, err := gather(e, source, indices, ef.opOptions()...)
	if err != nil {
		return err
	}
	return writeResult(ctx, stdout, ef.out, result, ef.metadata(cmd, e))
}

func runScatter(ctx context.Context, cmd string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	indicesFlag := fs.String("indices", "", "index tensor (JSON, int64 unless given explicitly)")
	updatesFlag := fs.String("updates", "", "updates tensor (JSON)")
	dtypeFlag := fs.String("dtype", "float32", "dtype of a nested-array -updates")
	reductionFlag := fs.String("reduction", "sum", "reduction: sum, min or max")
	sizeFlag := fs.Int("size", 0, "result length (scatter)")
	shapeFlag := fs.String("shape", "", "result shape, comma separated (scatternd)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	dt, err := tensor.ParseDataType(*dtypeFlag)
	if err != nil {
		return err
	}
	mode, err := reduce.ParseMode(*reductionFlag)
	if err != nil {
		return err
	}
	shape, err := parseShape(*shapeFlag)
	if err != nil {
		return err
	}

	e, release, err := ef.newEngine(ctx)
	if err != nil {
		return err
	}
	defer release()

	operands, err := loadOperands(ctx, ef.in, e.Device())
	if err != nil {
		return err
	}
	indices, err := operands.operand("indices", *indicesFlag, tensor.Int64, e.Device())
	if err != nil {
		return err
	}
	updates, err := operands.operand("updates", *updatesFlag, dt, e.Device())
	if err != nil {
		return err
	}

	var result *tensor.RawTensor
	if cmd == "scatter" {
		result, err = ops.ScatterFlat(e, indices, updates, *sizeFlag, mode, ef.opOptions()...)
	} else {
		result, err = ops.ScatterND(e, indices, updates, shape, mode, ef.opOptions()...)
	}
	if err != nil {
		return err
	}
	meta := ef.metadata(cmd, e)
	meta["reduction"] = mode.String()
	return writeResult(ctx, stdout, ef.out, result, meta)
}

func runOneHot(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("onehot", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	indicesFlag := fs.String("indices", "", "class ids (JSON, int64 unless given explicitly)")
	textFlag := fs.String("text", "", "encode token ids of this text instead of -indices")
	encodingFlag := fs.String("encoding", tokenizer.EncodingCL100kBase, "tiktoken encoding for -text")
	depthFlag := fs.Int("depth", -1, "number of classes (defaults to the vocabulary size with -text)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, release, err := ef.newEngine(ctx)
	if err != nil {
		return err
	}
	defer release()

	depth := *depthFlag
	var indices *tensor.RawTensor
	if *textFlag != "" {
		tok, err := tokenizer.NewTikToken(*encodingFlag)
		if err != nil {
			return err
		}
		if indices, err = tokenizer.Indices(tok, *textFlag, e.Device()); err != nil {
			return err
		}
		if depth < 0 {
			depth = tok.VocabSize()
		}
	} else {
		operands, err := loadOperands(ctx, ef.in, e.Device())
		if err != nil {
			return err
		}
		if indices, err = operands.operand("indices", *indicesFlag, tensor.Int64, e.Device()); err != nil {
			return err
		}
	}
	if depth < 0 {
		return fmt.Errorf("missing -depth")
	}

	result, err := ops.OneHot(e, indices, depth, ef.opOptions()...)
	if err != nil {
		return err
	}
	return writeResult(ctx, stdout, ef.out, result, ef.metadata("onehot", e))
}

func runBagOfWords(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("bow", flag.ContinueOnError)
	var ef engineFlags
	ef.register(fs)
	textFlag := fs.String("text", "", "text to count (defaults to the remaining arguments)")
	encodingFlag := fs.String("encoding", tokenizer.EncodingCL100kBase, "tiktoken encoding")
	topFlag := fs.Int("top", 10, "number of most frequent tokens to print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := *textFlag
	if text == "" {
		text = strings.Join(fs.Args(), " ")
	}

	e, release, err := ef.newEngine(ctx)
	if err != nil {
		return err
	}
	defer release()

	tok, err := tokenizer.NewTikToken(*encodingFlag)
	if err != nil {
		return err
	}
	counts, err := bagOfWords(e, tok, text, ef.opOptions()...)
	if err != nil {
		return err
	}

	if ef.out != "" {
		meta := ef.metadata("bow", e)
		meta["encoding"] = tok.Name()
		return writeResult(ctx, stdout, ef.out, counts, meta)
	}
	for _, tc := range topTokens(counts.AsFloat32(), *topFlag) {
		piece, err := tok.Decode([]int64{tc.id})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%d\t%q\t%g\n", tc.id, piece, tc.count)
	}
	return nil
}

// bagOfWords counts token ids of text into a [VocabSize] float32 tensor by
// scatter-adding ones.
func bagOfWords(e engine.Engine, tok tokenizer.Tokenizer, text string, opts ...ops.Option) (*tensor.RawTensor, error) {
	ids, err := tokenizer.Indices(tok, text, e.Device())
	if err != nil {
		return nil, err
	}
	ones, err := tensor.Full(ids.Shape(), float32(1), e.Device())
	if err != nil {
		return nil, err
	}
	return ops.ScatterFlat(e, ids, ones, tok.VocabSize(), reduce.Sum, opts...)
}

type tokenCount struct {
	id    int64
	count float32
}

// topTokens returns the n largest non-zero counts, ties broken by id.
func topTokens(counts []float32, n int) []tokenCount {
	var out []tokenCount
	for id, c := range counts {
		if c != 0 {
			out = append(out, tokenCount{id: int64(id), count: c})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].id < out[j].id
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
