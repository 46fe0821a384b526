package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/hashicorp/logutils"
	"github.com/jancona/dabmsc/msc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.bug.st/serial"
)

var (
	configArg     *string  = pflag.StringP("config", "c", "", "YAML configuration file")
	modeArg       *int     = pflag.IntP("mode", "m", 1, "DAB transmission mode (1-4)")
	addressArg    *int     = pflag.IntP("address", "a", 0, "Sub-channel start address in CUs")
	sizeArg       *int     = pflag.IntP("size", "s", 0, "Sub-channel size in CUs")
	protectionArg *int     = pflag.IntP("protection", "p", 3, "EEP protection level (1-4)")
	optionBArg    *bool    = pflag.BoolP("option-b", "b", false, "Use EEP-B protection profiles")
	inArg         *string  = pflag.StringP("in", "i", "", "Soft symbol input, float32 little endian (default stdin)")
	flagsArg      *string  = pflag.String("flags", "", "Frame start flag input, one byte per symbol (default: synthesized)")
	outArg        *string  = pflag.StringP("out", "o", "", "Decoded sub-channel output (default stdout)")
	serialArg     *string  = pflag.String("serial", "", "Write decoded output to this serial port instead")
	baudArg       *int     = pflag.Int("baud", 115200, "Serial port baud rate")
	dabPlusArg    *bool    = pflag.Bool("dabplus", false, "Check DAB+ superframe fire codes")
	scaleArg      *float32 = pflag.Float32("scale", 1, "Scale factor applied to soft values")
	metricsArg    *string  = pflag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. :9100")
	isDebugArg    *bool    = pflag.BoolP("debug", "d", false, "Emit debug log messages")
	logDestArg    *string  = pflag.String("log", "", "Device/file for log (default stderr)")
	helpArg       *bool    = pflag.BoolP("help", "h", false, "Print arguments")
)

func main() {
	pflag.Parse()

	if *helpArg {
		pflag.Usage()
		return
	}
	setupLogging()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if cfg.Size == 0 {
		pflag.Usage()
		log.Fatal("--size argument or config file size is required")
	}

	reg := newRegistry()
	if cfg.Metrics != "" {
		serveMetrics(cfg.Metrics, reg)
	}
	r, err := NewReceiver(cfg, reg, *inArg, *flagsArg, *outArg)
	if err != nil {
		log.Fatalf("Error creating receiver: %v", err)
	}
	defer r.Close()
	if err := r.Run(); err != nil {
		log.Printf("[ERROR] %v", err)
		r.Close()
		os.Exit(1)
	}
}

func setupLogging() {
	var err error
	minLogLevel := "INFO"
	if *isDebugArg {
		minLogLevel = "DEBUG"
	}
	logWriter := os.Stderr
	if *logDestArg != "" {
		logWriter, err = os.OpenFile(*logDestArg, os.O_WRONLY|os.O_CREATE|os.O_SYNC, 0644)
		if err != nil {
			log.Fatalf("Error opening log output, exiting: %v", err)
		}
	}

	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "ERROR"},
		MinLevel: logutils.LogLevel(minLogLevel),
		Writer:   logWriter,
	}
	log.SetOutput(filter)
	log.Print("[DEBUG] Debug is on")
}

// loadConfig reads the config file, if any, and applies the flags that were
// set explicitly on top of it.
func loadConfig() (Config, error) {
	cfg := defaultConfig()
	if *configArg != "" {
		var err error
		cfg, err = LoadConfig(*configArg)
		if err != nil {
			return cfg, err
		}
	}
	applyFlags(pflag.CommandLine, &cfg)
	return cfg, nil
}

func applyFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *modeArg
		case "address":
			cfg.Address = *addressArg
		case "size":
			cfg.Size = *sizeArg
		case "protection":
			cfg.Protection = *protectionArg
		case "option-b":
			cfg.OptionB = *optionBArg
		case "dabplus":
			cfg.DABPlus = *dabPlusArg
		case "scale":
			cfg.Scale = *scaleArg
		case "serial":
			cfg.Serial.Port = *serialArg
		case "baud":
			cfg.Serial.Baud = *baudArg
		case "metrics":
			cfg.Metrics = *metricsArg
		}
	})
}

// Receiver decodes one sub-channel from symbol lane files to an output
// stream, so it can be used in a pipeline with other tools
type Receiver struct {
	cfg      Config
	geo      msc.FrameGeometry
	decoder  *msc.Decoder
	firecode *msc.FirecodeChecker
	metrics  *Metrics
	blocks   uint64

	in    *os.File
	flags *os.File
	out   io.WriteCloser
}

// NewReceiver opens the lanes and the output. The receiver's metrics are
// registered on reg, which must not already hold another receiver's.
func NewReceiver(cfg Config, reg prometheus.Registerer, in, flags, out string) (*Receiver, error) {
	var err error

	r := Receiver{
		cfg: cfg,
		in:  os.Stdin,
		out: os.Stdout,
	}
	r.geo, err = cfg.Geometry()
	if err != nil {
		return nil, err
	}
	r.decoder, err = msc.NewDecoder(r.geo, cfg.Subchannel())
	if err != nil {
		return nil, fmt.Errorf("error creating decoder: %w", err)
	}
	if cfg.DABPlus {
		r.firecode, err = msc.NewFirecodeCheckerFor(r.decoder.Params())
		if err != nil {
			return nil, err
		}
	}

	r.metrics = NewMetrics(reg, prometheus.Labels{
		"address": strconv.Itoa(cfg.Address),
		"size":    strconv.Itoa(cfg.Size),
	})

	if in != "" {
		r.in, err = os.Open(in)
		if err != nil {
			return nil, fmt.Errorf("failed to open symbol input '%s': %w", in, err)
		}
	}
	if flags != "" {
		r.flags, err = os.Open(flags)
		if err != nil {
			return nil, fmt.Errorf("failed to open flag input '%s': %w", flags, err)
		}
	}

	switch {
	case cfg.Serial.Port != "":
		log.Printf("[DEBUG] Opening serial port %s at %d baud", cfg.Serial.Port, cfg.Serial.Baud)
		mode := &serial.Mode{
			BaudRate: cfg.Serial.Baud,
		}
		r.out, err = serial.Open(cfg.Serial.Port, mode)
		if err != nil {
			return nil, fmt.Errorf("serial port open: %w", err)
		}
	case out != "":
		r.out, err = os.Create(out)
		if err != nil {
			return nil, fmt.Errorf("failed to open output '%s': %w", out, err)
		}
	}
	log.Printf("[INFO] %s, %d kbit/s", r.decoder, r.decoder.Params().BitRate())
	return &r, nil
}

// Run decodes until the input ends or the decoder fails.
func (r *Receiver) Run() error {
	var flags io.Reader
	if r.flags != nil {
		flags = r.flags
	}
	reader := msc.NewSymbolReader(r.geo, r.in, flags)

	raw := make(chan msc.Symbol, r.geo.SymbolsPerFrame())
	var readErr error
	readDone := make(chan struct{})
	go func() {
		readErr = reader.ReadAll(raw)
		close(readDone)
	}()

	counted := msc.NewTransform(raw, func(s msc.Symbol) ([]msc.Symbol, error) {
		r.metrics.symbolsRead.Inc()
		return []msc.Symbol{s}, nil
	}, 0)
	src := counted.Source()
	if scale := r.cfg.Scale; scale != 0 && scale != 1 {
		src = msc.NewScaler(src, scale).Source()
	}
	stream := r.decoder.Stream(src, 4)

	for b := range stream.Source() {
		if err := r.handleBlock(b); err != nil {
			// let the stages upstream run to the end of the input
			for range stream.Source() {
			}
			<-readDone
			return err
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("decoding stopped: %w", err)
	}
	<-readDone
	if readErr != nil {
		return fmt.Errorf("reading symbols: %w", readErr)
	}
	log.Printf("[INFO] Input ended after %d blocks", r.blocks)
	return nil
}

func (r *Receiver) handleBlock(b msc.Block) error {
	r.blocks++
	r.metrics.blocksDecoded.Inc()
	r.metrics.pathMetric.Set(b.Metric)
	r.metrics.pathMetricHist.Observe(b.Metric)
	if r.firecode != nil {
		ok, err := r.firecode.Check(b.Data)
		if err != nil {
			return err
		}
		r.metrics.firecodePassed.Add(float64(ok))
		r.metrics.firecodeFailed.Add(float64(len(b.Data)/r.firecode.FrameSize() - ok))
	}
	n, err := r.out.Write(b.Data)
	r.metrics.bytesWritten.Add(float64(n))
	if err != nil {
		return fmt.Errorf("writing block %d: %w", b.Seq, err)
	}
	return nil
}

func (r *Receiver) Close() {
	if r.in != os.Stdin {
		r.in.Close()
	}
	if r.flags != nil {
		r.flags.Close()
	}
	if r.out != os.Stdout {
		r.out.Close()
	}
}
