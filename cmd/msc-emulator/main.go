package main

import (
	"bufio"
	"io"
	"log"
	"os"

	"github.com/hashicorp/logutils"
	"github.com/jancona/dabmsc/msc"
	"github.com/spf13/pflag"
)

var (
	modeArg       *int     = pflag.IntP("mode", "m", 1, "DAB transmission mode (1-4)")
	addressArg    *int     = pflag.IntP("address", "a", 0, "Sub-channel start address in CUs")
	sizeArg       *int     = pflag.IntP("size", "s", 0, "Sub-channel size in CUs")
	protectionArg *int     = pflag.IntP("protection", "p", 3, "EEP protection level (1-4)")
	optionBArg    *bool    = pflag.BoolP("option-b", "b", false, "Use EEP-B protection profiles")
	inArg         *string  = pflag.StringP("in", "i", "", "Sub-channel data input (default stdin)")
	outArg        *string  = pflag.StringP("out", "o", "", "Soft symbol output (default stdout)")
	flagsArg      *string  = pflag.String("flags", "", "Frame start flag output (default: none)")
	noiseArg      *float64 = pflag.Float64("noise", 0, "Standard deviation of added Gaussian noise")
	seedArg       *uint64  = pflag.Uint64("seed", 1, "Noise generator seed")
	leadInArg     *int     = pflag.Int("lead-in", 0, "Unsynchronized symbols written before the first frame")
	isDebugArg    *bool    = pflag.BoolP("debug", "d", false, "Emit debug log messages")
	helpArg       *bool    = pflag.BoolP("help", "h", false, "Print arguments")
)

func main() {
	pflag.Parse()

	if *helpArg {
		pflag.Usage()
		return
	}
	if *sizeArg == 0 {
		pflag.Usage()
		log.Fatal("--size argument is required")
	}
	setupLogging()

	geo, err := msc.GeometryForMode(*modeArg)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	sub := msc.SubchannelConfig{
		Address:    *addressArg,
		Size:       *sizeArg,
		Protection: *protectionArg - 1,
		OptionB:    *optionBArg,
	}

	in := os.Stdin
	if *inArg != "" {
		in, err = os.Open(*inArg)
		if err != nil {
			log.Fatalf("Failed to open input '%s': %v", *inArg, err)
		}
		defer in.Close()
	}
	out := os.Stdout
	if *outArg != "" {
		out, err = os.Create(*outArg)
		if err != nil {
			log.Fatalf("Failed to open output '%s': %v", *outArg, err)
		}
		defer out.Close()
	}
	softOut := bufio.NewWriter(out)
	var flagOut *bufio.Writer
	var flagWriter io.Writer
	if *flagsArg != "" {
		f, err := os.Create(*flagsArg)
		if err != nil {
			log.Fatalf("Failed to open flag output '%s': %v", *flagsArg, err)
		}
		defer f.Close()
		flagOut = bufio.NewWriter(f)
		flagWriter = flagOut
	}

	e, err := NewEmulator(geo, sub, msc.NewSymbolWriter(softOut, flagWriter), *noiseArg, *seedArg)
	if err != nil {
		log.Fatalf("Error creating emulator: %v", err)
	}
	if err := e.LeadIn(*leadInArg); err != nil {
		log.Fatalf("Error writing lead-in: %v", err)
	}
	if err := e.Run(in); err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := softOut.Flush(); err != nil {
		log.Fatalf("Error flushing output: %v", err)
	}
	if flagOut != nil {
		if err := flagOut.Flush(); err != nil {
			log.Fatalf("Error flushing flags: %v", err)
		}
	}
}

func setupLogging() {
	minLogLevel := "INFO"
	if *isDebugArg {
		minLogLevel = "DEBUG"
	}
	filter := &logutils.LevelFilter{
		Levels:   []logutils.LogLevel{"DEBUG", "INFO", "ERROR"},
		MinLevel: logutils.LogLevel(minLogLevel),
		Writer:   os.Stderr,
	}
	log.SetOutput(filter)
}
