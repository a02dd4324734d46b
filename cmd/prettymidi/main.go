package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Garik-/prettymidi/pkg/prettymidi"
	"go.uber.org/zap"
)

const (
	maxGoroutines = 10
)

var (
	inFlag         = flag.String("i", "", "Input midi file")
	listFlag       = flag.String("l", "", "The path to the list of midi files,\nfind . -type f -name \"*.mid\" > midi_list.txt")
	outFlag        = flag.String("o", "", "Output file, stdout when empty")
	maxFlag        = flag.Int("p", maxGoroutines, "Number of files processed in parallel, must be > 0")
	formatFlag     = flag.String("format", "json", "Output format: json or text")
	resolutionFlag = flag.Uint("resolution", 0, "Override ticks per quarter note used for the tempo map")
	tempoFlag      = flag.Float64("tempo", prettymidi.DefaultTempo, "Tempo in BPM before the first tempo event")
	endFlag        = flag.String("end", "start", "Segment used for note end times: start or own")
	orphansFlag    = flag.String("orphans", "drop", "Events before any program: drop or keep")
	charsetFlag    = flag.String("charset", "utf-8", "Track name charset: utf-8 or shift-jis")
	trackNameFlag  = flag.Bool("track-names", false, "Name instruments after their track")
	gomidiFlag     = flag.Bool("gomidi", false, "Decode with gomidi instead of the built-in decoder")
	summaryFlag    = flag.Bool("summary", false, "Append per-program note counts and velocity ranges to text output")
	debugFlag      = flag.Bool("debug", false, "Debug logging")
)

func options() (prettymidi.Options, error) {
	opts := prettymidi.Options{
		InitialTempo:  *tempoFlag,
		Charset:       *charsetFlag,
		NameFromTrack: *trackNameFlag,
		Logger:        readerLog,
	}

	if *resolutionFlag > 0xFFFF {
		return opts, fmt.Errorf("resolution %d does not fit 16 bits", *resolutionFlag)
	}
	opts.Resolution = uint16(*resolutionFlag)

	switch *endFlag {
	case "start":
		opts.EndTime = prettymidi.EndAtStartSegment
	case "own":
		opts.EndTime = prettymidi.EndAtOwnSegment
	default:
		return opts, fmt.Errorf("unknown end mode %q", *endFlag)
	}

	switch *orphansFlag {
	case "drop":
		opts.Orphans = prettymidi.DropOrphans
	case "keep":
		opts.Orphans = prettymidi.KeepOrphans
	default:
		return opts, fmt.Errorf("unknown orphans policy %q", *orphansFlag)
	}

	return opts, nil
}

func main() {
	os.Exit(run())
}

// run returns the exit status so deferred flushes and closes happen first.
func run() int {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i file.mid | -l list.txt\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if (*inFlag == "") == (*listFlag == "") || *maxFlag <= 0 {
		flag.Usage()
		return 2
	}

	if *debugFlag {
		l, err := zap.NewDevelopment()
		if err != nil {
			log.Println(err)
			return 1
		}
		defer l.Sync()
		enableDebugLogging(l)
	}

	opts, err := options()
	if err != nil {
		log.Println(err)
		return 2
	}

	c := &converter{reader: prettymidi.NewReader(opts), useGomidi: *gomidiFlag}

	var results []*result
	if *inFlag != "" {
		res := &result{name: *inFlag}
		res.result, res.err = c.convertFile(*inFlag)
		results = append(results, res)
	} else {
		f, err := os.Open(*listFlag)
		if err != nil {
			log.Println(err)
			return 1
		}
		defer f.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		results = convertAll(ctx, c, readList(ctx, f), *maxFlag)
	}

	out := os.Stdout
	if *outFlag != "" {
		out, err = os.Create(*outFlag)
		if err != nil {
			log.Println(err)
			return 1
		}
		defer out.Close()
	}

	switch strings.ToLower(*formatFlag) {
	case "text":
		err = writeText(out, results)
		if err == nil && *summaryFlag {
			err = writeSummary(out, newProgramMap(results))
		}
	default:
		err = writeJSON(out, results)
	}
	if err != nil {
		log.Println(err)
		return 1
	}

	for _, r := range results {
		if r.err != nil {
			return 1
		}
	}
	return 0
}
