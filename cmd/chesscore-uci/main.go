package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	hashMB     = flag.Int("hash", 16, "transposition table size in MB")
	bookFile   = flag.String("book", "", "path to a Polyglot opening book")
	ownBook    = flag.Bool("ownbook", false, "consult the opening book by default")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	store, err := storage.NewStorage()
	if err != nil {
		log.Printf("Warning: persistent storage unavailable: %v", err)
		store = nil
	}

	eng := engine.NewEngine(*hashMB)

	if *bookFile != "" {
		if err := eng.LoadBook(*bookFile); err != nil {
			log.Printf("Warning: could not load book %s: %v", *bookFile, err)
		} else {
			eng.SetOwnBook(*ownBook)
		}
	}

	protocol := uci.New(eng, store)
	protocol.Run()
}
