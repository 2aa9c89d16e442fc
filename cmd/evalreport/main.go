// Command evalreport prints evaluation logs written by the evolution and
// training schedulers and optionally renders their fitness convergence.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/baldhumanity/evonet-go/evonet/record"
	"github.com/baldhumanity/evonet-go/evonet/store"
)

func main() {
	flag.Usage = func() {
		println("Usage: evalreport [flags] [target]\n")

		println("Flags:\n")
		flag.PrintDefaults()
		println()

		println("Targets:\n")
		for _, m := range []struct{ name, desc string }{
			{"target", "(mandatory) path to a JSON log, or a run id when -store is given"},
		} {
			fmt.Printf("  %v%v%v\n", m.name, strings.Repeat(" ", 12-len(m.name)), m.desc)
		}
		println()

		os.Exit(0)
	}
	pbShort := flag.Bool("short", false, "Omit per-epoch rows if given.")
	pbTraining := flag.Bool("training", false, "Read a training log instead of an evolution log.")
	plotPath := flag.String("plot", "", "Render the fitness convergence to this PNG file.")
	backend := flag.String("store", "", "Read the log from a store backend (file or sqlite) by run id.")
	storePath := flag.String("path", "", "Store directory or database file used with -store.")
	flag.Parse()

	target := flag.Arg(0)
	if target == "" {
		log.Fatalln("Please provide a log file or run id.")
	}
	src, err := openSource(*backend, *storePath)
	if err != nil {
		log.Fatalln("Failed to open store:", err)
	}
	defer src.Close()

	ctx := context.Background()
	if *pbTraining {
		trainLog, err := src.trainingLog(ctx, target)
		if err != nil {
			log.Fatalln("Failed to load training log:", err)
		}
		fmt.Println()
		fmt.Println(" ~ Training", trainLog.RunID, "~ ")
		fmt.Println()
		fmt.Println(trainingTable(trainLog))
		fmt.Println()
		if *plotPath != "" {
			if err := plotTraining(trainLog, *plotPath); err != nil {
				log.Fatalf("cannot plot %s: %v", *plotPath, err)
			}
			fmt.Println("saved plot:", *plotPath)
		}
		return
	}

	evalLog, err := src.evolutionLog(ctx, target)
	if err != nil {
		log.Fatalln("Failed to load evolution log:", err)
	}
	fmt.Println()
	fmt.Println(" ~ Evolution", evalLog.RunID, "~ ")
	fmt.Println()
	if evalLog.Info != "" {
		fmt.Println(evalLog.Info)
	}
	if evalLog.AdditionalNotes != "" {
		fmt.Println("Notes:", evalLog.AdditionalNotes)
	}
	fmt.Println()
	fmt.Println(cycleTable(evalLog))
	fmt.Println()
	if !*pbShort {
		for i := range evalLog.Evaluations {
			fmt.Println(" ~ Cycle", i, "~ ")
			fmt.Println()
			fmt.Println(epochTable(&evalLog.Evaluations[i]))
			fmt.Println()
		}
	}
	if *plotPath != "" {
		if err := plotEvolution(evalLog, *plotPath); err != nil {
			log.Fatalf("cannot plot %s: %v", *plotPath, err)
		}
		fmt.Println("saved plot:", *plotPath)
	}
}

// source reads logs either from plain JSON files or from a store.
type source struct {
	store store.Store
}

func openSource(backend, path string) (*source, error) {
	if backend == "" {
		return &source{}, nil
	}
	s, err := store.New(strings.ToLower(backend), path)
	if err != nil {
		return nil, err
	}
	if err := s.Init(context.Background()); err != nil {
		return nil, err
	}
	return &source{store: s}, nil
}

func (s *source) Close() {
	if s.store != nil {
		_ = store.CloseIfSupported(s.store)
	}
}

func (s *source) evolutionLog(ctx context.Context, target string) (*record.EvolutionLog, error) {
	if s.store == nil {
		data, err := os.ReadFile(filepath.Clean(target))
		if err != nil {
			return nil, err
		}
		l, err := store.DecodeEvolutionLog(data)
		if err != nil {
			return nil, err
		}
		return &l, nil
	}
	l, ok, err := s.store.LoadEvolutionLog(ctx, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no evolution log for run %q", target)
	}
	return &l, nil
}

func (s *source) trainingLog(ctx context.Context, target string) (*record.TrainingLog, error) {
	if s.store == nil {
		data, err := os.ReadFile(filepath.Clean(target))
		if err != nil {
			return nil, err
		}
		l, err := store.DecodeTrainingLog(data)
		if err != nil {
			return nil, err
		}
		return &l, nil
	}
	l, ok, err := s.store.LoadTrainingLog(ctx, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no training log for run %q", target)
	}
	return &l, nil
}
