// Package evonet trains fixed-topology feedforward networks that control
// agents in a simulation, either by evolution or by supervised training on
// recorded demonstrations.
//
// The network itself lives in the nn subpackage. This package schedules the
// agents: Evolution breeds generations from a small buffer of the fittest
// networks seen so far and adapts its mutation regime to how much the best
// fitness improved, and Training backpropagates a shared demonstration set
// with a spread of learning rates. Both persist genomes and evaluation logs
// through a Sink, implemented by the stores in the store subpackage.
//
// Basic usage:
//
//	// Load configuration
//	config, err := evonet.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Open a store for genomes and evaluation logs
//	sink, err := store.New(config.Store.Backend, config.Store.Path)
//	if err != nil {
//		log.Fatalf("Error creating store: %v", err)
//	}
//	if err := sink.Init(ctx); err != nil {
//		log.Fatalf("Error initializing store: %v", err)
//	}
//
//	// Evolve networks for your agents
//	evo, err := evonet.NewEvolution(config, agents, evonet.WithSink(sink))
//	if err != nil {
//		log.Fatalf("Error creating evolution: %v", err)
//	}
//	evalLog, err := evo.Run(ctx)
//	if err != nil {
//		log.Fatalf("Error running evolution: %v", err)
//	}
//	fmt.Println(evalLog.Info)
package evonet
