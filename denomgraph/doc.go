// Package denomgraph builds the compact, immutable denominator HMM graph
// that every minibatch's DenominatorComputation runs forward-backward over.
//
// A Graph is constructed once from a static core.Graph (the phone-loop-like
// FST) and a pdf-id count, and is safe to share read-only across
// goroutines and minibatches for its entire lifetime: NewGraph does all the
// work (arc materialization, stationary-distribution power iteration) up
// front, and Graph exposes no mutators afterward.
package denomgraph
