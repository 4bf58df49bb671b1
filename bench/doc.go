// Package bench runs the solvers against suites of instances and reports
// weight and time statistics per (instance, engine) pair.
//
// A suite is a YAML file naming instances, either formula files or random
// generator specs, and engines with their parameters:
//
//	name: smoke
//	runs: 5
//	seed: 1000
//	timeout: 10s
//	instances:
//	  - path: testdata/easy.cnf
//	  - name: rand-40
//	    vars: 40
//	    clauses: 160
//	engines:
//	  - name: exact
//	    kind: bnb
//	  - name: sa-slow
//	    kind: anneal
//	    params:
//	      alpha: 0.99
//	      initialTemp: 50
//
// Engine parameters map onto the engine's configuration fields by
// case-insensitive name. Every returned model is re-checked against its
// instance; a run whose solver reports an infeasible model or a wrong weight
// is recorded as an error, never as a solution.
package bench
