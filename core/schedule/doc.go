// Package schedule turns a tournament into a 0/1 integer program and the
// solved program back into a schedule.
//
// The pipeline is strictly forward: EnumerateMatches derives the round-robin
// matches of every group, FilterCandidates keeps the (day, referee) pairs
// compatible with availability and conflicts, BuildModel declares one binary
// variable per candidate together with the hard constraints and the weighted
// objective, an ilp.Solver solves the program starting from the GreedyHint
// schedule and Extract rebuilds the schedule rows, numbering the fields of
// each day, and the referee workload. Planner runs the whole pipeline.
//
// Fields are identical, so the program only caps the number of matches per
// day instead of carrying one variable per field.
package schedule
