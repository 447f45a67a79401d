// Package burnout is the pure assessment core: the workload staircase
// scorer, the quantitative/qualitative fusion engine with its trend state
// machine, and the behavioral pattern learner.
//
// Nothing in this package performs I/O. Storage, sentiment computation,
// and orchestration live in their own packages and inject values in.
package burnout
