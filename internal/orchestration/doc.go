// Package orchestration runs the engine's long operations: fitting a
// viewport and sweeping a lattice of parameters across a worker pool. It
// decouples the work from its presentation via ProgressReporter and
// ResultPresenter.
package orchestration
