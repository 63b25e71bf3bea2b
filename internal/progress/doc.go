// Package progress carries work-completion updates from long-running
// computations to whatever displays them. A Subject fans updates out to
// registered Observers; ChannelObserver bridges them onto a channel for the
// orchestration layer.
package progress
