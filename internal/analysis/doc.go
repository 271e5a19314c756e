// Package analysis inspects recorded loop signals.
//
// [Spectrum] and [DominantFrequency] expose oscillation in an error or
// correction series; [ZeroCrossings] counts how often a signal changes sign,
// which for an error series is how many times the plant passed its target.
package analysis
