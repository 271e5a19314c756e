// Package integrators advances continuous plants by one fixed step.
//
// Plants with internal dynamics describe themselves as a Derivative over a
// state vector; an Integrator turns that into a discrete update under a
// constant correction held for the whole step.
package integrators
