// Package plant provides simulated systems that respond to a correction.
//
// Plants are the other half of a closed loop: they expose an error
// (target minus state), accept a correction and evolve their state when
// stepped. Each variant differs only in how strongly a correction moves
// the state:
//
//   - [Instant]: state moves by exactly the correction
//   - [Damped]: state moves by correction / divisor
//   - [Diminishing]: state moves by correction / age, age growing every step
//   - [Lag]: state moves by a fixed fraction alpha of the correction
//   - [Spring]: a damped mass-spring pushed by the correction as a force,
//     integrated with [integrators.RK4] by default
package plant
