// Package factory models a stochastic manufacturing line on top of the sim
// kernel: workstations consuming items from local bins, random failures and
// repairs, a restocking controller contending for a shared supplier pool,
// facility-wide accidents, and a periodic snapshot sampler.
//
// A Facility lives for exactly one run. Result copies its counters into a
// RunResult that holds no references back into the simulation.
package factory
