// Package scheduler provides the reference scheduling policy for the
// runtime: a FIFO ready queue fed by the dependency graph's countdown
// protocol and drained by worker resources.
//
// The policy surface is deliberately small. The graph tells the policy about
// every new successor edge and every predecessor-finished event
// (AtSuccessor), and hands over each node whose dependencies are satisfied
// (Ready). How ready work is placed on resources beyond FIFO order is a
// different policy's business; this one only guarantees that everything made
// ready is eventually handed to exactly one consumer.
package scheduler
