// Package aggregates implements the domain aggregate contracts on top of the
// table repos in internal/data/repos.
//
// Every write runs through executeWrite, which owns the transaction, maps
// storage errors onto aggregate error codes and reports the outcome to Hooks.
package aggregates
