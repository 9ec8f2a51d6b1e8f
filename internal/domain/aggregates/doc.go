// Package aggregates defines the write boundaries of the scheduling engine.
//
// Each aggregate owns one transaction per call and enforces the schedule
// state machine before anything is persisted. Notifications and other side
// effects happen after the aggregate returns.
package aggregates
