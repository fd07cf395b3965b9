// Package mocks provides hand-written test doubles for the store and
// service interfaces. Each mock exposes Fn fields so individual tests can
// override a single method, with a map-backed default implementation
// behind them.
package mocks
