// Package models provides ready-made atomic models for common simulation
// roles: stochastic job generators, fixed-delay servers and collecting
// sinks. They are the building blocks the CLI scenarios instantiate and
// double as fixtures for integration tests.
//
// Every stochastic model owns its own rngstream.RngStream, so draws are
// independent across models and a fixed model construction order yields a
// reproducible run.
package models
