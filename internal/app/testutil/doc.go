// Package testutil provides test doubles and fixtures shared by package tests.
//
// MockEngine and MockModel implement api.Engine and api.Model on top of
// testify's mock.Mock, so tests set expectations with On(...).Return(...).
// Fixture helpers write small audio files into t.TempDir().
package testutil
