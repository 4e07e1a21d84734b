// Package testutil provides shared test infrastructure for the SIR simulator.
// It holds the golden dataset types and assertion helpers used across sim/ and
// cmd/ test packages.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one reference run: inputs plus every expected monthly report.
type GoldenTestCase struct {
	Name    string         `json:"name"`
	Initial GoldenState    `json:"initial"`
	Rates   GoldenRates    `json:"rates"`
	Months  int            `json:"months"`
	Reports []GoldenReport `json:"reports"`
}

// GoldenState mirrors sim.PopulationState without importing sim.
type GoldenState struct {
	Susceptible int64 `json:"susceptible"`
	Infected    int64 `json:"infected"`
	Recovered   int64 `json:"recovered"`
}

// GoldenRates mirrors sim.RateParameters.
type GoldenRates struct {
	InfectionRate float64 `json:"infection_rate"`
	RecoveryRate  float64 `json:"recovery_rate"`
}

// GoldenReport mirrors sim.Report.
type GoldenReport struct {
	Step        int   `json:"step"`
	Year        int   `json:"year"`
	Month       int   `json:"month"`
	Susceptible int64 `json:"susceptible"`
	Infected    int64 `json:"infected"`
	Recovered   int64 `json:"recovered"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	if len(dataset.Tests) == 0 {
		t.Fatal("Golden dataset has no test cases")
	}

	return &dataset
}

// AssertConserved fails the test when a step moved the population total outside the
// truncation tolerance: the total may drop by at most maxLoss and never grow.
func AssertConserved(t *testing.T, step int, before, after, maxLoss int64) {
	t.Helper()
	loss := before - after
	if loss < 0 || loss > maxLoss {
		t.Errorf("step %d: total went from %d to %d (loss %d, allowed [0, %d])", step, before, after, loss, maxLoss)
	}
}
