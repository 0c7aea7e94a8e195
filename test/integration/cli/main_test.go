// Package cli_test drives the speedreader binary's read subcommand
// through godog scenarios, grounded on the teacher's
// test/integration/cli BDD harness (cucumber/godog + cobra's in-process
// Execute, rather than spawning a built binary).
package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"

	speedcmd "github.com/speedreader/speedreader/cmd/speedreader/cmd"
)

type result struct {
	Path  string `json:"path"`
	Words []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"words"`
	Error string `json:"error,omitempty"`
}

type testContext struct {
	dir     string
	stdout  *bytes.Buffer
	runErr  error
	results []result
}

func (tc *testContext) blankImage(size string, name string) error {
	var w, h int
	if _, err := fmt.Sscanf(size, "%dx%d", &w, &h); err != nil {
		return err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	f, err := os.Create(filepath.Join(tc.dir, name))
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func (tc *testContext) aBlankImage(size, name string) error {
	return tc.blankImage(size, name)
}

func (tc *testContext) iRunReadInMockModeOn(paths string) error {
	var names []string
	for _, n := range splitQuoted(paths) {
		names = append(names, filepath.Join(tc.dir, n))
	}

	cmd := speedcmd.GetRootCommand()
	tc.stdout = new(bytes.Buffer)
	cmd.SetOut(tc.stdout)
	cmd.SetErr(tc.stdout)
	args := append([]string{"read", "--mock"}, names...)
	cmd.SetArgs(args)

	tc.runErr = cmd.Execute()
	tc.results = nil
	if tc.runErr == nil {
		dec := json.NewDecoder(tc.stdout)
		for {
			var r result
			if err := dec.Decode(&r); err != nil {
				break
			}
			tc.results = append(tc.results, r)
		}
	}
	return nil
}

func splitQuoted(s string) []string {
	var out []string
	var cur []rune
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			if inQuote {
				out = append(out, string(cur))
				cur = nil
			}
			inQuote = !inQuote
		case inQuote:
			cur = append(cur, r)
		}
	}
	return out
}

func (tc *testContext) theCommandSucceeds() error {
	if tc.runErr != nil {
		return fmt.Errorf("expected success, got: %w", tc.runErr)
	}
	return nil
}

func (tc *testContext) theCommandFails() error {
	if tc.runErr == nil {
		return fmt.Errorf("expected the command to fail, it succeeded")
	}
	return nil
}

func (tc *testContext) resultFor(name string) (*result, error) {
	full := filepath.Join(tc.dir, name)
	for i := range tc.results {
		if tc.results[i].Path == full {
			return &tc.results[i], nil
		}
	}
	return nil, fmt.Errorf("no result for %s", name)
}

func (tc *testContext) theResultForHasNoWords(name string) error {
	r, err := tc.resultFor(name)
	if err != nil {
		return err
	}
	if len(r.Words) != 0 {
		return fmt.Errorf("expected no words, got %d", len(r.Words))
	}
	return nil
}

func (tc *testContext) theResultForHasNoError(name string) error {
	r, err := tc.resultFor(name)
	if err != nil {
		return err
	}
	if r.Error != "" {
		return fmt.Errorf("expected no error, got %q", r.Error)
	}
	return nil
}

func (tc *testContext) theResultsAreInTheOrder(order string) error {
	names := splitQuoted(order)
	if len(names) != len(tc.results) {
		return fmt.Errorf("expected %d results, got %d", len(names), len(tc.results))
	}
	for i, name := range names {
		want := filepath.Join(tc.dir, name)
		if tc.results[i].Path != want {
			return fmt.Errorf("result %d: expected %s, got %s", i, want, tc.results[i].Path)
		}
	}
	return nil
}

func InitializeScenario(sc *godog.ScenarioContext) {
	tc := &testContext{}

	sc.Before(func(ctx context.Context, scn *godog.Scenario) (context.Context, error) {
		dir, err := os.MkdirTemp("", "speedreader-bdd-*")
		if err != nil {
			return ctx, err
		}
		tc.dir = dir
		return ctx, nil
	})

	sc.Step(`^a blank (\d+x\d+) image "([^"]+)"$`, tc.aBlankImage)
	sc.Step(`^I run speedreader read in mock mode on (.+)$`, tc.iRunReadInMockModeOn)
	sc.Step(`^the command succeeds$`, tc.theCommandSucceeds)
	sc.Step(`^the command fails$`, tc.theCommandFails)
	sc.Step(`^the result for "([^"]+)" has no words$`, tc.theResultForHasNoWords)
	sc.Step(`^the result for "([^"]+)" has no error$`, tc.theResultForHasNoError)
	sc.Step(`^the results are in the order (.+)$`, tc.theResultsAreInTheOrder)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("non-zero status returned from godog, failed feature tests")
	}
}
