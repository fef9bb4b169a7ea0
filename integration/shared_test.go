//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedPulsePath holds the path to a shared pulse binary built once for all tests.
	sharedPulsePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// Two consecutive weekly snapshots of the same portfolio.
const (
	week1CSV = `id,name,status,blocked_duration_days,scope_change_events_14d,days_stagnant,dependency_count,dependency_critical,owner_changes_30d,days_to_target,meaningful_progress_7d,team_wip_under_limit,status_notes
INIT-1,Checkout Revamp,In Progress,0,0,0,0,false,0,16,false,false,
INIT-2,Search Relevance,In Progress,0,0,0,0,false,0,37,false,false,
INIT-3,Data Platform,In Progress,0,1,2,4,false,0,19,false,false,
`
	week2CSV = `id,name,status,blocked_duration_days,scope_change_events_14d,days_stagnant,dependency_count,dependency_critical,owner_changes_30d,days_to_target,meaningful_progress_7d,team_wip_under_limit,status_notes
INIT-1,Checkout Revamp,Blocked,4,0,0,0,false,0,9,false,false,Waiting on vendor
INIT-2,Search Relevance,In Progress,0,0,0,0,false,0,30,true,true,
INIT-3,Data Platform,In Progress,0,3,5,10,true,0,12,false,false,
`
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getPulseBinary returns the path to the pulse binary, building it once if needed.
func getPulseBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "pulse-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		pulsePath := filepath.Join(tempDir, "pulse")
		buildCmd := exec.Command("go", "build", "-o", pulsePath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build pulse: %v", err))
		}

		sharedPulsePath = pulsePath
	})

	return sharedPulsePath
}

// writeSnapshots writes both weekly snapshots into dir.
func writeSnapshots(t *testing.T, dir string) (week1, week2 string) {
	t.Helper()
	week1 = filepath.Join(dir, "week1.csv")
	week2 = filepath.Join(dir, "week2.csv")
	require.NoError(t, os.WriteFile(week1, []byte(week1CSV), 0o644))
	require.NoError(t, os.WriteFile(week2, []byte(week2CSV), 0o644))
	return week1, week2
}

// runPulseCommand runs the binary with extra environment and returns stdout.
func runPulseCommand(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getPulseBinary(), args...)
	cmd.Dir = t.TempDir() // Keep stray .pulse.yaml files out of the run
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.Output()
	if err != nil {
		var stderr string
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = string(exitErr.Stderr)
		}
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), string(output), stderr)
		return string(output), err
	}
	return string(output), nil
}
