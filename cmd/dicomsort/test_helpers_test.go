package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dicomsort/internal/metadata"
	"dicomsort/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	sourceDir  string
	configPath string
	resolver   *testsupport.Resolver
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	env := &cliTestEnv{
		baseDir:    base,
		sourceDir:  filepath.Join(base, "incoming"),
		configPath: filepath.Join(base, "config.toml"),
		resolver:   testsupport.NewResolver(),
	}
	writeTestConfig(t, env.configPath, filepath.Join(base, "selftest"))
	useResolver(t, env.resolver)
	return env
}

func writeTestConfig(t *testing.T, path, workDir string) {
	t.Helper()
	content := fmt.Sprintf("[logging]\nlevel = %q\n\n[self_test]\nwork_dir = %q\n", "error", workDir)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func useResolver(t *testing.T, r metadata.Resolver) {
	t.Helper()
	prev := newResolver
	newResolver = func(*slog.Logger) metadata.Resolver { return r }
	t.Cleanup(func() { newResolver = prev })
}

func (e *cliTestEnv) addSource(t *testing.T, rel string, tags metadata.TagMapping) string {
	t.Helper()
	return e.resolver.WriteSource(t, e.sourceDir, rel, tags)
}

func (e *cliTestEnv) target(layout string) string {
	return filepath.ToSlash(filepath.Join(e.baseDir, "sorted")) + "/" + layout
}

func runCLI(t *testing.T, args []string, stdin, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func patient(name, series, instance string) metadata.TagMapping {
	return metadata.TagMapping{
		"PatientName":    name,
		"SeriesNumber":   series,
		"InstanceNumber": instance,
	}
}
