package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"ytdlq/internal/model"
	"ytdlq/internal/progress"
	"ytdlq/internal/ui"
)

// isolate keeps config and state lookups inside a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	t.Setenv("HOME", base)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))
	viper.Reset()
	t.Cleanup(viper.Reset)
	return base
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlanPrintsCommand(t *testing.T) {
	base := isolate(t)

	out, err := execute(t, "plan", "--out-dir", base, "--format", "audio", "--dl-binary", "/opt/yt-dlp", "https://e/v")
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	for _, want := range []string{"# https://e/v (Audio (MP3))", "/opt/yt-dlp", "-x", "--audio-format mp3", "-- https://e/v"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBadConfigIsCLIError(t *testing.T) {
	isolate(t)

	_, err := execute(t, "plan", "--jobs", "-1", "https://e/v")
	var ee *ExitError
	if !errors.As(err, &ee) || ee.Code != ExitCLIError {
		t.Fatalf("error = %v, want ExitError code %d", err, ExitCLIError)
	}
}

func TestRunRequiresURLs(t *testing.T) {
	isolate(t)

	if _, err := execute(t, "run"); err == nil {
		t.Fatal("run without URLs should fail")
	}
}

func TestRunMissingDownloader(t *testing.T) {
	base := isolate(t)

	_, err := execute(t, "run", "--out-dir", base, "--dl-binary", filepath.Join(base, "nope"), "https://e/v")
	var ee *ExitError
	if !errors.As(err, &ee) || ee.Code != ExitMissingDep {
		t.Fatalf("error = %v, want ExitError code %d", err, ExitMissingDep)
	}
}

// fakeYTDLP writes an executable shell script standing in for yt-dlp.
func fakeYTDLP(t *testing.T, dir, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts need a unix shell")
	}
	path := filepath.Join(dir, "yt-dlp")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunHeadlessSuccess(t *testing.T) {
	base := isolate(t)
	out := filepath.Join(base, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	bin := fakeYTDLP(t, base, `echo "[ytdlq] downloading 50 100 NA"
echo "[ytdlq] downloading 100 100 NA"
printf 'data' > "`+out+`/clip.mp4"
echo "[ytdlq-saved] `+out+`/clip.mp4"
`)

	stdout, err := execute(t, "run", "--out-dir", out, "--dl-binary", bin, "https://e/v")
	if err != nil {
		t.Fatalf("run error = %v\n%s", err, stdout)
	}
	for _, want := range []string{"Finished", "clip.mp4", "4 B"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRunHeadlessFailureExitCode(t *testing.T) {
	base := isolate(t)
	bin := fakeYTDLP(t, base, `echo "ERROR: nope" >&2
exit 1
`)

	stdout, err := execute(t, "run", "--out-dir", base, "--dl-binary", bin, "https://e/v")
	var ee *ExitError
	if !errors.As(err, &ee) || ee.Code != ExitDownloadError {
		t.Fatalf("error = %v, want ExitError code %d", err, ExitDownloadError)
	}
	if !strings.Contains(stdout, "Error") || !strings.Contains(stdout, "nope") {
		t.Errorf("summary lacks the yt-dlp error:\n%s", stdout)
	}
}

func TestLineReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &lineReporter{w: &buf}

	r.Update(progress.Update{JobID: 0, Status: model.StatusDownloading, Message: "Downloading"})
	for _, p := range []int{5, 12, 15, 27} {
		r.Update(progress.Update{JobID: 0, Status: model.StatusDownloading, Percent: p, Message: "Downloading"})
	}
	r.Result(progress.Result{JobID: 0, Status: model.StatusError, Err: errors.New("HTTP Error 404")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	// start, 5% (step 0), 12% (step 1), 27% (step 2), result
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[4], "Error: HTTP Error 404") {
		t.Errorf("result line = %q", lines[4])
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, []model.JobSnapshot{
		{ID: 0, URL: "https://e/a", Format: model.FormatVideo, Status: model.StatusFinished, OutputPath: "/nowhere/a.mp4"},
		{ID: 1, URL: "https://e/b", Format: model.FormatAudio, Status: model.StatusError, Detail: "boom"},
	})
	out := buf.String()
	for _, want := range []string{"ID", "a.mp4", "Audio (MP3)", "boom"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestTuiExit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "jobs failed", err: fmt.Errorf("2 %w:\n- a: x", ui.ErrJobsFailed), code: ExitDownloadError},
		{name: "program error", err: errors.New("could not open a new TTY"), code: ExitCLIError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ee *ExitError
			if err := tuiExit(tt.err); !errors.As(err, &ee) || ee.Code != tt.code {
				t.Errorf("tuiExit(%v) = %v, want code %d", tt.err, err, tt.code)
			}
		})
	}
	if err := tuiExit(nil); err != nil {
		t.Errorf("tuiExit(nil) = %v", err)
	}
}
