package player

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/innobuild/innobuild/internal/pipeline"
	"github.com/innobuild/innobuild/internal/project"
	"github.com/innobuild/innobuild/internal/utils/shell"
)

func settingsFor(target string) *project.Settings {
	return &project.Settings{
		Player: project.PlayerSettings{ProductName: "Rocket Hopper"},
		Build: project.BuildSettings{
			ActiveTarget: target,
			Scenes: []project.Scene{
				{Path: "Assets/Scenes/Main.unity", Enabled: true},
				{Path: "Assets/Scenes/Debug.unity", Enabled: false},
			},
		},
	}
}

func TestLookupTarget(t *testing.T) {
	for _, name := range TargetNames() {
		target, err := LookupTarget(name)
		if err != nil {
			t.Fatalf("LookupTarget(%s) failed: %v", name, err)
		}
		if target.Group != project.StandaloneGroup || target.Flag == "" || target.Ext == "" {
			t.Errorf("incomplete target %+v", target)
		}
	}

	if target, err := LookupTarget(""); err != nil || target.Name != DefaultTarget {
		t.Errorf("empty target should default to %s, got %+v, %v", DefaultTarget, target, err)
	}
	if _, err := LookupTarget("Android"); !errors.Is(err, ErrUnsupportedTarget) {
		t.Errorf("expected ErrUnsupportedTarget, got %v", err)
	}
}

func TestBuildSucceeded(t *testing.T) {
	root := t.TempDir()
	mock := shell.NewMockExecutor([]shell.MockCommand{{Pattern: "-batchmode", Output: "Build succeeded\n"}})
	b := &Builder{
		EditorPath: "/opt/unity/Editor/Unity",
		ProjectDir: root,
		BuildsDir:  filepath.Join(root, "Builds"),
		Executor:   mock,
	}

	result, err := b.Build(context.Background(), settingsFor("StandaloneWindows64"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	wantOutput := filepath.Join(root, "Builds", "Rocket Hopper.exe")
	if result.Result != pipeline.Succeeded || result.OutputPath != wantOutput || result.PlatformGroup != project.StandaloneGroup {
		t.Errorf("unexpected result %+v", result)
	}
	if info, err := os.Stat(b.BuildsDir); err != nil || !info.IsDir() {
		t.Error("builds dir should be created")
	}

	if len(mock.Ran) != 1 {
		t.Fatalf("expected one editor run, got %v", mock.Ran)
	}
	for _, part := range []string{"-batchmode", "-quit", "-projectPath " + root, "-buildWindows64Player " + wantOutput} {
		if !strings.Contains(mock.Ran[0], part) {
			t.Errorf("command %q missing %q", mock.Ran[0], part)
		}
	}
}

func TestBuildFailedAndCancelled(t *testing.T) {
	root := t.TempDir()
	mock := shell.NewMockExecutor([]shell.MockCommand{{Pattern: "-batchmode", Error: errors.New("exit status 1")}})
	b := &Builder{EditorPath: "Unity", ProjectDir: root, BuildsDir: filepath.Join(root, "Builds"), Executor: mock}

	result, err := b.Build(context.Background(), settingsFor("StandaloneLinux64"))
	if err != nil {
		t.Fatalf("a failed player build is a result, got error %v", err)
	}
	if result.Result != pipeline.Failed || !strings.HasSuffix(result.OutputPath, ".x86_64") {
		t.Errorf("unexpected result %+v", result)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err = b.Build(ctx, settingsFor("StandaloneLinux64"))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.Result != pipeline.Cancelled {
		t.Errorf("expected Cancelled, got %s", result.Result)
	}
}

func TestBuildCannotStart(t *testing.T) {
	root := t.TempDir()
	mock := shell.NewMockExecutor(nil)

	b := &Builder{ProjectDir: root, BuildsDir: filepath.Join(root, "Builds"), Executor: mock}
	if _, err := b.Build(context.Background(), settingsFor("")); err == nil {
		t.Error("expected error without an editor")
	}

	b.EditorPath = "Unity"
	if _, err := b.Build(context.Background(), settingsFor("iOS")); !errors.Is(err, ErrUnsupportedTarget) {
		t.Errorf("expected ErrUnsupportedTarget, got %v", err)
	}
	if len(mock.Ran) != 0 {
		t.Errorf("editor must not run, got %v", mock.Ran)
	}
}

func TestOutputPathDefaultsName(t *testing.T) {
	b := &Builder{BuildsDir: "Builds"}
	target, _ := LookupTarget("StandaloneOSX")
	if got := b.OutputPath("  ", target); got != filepath.Join("Builds", "Player.app") {
		t.Errorf("OutputPath = %s", got)
	}
}
