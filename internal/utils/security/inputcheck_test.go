package security

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestValidateString(t *testing.T) {
	lim := DefaultLimits()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "Dragyn Games", false},
		{"empty", "", false},
		{"newline allowed", "a\nb", false},
		{"nul", "a\x00b", true},
		{"control char", "a\u0007b", true},
		{"invalid utf8", string([]byte{0xff, 0xfe, 0xfd}), true},
		{"too long", strings.Repeat("a", lim.MaxString+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateString(tt.name, tt.input, lim)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateString(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateString_NewlineAndTabDisallowed(t *testing.T) {
	lim := DefaultLimits()
	lim.AllowNL = false
	lim.AllowTab = false
	if err := ValidateString("nl", "a\nb", lim); err == nil {
		t.Fatal("expected newline to be rejected when AllowNL is false")
	}
	if err := ValidateString("tab", "a\tb", lim); err == nil {
		t.Fatal("expected tab to be rejected when AllowTab is false")
	}
}

func TestValidateStructStrings(t *testing.T) {
	type scene struct{ Path string }
	type settings struct {
		Name   string
		Scenes []scene
		Extra  map[string]any
	}

	good := &settings{Name: "ok", Scenes: []scene{{Path: "Assets/Main.unity"}}, Extra: map[string]any{"k": "v"}}
	if err := ValidateStructStrings(good, DefaultLimits()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := &settings{Scenes: []scene{{Path: "Assets/\x00.unity"}}}
	err := ValidateStructStrings(bad, DefaultLimits())
	if err == nil {
		t.Fatal("expected NUL in nested slice to be rejected")
	}
	if !strings.Contains(err.Error(), "Scenes[0].Path") {
		t.Errorf("error should name the offending field, got %v", err)
	}

	nested := map[string]any{"player": map[string]any{"companyName": "bad\x07"}}
	if err := ValidateStructStrings(&nested, DefaultLimits()); err == nil {
		t.Fatal("expected control rune inside interface map to be rejected")
	}
}

func TestAttachRecursive(t *testing.T) {
	var ran bool
	root := &cobra.Command{Use: "root"}
	child := &cobra.Command{
		Use:  "child",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ran = true
			return nil
		},
	}
	child.Flags().String("output", "", "output path")
	root.AddCommand(child)
	root.SilenceErrors = true
	root.SilenceUsage = true

	AttachRecursive(root, DefaultLimits())

	root.SetArgs([]string{"child", "--output", "Builds/game.exe", "ok"})
	if err := root.Execute(); err != nil {
		t.Fatalf("valid invocation failed: %v", err)
	}
	if !ran {
		t.Fatal("child command did not run")
	}

	ran = false
	root.SetArgs([]string{"child", "--output", "bad\x00path"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected NUL in flag value to be rejected")
	}
	if ran {
		t.Fatal("child command should not run after validation failure")
	}
}
