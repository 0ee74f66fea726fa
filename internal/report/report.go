// Package report renders project and build history tables.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/innobuild/innobuild/internal/history"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Info is the project overview printed by `innobuild info`.
type Info struct {
	ProductName   string
	CompanyName   string
	ApplicationID string
	BundleVersion string
	ActiveTarget  string
	Scenes        []string
	SettingsError error

	ProjectDir    string
	SettingsPath  string
	BuildsDir     string
	InstallersDir string
	ScriptPath    string
	ScriptExists  bool
	Setup         bool

	CompilerPath  string
	CompilerError error
}

func yesNo(b bool) string {
	if b {
		return text.FgGreen.Sprint("yes")
	}
	return text.FgYellow.Sprint("no")
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// DrawInfo writes the project overview to w.
func DrawInfo(w io.Writer, info Info) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Project")
	t.AppendHeader(table.Row{"Setting", "Value"})

	if info.SettingsError != nil {
		t.AppendRow(table.Row{"Settings", text.FgRed.Sprint(info.SettingsError.Error())})
	} else {
		t.AppendRows([]table.Row{
			{"Product", valueOrDash(info.ProductName)},
			{"Company", valueOrDash(info.CompanyName)},
			{"Application ID", valueOrDash(info.ApplicationID)},
			{"Bundle version", valueOrDash(info.BundleVersion)},
			{"Active target", valueOrDash(info.ActiveTarget)},
			{"Enabled scenes", len(info.Scenes)},
		})
	}
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Project dir", info.ProjectDir},
		{"Settings file", info.SettingsPath},
		{"Builds dir", info.BuildsDir},
		{"Installers dir", info.InstallersDir},
		{"Installer script", info.ScriptPath},
		{"Script present", yesNo(info.ScriptExists)},
		{"Metadata exported", yesNo(info.Setup)},
	})
	t.AppendSeparator()
	if info.CompilerError != nil {
		t.AppendRow(table.Row{"Inno Setup compiler", text.FgRed.Sprint("not found")})
	} else {
		t.AppendRow(table.Row{"Inno Setup compiler", info.CompilerPath})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

// DrawHistory writes the build history, newest first, to w.
func DrawHistory(w io.Writer, entries []history.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No builds recorded yet.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Finished", "Version", "Target", "Result", "Duration", "Installer", "Output"})
	for _, e := range entries {
		duration := "-"
		if d := e.Duration(); d > 0 {
			duration = d.Round(time.Second).String()
		}
		t.AppendRow(table.Row{
			e.FinishedAt.Local().Format("2006-01-02 15:04:05"),
			valueOrDash(e.Version),
			valueOrDash(e.Target),
			formatResult(e.Result),
			duration,
			yesNo(e.Installer),
			valueOrDash(e.OutputPath),
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func formatResult(result string) string {
	switch result {
	case "Succeeded":
		return text.FgGreen.Sprint(result)
	case "Failed":
		return text.FgRed.Sprint(result)
	case "Cancelled":
		return text.FgYellow.Sprint(result)
	default:
		return result
	}
}
