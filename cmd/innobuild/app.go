package main

import (
	"github.com/innobuild/innobuild/internal/config"
	"github.com/innobuild/innobuild/internal/history"
	"github.com/innobuild/innobuild/internal/installer"
	"github.com/innobuild/innobuild/internal/pipeline"
	"github.com/innobuild/innobuild/internal/project"
	"github.com/innobuild/innobuild/internal/utils/logger"
)

// newConfirmer answers from --yes/--no, otherwise asks on the terminal.
func newConfirmer() pipeline.Confirmer {
	switch {
	case assumeYes:
		return pipeline.Static(true)
	case assumeNo:
		return pipeline.Static(false)
	default:
		return pipeline.NewPrompt()
	}
}

func newSettingsStore() (*project.FileStore, error) {
	path, err := config.SettingsPath()
	if err != nil {
		return nil, err
	}
	return project.NewFileStore(path), nil
}

func newProvisioner() (*installer.Provisioner, error) {
	installersDir, err := config.InstallersDir()
	if err != nil {
		return nil, err
	}
	templateDir, err := config.TemplateDir()
	if err != nil {
		return nil, err
	}
	return &installer.Provisioner{
		InstallersDir: installersDir,
		ScriptName:    config.Global().Installer.Script,
		TemplateDir:   templateDir,
	}, nil
}

func newCompiler(confirm pipeline.Confirmer, wait bool) (*installer.Compiler, error) {
	prov, err := newProvisioner()
	if err != nil {
		return nil, err
	}
	cfg := config.Global().Installer
	return &installer.Compiler{
		Locator:     installer.NewLocator(cfg.CompilerPath, cfg.RegistryKey),
		Provisioner: prov,
		Confirm:     confirm.Confirm,
		Wrapper:     cfg.CompilerWrapper,
		Wait:        wait,
	}, nil
}

// openHistory opens the build history. History is optional: a database that
// cannot be opened is logged and nil is returned.
func openHistory() *history.Store {
	if !config.Global().History.Enabled {
		return nil
	}
	log := logger.Logger()

	path, err := config.HistoryPath()
	if err != nil {
		log.Warnf("Build history disabled: %v", err)
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		log.Warnf("Build history disabled: %v", err)
		return nil
	}
	return store
}

// newHooks assembles the build hooks from the global configuration. The
// returned function releases the history database.
func newHooks() (*pipeline.Hooks, func(), error) {
	settings, err := newSettingsStore()
	if err != nil {
		return nil, nil, err
	}
	buildsDir, err := config.BuildsDir()
	if err != nil {
		return nil, nil, err
	}
	confirm := newConfirmer()
	compiler, err := newCompiler(confirm, false)
	if err != nil {
		return nil, nil, err
	}

	cfg := config.Global()
	hooks := &pipeline.Hooks{
		Settings:     settings,
		Compiler:     compiler,
		Confirm:      confirm,
		BuildsDir:    buildsDir,
		RequireSetup: cfg.Pipeline.RequireSetup,
		VersionInfo:  cfg.Export.VersionInfo,
	}

	closeFn := func() {}
	if store := openHistory(); store != nil {
		hooks.History = store
		closeFn = func() {
			if err := store.Close(); err != nil {
				logger.Logger().Warnf("Failed to close build history: %v", err)
			}
		}
	}
	return hooks, closeFn, nil
}
