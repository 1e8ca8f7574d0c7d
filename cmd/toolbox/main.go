// toolbox is a name generator and hash digest calculator for the terminal.
// It runs as an interactive TUI, as one-shot commands, or as an SSH server.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/johan-st/toolbox/internal/access"
	"github.com/johan-st/toolbox/internal/cli"
	"github.com/johan-st/toolbox/internal/clipboard"
	"github.com/johan-st/toolbox/internal/config"
	"github.com/johan-st/toolbox/internal/history"
	"github.com/johan-st/toolbox/internal/server"
	"github.com/johan-st/toolbox/internal/toolbox"
	"github.com/johan-st/toolbox/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

type options struct {
	ssh        bool
	configPath string
	debug      bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "toolbox [command] [args]",
		Short: "Adjective animal names and hash digests",
		Long: `toolbox - adjective animal names and hash digests

Without a command it starts the interactive TUI. Any arguments are run as a
one-shot command, e.g. "toolbox generate --count=8" or "toolbox hash abc".
Run "toolbox help" to list the commands.`,
		Example: `  toolbox
  toolbox generate --style=kebab --emoji
  echo -n hello | toolbox hash
  toolbox --ssh --config config.yaml`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			setupLogging(cfg, opts.debug)

			if opts.ssh {
				if opts.configPath == "" {
					return fmt.Errorf("SSH mode requires --config")
				}
				return runSSHServer(cfg)
			}
			if len(args) > 0 {
				return runLocalCLI(cfg, args)
			}
			return runLocalTUI(cfg, opts.debug)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	f := cmd.Flags()
	// Everything after the first argument belongs to the subcommand.
	f.SetInterspersed(false)
	f.BoolVar(&opts.ssh, "ssh", false, "run SSH server mode (requires --config)")
	f.StringVarP(&opts.configPath, "config", "c", "", "path to config file")
	f.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	return cmd
}

func setupLogging(cfg *config.Config, debug bool) {
	level := levelOrInfo(cfg.GetLogLevel())
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)
	log.SetReportTimestamp(true)
}

// localUser is the person at the terminal, who always has full access.
func localUser() *access.UserInfo {
	return &access.UserInfo{Name: "local", IsAdmin: true, Local: true}
}

// runLocalCLI runs a single command in local mode.
func runLocalCLI(cfg *config.Config, args []string) error {
	manager, err := toolbox.NewLocal(cfg)
	if err != nil {
		return err
	}

	handler := cli.NewHandler(manager, nil, version)
	ctx := cli.NewLocalContext(localUser(), args, os.Stdin, os.Stdout, os.Stderr)
	if err := handler.HandleLocal(ctx); err != nil {
		// The command has already reported the error on stderr.
		os.Exit(1)
	}
	return nil
}

// runLocalTUI runs the interactive TUI in local mode.
func runLocalTUI(cfg *config.Config, debug bool) error {
	manager, err := toolbox.NewLocal(cfg)
	if err != nil {
		return err
	}

	// Log lines would tear the alternate screen.
	if debug {
		f, err := tea.LogToFile("toolbox-debug.log", "debug")
		if err != nil {
			return err
		}
		defer f.Close()
		log.SetOutput(f)
	} else {
		log.SetOutput(io.Discard)
	}

	width, height := 80, 24
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, h, err := term.GetSize(fd); err == nil {
			width, height = w, h
		}
	}

	app := tui.NewApp(manager, nil, localUser(), width, height, tui.WithClipboard(clipboard.System()))
	_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
	return err
}

// runSSHServer runs the SSH server mode.
func runSSHServer(cfg *config.Config) error {
	manager, err := toolbox.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize toolbox: %w", err)
	}

	historyStore, err := history.NewStore(cfg.GetDataDir(), manager.NewGenerator())
	if err != nil {
		return fmt.Errorf("failed to initialize history store: %w", err)
	}
	defer historyStore.Close()

	reload := func(newCfg *config.Config) error {
		if err := manager.Reload(newCfg); err != nil {
			return err
		}
		log.SetLevel(levelOrInfo(newCfg.GetLogLevel()))
		return nil
	}

	cliHandler := cli.NewHandler(manager, historyStore, version)
	cliHandler.SetReloadFunc(func() error {
		if err := cfg.Reload(); err != nil {
			return err
		}
		return reload(cfg)
	})

	sshServer := server.NewServer(cfg, manager, historyStore)
	sshServer.SetCLIHandler(cliHandler.Handle)
	sshServer.SetTUIHandler(tui.Handler(manager, historyStore))

	configWatcher, err := config.NewWatcher(cfg)
	if err != nil {
		log.Warn("failed to create config watcher", "err", err)
	} else {
		configWatcher.OnReload(func(newCfg *config.Config) {
			if err := reload(newCfg); err != nil {
				log.Error("failed to apply reloaded config", "err", err)
				return
			}
			log.Info("config applied", "path", newCfg.Path(), "sessions", sshServer.GetSessionManager().Count())
		})
		if err := configWatcher.Start(); err != nil {
			log.Warn("failed to start config watcher", "err", err)
		} else {
			defer configWatcher.Stop()
		}
	}

	log.Info("starting SSH server", "listen", cfg.Server.SSH.Listen, "version", version)
	return sshServer.Start()
}

func levelOrInfo(s string) log.Level {
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
