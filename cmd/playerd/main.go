// Package main provides the playback daemon entry point.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/podbox/internal/app/filter"
	"github.com/osa030/podbox/internal/app/player"
	"github.com/osa030/podbox/internal/app/session"
	"github.com/osa030/podbox/internal/infra/config"
	"github.com/osa030/podbox/internal/infra/logger"
	"github.com/osa030/podbox/internal/infra/rss"
)

var (
	app        = kingpin.New("playerd", "podbox playback daemon")
	configPath = app.Flag("config", "Path to config file").Default("config/playerd.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// list-filters command
	listFiltersCmd = app.Command("list-filters", "List available filters and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the daemon (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == listFiltersCmd.FullCommand() {
		printFilters()
		return
	}

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Daemon error: %v", err)
		os.Exit(1)
	}
}

// run executes the main daemon logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	if err := validateFilterConfig(cfg); err != nil {
		return fmt.Errorf("invalid filter config: %w", err)
	}

	sessionMgr, err := session.NewManager(cfg, rss.New())
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := sessionMgr.Run(ctx); err != nil && ctx.Err() == nil {
			zlog.Error().Msgf("Session loop error: %v", err)
		}
	}()

	// Interactive control loop on stdin.
	cmdCh := make(chan string)
	go readCommands(cmdCh)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	zlog.Info().Msg("Daemon started, type 'help' for commands")

	for {
		select {
		case <-sigCh:
			zlog.Info().Msg("Received shutdown signal...")
			sessionMgr.Close()
			return nil

		case line, ok := <-cmdCh:
			if !ok {
				// stdin closed (e.g. running detached); keep serving until
				// a signal arrives.
				cmdCh = nil
				continue
			}
			if quit := handleCommand(sessionMgr.Player(), line); quit {
				sessionMgr.Close()
				return nil
			}
		}
	}
}

// readCommands feeds stdin lines into ch until EOF.
func readCommands(ch chan<- string) {
	defer close(ch)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		ch <- scanner.Text()
	}
}

// handleCommand dispatches one control command. Returns true on quit.
func handleCommand(p player.Player, line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}

	arg := func(def time.Duration) time.Duration {
		if len(fields) < 2 {
			return def
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			fmt.Printf("not a number: %s\n", fields[1])
			return def
		}
		return time.Duration(n) * time.Second
	}

	switch fields[0] {
	case "play":
		p.Play()
	case "pause":
		p.Pause()
	case "stop":
		p.Stop()
	case "next":
		p.Next()
	case "prev", "previous":
		p.Previous()
	case "forward":
		p.AdvanceBy(arg(10 * time.Second))
	case "back":
		p.RewindBy(arg(10 * time.Second))
	case "seek":
		if len(fields) < 2 {
			fmt.Println("usage: seek <seconds>")
			return false
		}
		p.OnSeekStarted()
		p.OnSeekFinished(arg(0))
	case "faster":
		p.IncreaseSpeed(arg(500 * time.Millisecond))
	case "slower":
		p.DecreaseSpeed(arg(500 * time.Millisecond))
	case "status":
		printStatus(p.State())
	case "help":
		fmt.Println("commands: play pause stop next prev forward [s] back [s] seek <s> faster [s] slower [s] status quit")
	case "quit", "exit":
		return true
	default:
		fmt.Printf("unknown command: %s\n", fields[0])
	}
	return false
}

// printStatus prints a one-screen summary of the playback state.
func printStatus(st player.State) {
	fmt.Printf("status: %s  speed: %v  elapsed: %v\n", st.Status(), st.Speed, st.TimeElapsed)
	if st.CurrentEpisode != nil {
		fmt.Printf("current: %s (%s)\n", st.CurrentEpisode.Title, st.CurrentEpisode.PodcastName)
	}
	fmt.Printf("queue (%d):\n", len(st.Queue))
	for i, ep := range st.Queue {
		fmt.Printf("  %2d. %s\n", i+1, ep.Title)
	}
}

// printFilters prints available filters.
func printFilters() {
	fmt.Println("Available Filters:")
	for _, factory := range filter.GetRegistered() {
		f := factory()
		codes := strings.Join(f.ReturnCodes(), ", ")
		fmt.Printf("  %-30s - %s [codes: %s]\n", f.Name(), f.Description(), codes)
	}
}

// validateFilterConfig validates filter configurations.
func validateFilterConfig(cfg *config.Config) error {
	registry := filter.GetRegistered()

	for filterName, filterCfg := range cfg.Filters {
		if !filterCfg.Enabled {
			continue
		}

		factory, exists := registry[filterName]
		if !exists {
			// Some filters are created with dependencies, skip validation
			continue
		}

		f := factory()
		if err := f.ValidateConfig(filterCfg.Settings); err != nil {
			return fmt.Errorf("filter %s: %w", filterName, err)
		}
	}

	return nil
}
