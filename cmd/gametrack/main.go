package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gametrack/gametrack/internal/aggregate"
	"github.com/gametrack/gametrack/internal/catalog"
	"github.com/gametrack/gametrack/internal/config"
	"github.com/gametrack/gametrack/internal/daemon"
	"github.com/gametrack/gametrack/internal/database"
	"github.com/gametrack/gametrack/internal/engine"
	"github.com/gametrack/gametrack/internal/monitor"
	"github.com/gametrack/gametrack/internal/quota"
	"github.com/gametrack/gametrack/internal/recorder"
	"github.com/gametrack/gametrack/internal/reporter"
	"github.com/gametrack/gametrack/internal/web"
	"github.com/gametrack/gametrack/pkg/detector"
	"github.com/gametrack/gametrack/pkg/utils"
)

var (
	version = "0.1.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "watch":
		watchForeground()
	case "start":
		startDaemon()
	case "serve":
		serveDaemon()
	case "stop":
		stopDaemon()
	case "status":
		showStatus()
	case "report":
		generateReport()
	case "quota":
		runQuota()
	case "clear":
		clearDatabase()
	case "version":
		fmt.Printf("gametrack version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`gametrack - Window-title game session tracker

Usage:
  gametrack <command> [options]

Commands:
  watch              Track sessions in the foreground with live status
  start              Start the tracking daemon
  serve              Start daemon with web API server
  stop               Stop the tracking daemon
  status             Show daemon status and today's play time
  report [period]    Generate play time report (period: day, week, month)
  quota [--shared]   Count a play period against the daily time budget
  clear              Clear all session records from the database
  version            Show version information
  help               Show this help message

Examples:
  gametrack watch
  gametrack start
  gametrack report week
  gametrack report day --json
  gametrack quota
  gametrack stop

Environment Variables:
  GAMETRACK_CONFIG            Path to YAML config file
  GAMETRACK_CATALOG           Path to YAML game catalog
  GAMETRACK_DB_PATH           Database file path
  GAMETRACK_POLL_INTERVAL     Poll interval in seconds
  GAMETRACK_MIN_PLAY_MINUTES  Minimum session length to record
  GAMETRACK_BROWSER_HOSTS     Comma-separated browser host names
  GAMETRACK_EXCLUDED_TITLES   Comma-separated excluded window titles
  GAMETRACK_QUOTA_MINUTES     Daily play budget in minutes
  GAMETRACK_PID_FILE          PID file path

Version: %s
`, version)
}

// buildEngine wires the catalog, recorder, window snapshotter and session
// history into a ready engine.
func buildEngine(cfg *config.Config, db *database.DB) (*engine.Engine, error) {
	entities, rowErrs, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", cfg.Catalog.Path, err)
	}
	for _, rowErr := range rowErrs {
		log.Printf("catalog: %v", rowErr)
	}

	repo := database.NewRepository(db)
	rec := recorder.New(repo, repo, cfg.MinPlaySeconds())

	history, err := repo.GetAllRecords()
	if err != nil {
		// Seeding is best-effort; an unreadable history means today's
		// total starts from zero, not that tracking cannot run.
		log.Printf("failed to load session history: %v", err)
	}

	snap, err := detector.New()
	if err != nil {
		return nil, err
	}

	return engine.New(cfg, entities, snap, rec, history)
}

func watchForeground() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	eng, err := buildEngine(cfg, db)
	if err != nil {
		log.Fatalf("Failed to start tracking: %v", err)
	}

	svc := monitor.NewService(cfg, eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- svc.Start(ctx)
	}()

	fmt.Println("gametrack is watching. Press Ctrl+C to stop.")

	refresh := time.NewTicker(cfg.Monitor.RefreshInterval)
	defer refresh.Stop()

	for {
		select {
		case <-sigChan:
			fmt.Println()
			cancel()
			svc.Stop()
			<-done
			fmt.Println("Stopped.")
			return

		case <-refresh.C:
			printStatusLine(eng)
		}
	}
}

// printStatusLine rewrites a single status line at the fast refresh
// cadence. Reads only; the engine keeps reconciling on its own tick.
func printStatusLine(eng *engine.Engine) {
	status := eng.Status()
	now := time.Now()

	line := fmt.Sprintf("today: %s", utils.FormatElapsed(time.Duration(status.TodayTotalSeconds)*time.Second))
	if len(status.Playing) == 0 {
		line += " | no game playing"
	} else {
		for _, p := range status.Playing {
			line += fmt.Sprintf(" | playing %s (%s)", p.DisplayName, utils.FormatElapsed(p.Elapsed(now)))
		}
	}
	if status.Degraded {
		line += " | WARNING: window enumeration failing"
	}
	fmt.Printf("\r\033[K%s", line)
}

func startDaemon() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Check if already running
	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon is already running (PID: %d)", pid)
	}

	// Check if we should daemonize
	if os.Getenv("GAMETRACK_DAEMON_CHILD") != "1" {
		// Parent process - fork and exit
		daemonize(cfg, false)
		return
	}

	// Child process - run the daemon
	runDaemon(cfg, dm, false)
}

func serveDaemon() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}
	if running {
		log.Fatalf("Daemon is already running (PID: %d)", pid)
	}

	if os.Getenv("GAMETRACK_DAEMON_CHILD") != "1" {
		daemonize(cfg, true)
		return
	}

	runDaemon(cfg, dm, true)
}

func runDaemon(cfg *config.Config, dm *daemon.Daemon, withWeb bool) {
	// Redirect logs to file
	logFile, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		log.SetOutput(logFile)
		defer logFile.Close()
	}

	// Initialize database
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	eng, err := buildEngine(cfg, db)
	if err != nil {
		log.Fatalf("Failed to start tracking: %v", err)
	}

	// Write PID file
	if err := dm.WritePID(); err != nil {
		log.Fatalf("Failed to write PID file: %v", err)
	}
	defer dm.RemovePID()

	svc := monitor.NewService(cfg, eng)

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var webServer *web.Server
	if withWeb {
		repo := database.NewRepository(db)
		webServer = web.NewServer(cfg, repo, eng)
		go func() {
			if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
				log.Printf("Web server error: %v", err)
			}
		}()
		log.Printf("Web API available at: http://%s", webServer.GetAddress())
	}

	go func() {
		<-sigChan
		log.Println("Received shutdown signal")
		cancel()
		svc.Stop()
	}()

	log.Println("Starting gametrack daemon...")
	log.Printf("Configuration:\n%s", cfg.String())

	if err := svc.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Monitor error: %v", err)
	}

	if webServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down web server: %v", err)
		}
	}

	log.Println("Daemon stopped successfully")
}

func stopDaemon() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		log.Fatalf("Failed to stop daemon: %v", err)
	}

	fmt.Println("Daemon stopped successfully")
}

func showStatus() {
	cfg := config.New()
	dm := daemon.New(cfg.Daemon.PIDFile)

	running, pid, err := dm.IsRunning()
	if err != nil {
		log.Fatalf("Failed to check daemon status: %v", err)
	}

	if !running {
		fmt.Println("Status: Not running")
	} else {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
		fmt.Printf("Poll Interval: %v\n", cfg.Monitor.PollInterval)
		fmt.Printf("Database: %s\n", cfg.Database.Path)
	}

	// Today's recorded total is available even when the daemon is down
	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		fmt.Printf("\nCould not read session history: %v\n", err)
		return
	}
	defer db.Close()

	repo := database.NewRepository(db)
	now := time.Now()
	period, _ := reporter.GetPeriod("day", now)
	records, err := repo.GetRecordsSince(period.Start)
	if err != nil {
		fmt.Printf("\nCould not read session history: %v\n", err)
		return
	}

	total := aggregate.CompletedToday(records, now)
	fmt.Printf("\nRecorded today: %s over %d sessions\n",
		utils.FormatElapsed(time.Duration(total)*time.Second), len(records))
}

func generateReport() {
	periodType := "day"
	if len(os.Args) > 2 {
		periodType = os.Args[2]
	}

	cfg := config.New()

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	rep := reporter.New(repo)

	// Check for JSON flag
	jsonOutput := false
	if len(os.Args) > 3 && os.Args[3] == "--json" {
		jsonOutput = true
	}

	report, err := rep.GenerateReport(periodType)
	if err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}

	if jsonOutput {
		jsonStr, err := rep.FormatReportJSON(report)
		if err != nil {
			log.Fatalf("Failed to format JSON: %v", err)
		}
		fmt.Println(jsonStr)
	} else {
		fmt.Println(rep.FormatReportText(report))
	}
}

func runQuota() {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	shared := false
	if len(os.Args) > 2 && os.Args[2] == "--shared" {
		shared = true
	}

	tm := quota.NewTimer(cfg.QuotaLimit(), cfg.Quota.StateFile, cfg.Quota.TickInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	go func() {
		for ev := range tm.Events() {
			fmt.Println()
			switch ev.Kind {
			case quota.HalfRemaining:
				fmt.Printf("Half the budget left: %s remaining\n", utils.FormatCountdown(ev.Remaining))
			case quota.TimeExceeded:
				fmt.Println("Time limit exceeded!")
			}
		}
	}()

	startedAt := time.Now()
	if shared {
		fmt.Println("Quota timer started (shared play, off the clock). Press Ctrl+C to stop.")
	} else {
		fmt.Println("Quota timer started. Press Ctrl+C to stop.")
	}

	display := time.NewTicker(time.Second)
	defer display.Stop()
	go func() {
		for range display.C {
			running := time.Since(startedAt)
			if shared {
				fmt.Printf("\r\033[Kelapsed: %s", utils.FormatElapsed(running))
				continue
			}
			fmt.Printf("\r\033[Kremain: %s | elapsed: %s",
				utils.FormatCountdown(tm.Remaining(running)),
				utils.FormatElapsed(running))
		}
	}()

	start, end, err := tm.Run(ctx, shared)
	fmt.Println()
	if err != nil {
		log.Fatalf("Failed to save quota state: %v", err)
	}

	fmt.Printf("Played %s (%s - %s)\n",
		utils.FormatElapsed(end.Sub(start)),
		start.Format("15:04:05"),
		end.Format("15:04:05"))
	if !shared {
		fmt.Printf("Used today: %s of %s\n",
			utils.FormatElapsed(tm.Elapsed()),
			utils.FormatElapsed(cfg.QuotaLimit()))
	}
}

func clearDatabase() {
	cfg := config.New()

	// Prompt for confirmation
	fmt.Print("This will delete all session records. Are you sure? (yes/no): ")
	var response string
	fmt.Scanln(&response)

	if response != "yes" && response != "y" {
		fmt.Println("Operation cancelled")
		return
	}

	db, err := database.Connect(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)

	if err := repo.Clear(); err != nil {
		log.Fatalf("Failed to clear database: %v", err)
	}

	fmt.Println("Database cleared successfully")
}

func daemonize(cfg *config.Config, withWeb bool) {
	// Fork the process
	env := os.Environ()
	env = append(env, "GAMETRACK_DAEMON_CHILD=1")

	args := os.Args

	procAttr := &os.ProcAttr{
		Env:   env,
		Files: []*os.File{nil, nil, nil}, // stdin, stdout, stderr to /dev/null
		Sys: &syscall.SysProcAttr{
			Setsid: true, // Create new session
		},
	}

	process, err := os.StartProcess(args[0], args, procAttr)
	if err != nil {
		log.Fatalf("Failed to start daemon process: %v", err)
	}

	fmt.Printf("Daemon started successfully (PID: %d)\n", process.Pid)
	if withWeb {
		fmt.Printf("Web API available at: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	}
	fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
}
