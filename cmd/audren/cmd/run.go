package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/pkg/browser"
	"github.com/sarchlab/audren/datarecording"
	"github.com/sarchlab/audren/hooking"
	"github.com/sarchlab/audren/monitoring"
	"github.com/sarchlab/audren/renderer"
	"github.com/sarchlab/audren/scenario"
	"github.com/sarchlab/audren/timing"
	"github.com/sarchlab/audren/tracing"
	"github.com/sarchlab/audren/updater"
	"github.com/spf13/cobra"
)

// Environment variables that provide flag defaults.
const (
	envMonitorPort = "AUDREN_MONITOR_PORT"
	envRecord      = "AUDREN_RECORD"
)

var runCmd = &cobra.Command{
	Use:   "run SCENARIO",
	Short: "Replay a scenario and print the command view of every frame.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := readRunOptions(cmd)
		if err != nil {
			return err
		}

		return run(cmd, args[0], opts)
	},
}

type runOptions struct {
	record      string
	monitor     bool
	monitorPort int
	openMonitor bool
	verbose     bool
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("record", "",
		"Record the session into the given SQLite database "+
			"(without extension), or \"auto\" for a generated name")
	runCmd.Flags().Int("monitor-port", 0,
		"Serve the monitor on this port; 0 picks a random port")
	runCmd.Flags().Bool("monitor", false, "Serve the monitor while running")
	runCmd.Flags().Bool("open-monitor", false,
		"Serve the monitor and open it in a browser")
	runCmd.Flags().BoolP("verbose", "v", false, "Log every slot update")
}

func readRunOptions(cmd *cobra.Command) (runOptions, error) {
	flags := cmd.Flags()

	opts := runOptions{}
	opts.record, _ = flags.GetString("record")
	opts.monitor, _ = flags.GetBool("monitor")
	opts.monitorPort, _ = flags.GetInt("monitor-port")
	opts.openMonitor, _ = flags.GetBool("open-monitor")
	opts.verbose, _ = flags.GetBool("verbose")

	if !flags.Changed("record") {
		opts.record = os.Getenv(envRecord)
	}

	if v, ok := os.LookupEnv(envMonitorPort); ok && !flags.Changed("monitor-port") {
		port, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%s: %w", envMonitorPort, err)
		}

		opts.monitorPort = port
		opts.monitor = true
	}

	if opts.openMonitor || flags.Changed("monitor-port") {
		opts.monitor = true
	}

	return opts, nil
}

func run(cmd *cobra.Command, path string, opts runOptions) error {
	s, err := scenario.Load(path)
	if err != nil {
		return err
	}

	player, err := scenario.Compile(s)
	if err != nil {
		return err
	}

	cfg := s.Config()
	system := renderer.MakeBuilder().Build(s.Name)
	if err := system.Initialize(cfg,
		make([]byte, renderer.GetWorkBufferSize(cfg))); err != nil {
		return err
	}
	system.Start()

	if opts.verbose {
		system.AcceptHook(hooking.NewLogHook(
			log.New(cmd.ErrOrStderr(), "", 0),
			updater.HookPosEffectReset,
			updater.HookPosAttachFailed,
			updater.HookPosEffectUpdate,
		))
	}

	frameTimes := tracing.NewFrameTimeTracer()
	commandCounts := tracing.NewCommandCountTracer()
	system.AcceptHook(frameTimes)
	system.AcceptHook(commandCounts)

	engine := timing.NewSerialEngine()
	printer := &framePrinter{out: cmd.OutOrStdout()}

	if opts.record != "" {
		finish, err := startRecording(system, path, opts.record)
		if err != nil {
			return err
		}
		defer finish()
	}

	if opts.monitor {
		monitor := monitoring.NewMonitor().WithPortNumber(opts.monitorPort)
		monitor.RegisterEngine(engine)
		monitor.RegisterRenderer(system)
		printer.progress = monitor.CreateProgressBar(s.Name, player.FrameCount())

		url := monitor.StartServer()
		defer func() { _ = monitor.StopServer() }()

		if opts.openMonitor {
			if err := browser.OpenURL(url); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Cannot open browser: %v\n", err)
			}
		}
	}

	driver := renderer.NewFrameDriver("FrameDriver", engine, system, player, printer)
	driver.TickNow()

	if err := engine.Run(); err != nil {
		return err
	}
	engine.Finished()

	printSummary(cmd.ErrOrStderr(), frameTimes, commandCounts)

	if printer.failures > 0 {
		return fmt.Errorf("%d of %d frames failed",
			printer.failures, driver.Frame())
	}

	return nil
}

func startRecording(
	system *renderer.System,
	scenarioPath, dbPath string,
) (func(), error) {
	if dbPath == "auto" {
		dbPath = ""
	}

	recorder, err := datarecording.New(dbPath)
	if err != nil {
		return nil, err
	}

	exec, err := datarecording.NewExecRecorder(recorder)
	if err != nil {
		return nil, err
	}

	effects, err := datarecording.NewEffectRecorder(recorder)
	if err != nil {
		return nil, err
	}

	exec.Start()
	exec.Note("Scenario", scenarioPath)
	system.AcceptHook(effects)

	return func() {
		exec.End()

		if err := recorder.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Closing recording: %v\n", err)
		}
	}, nil
}

func printSummary(
	w io.Writer,
	frameTimes *tracing.FrameTimeTracer,
	commandCounts *tracing.CommandCountTracer,
) {
	fmt.Fprintf(w, "%d frames, %s per frame on average, %s at most\n",
		frameTimes.FrameCount(), frameTimes.AverageTime(), frameTimes.MaxTime())

	for _, kind := range commandCounts.GetKinds() {
		fmt.Fprintf(w, "  %s: %d commands\n",
			kind, commandCounts.GetKindCount(kind))
	}
}
