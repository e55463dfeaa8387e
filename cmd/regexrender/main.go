package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	flag "github.com/spf13/pflag"

	"github.com/Veraticus/regexrender/pkg/config"
	"github.com/Veraticus/regexrender/pkg/logger"
	"github.com/Veraticus/regexrender/pkg/pattern"
)

func main() {
	var (
		configPath  string
		engineName  string
		color       string
		logLevel    string
		metricsAddr string
		once        bool
		help        bool
	)

	// Everything after the first non-flag argument belongs to the command
	flag.CommandLine.SetInterspersed(false)
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&engineName, "engine", "", "Matcher engine: stdlib or coregex")
	flag.StringVar(&color, "color", "", "Color output: auto, always or never")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	flag.BoolVar(&once, "once", false, "Read all of stdin, render it once and exit")
	flag.BoolVarP(&help, "help", "h", false, "Show help message")
	flag.Parse()

	if help {
		printUsage()
		os.Exit(0)
	}

	// Load configuration
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Override config with command line flags
	if engineName != "" {
		if _, err := pattern.ParseEngine(engineName); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		cfg.Engine = engineName
	}
	if color != "" {
		if color != config.ColorAuto && color != config.ColorAlways && color != config.ColorNever {
			fmt.Fprintf(os.Stderr, "Error: invalid --color value %q (use auto/always/never)\n", color)
			os.Exit(2)
		}
		cfg.Color = color
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	terminal := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	deps, err := NewDependencies(cfg, Options{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Color:  useColor(cfg.Color, terminal),
		Redraw: terminal && !once,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating dependencies: %v\n", err)
		os.Exit(1)
	}

	app := NewApplication(deps)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if err := app.Stop(); err != nil {
			fmt.Fprintf(os.Stderr, "Error stopping process: %v\n", err)
		}
		deps.Close()
		os.Exit(130)
	}()

	args := flag.Args()
	switch {
	case once:
		err = app.RunOnce()
	case len(args) > 0:
		err = app.Run(args[0], args[1:])
	default:
		err = app.Run("", nil)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		deps.Close()
		os.Exit(1)
	}

	// Exit with the same code as the wrapped process
	code := app.ExitCode()
	deps.Close()
	os.Exit(code)
}

func printUsage() {
	fmt.Println("regexrender - render text live through regular expression rules")
	fmt.Println()
	fmt.Println("Usage: regexrender [OPTIONS] [--] [COMMAND [ARGS...]]")
	fmt.Println()
	fmt.Println("With a command, its output is rendered while it runs. Without one,")
	fmt.Println("stdin is rendered as it arrives.")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  REGEXRENDER_ENGINE        Matcher engine (default: stdlib)")
	fmt.Println("  REGEXRENDER_LOG_LEVEL     Log level (default: info)")
	fmt.Println("  REGEXRENDER_LOG_FORMAT    Log format: text or json")
	fmt.Println("  REGEXRENDER_COLOR         Color output: auto, always or never")
	fmt.Println("  REGEXRENDER_BATCH_WINDOW  Coalesce output for this long before redrawing (default: 50ms)")
	fmt.Println("  REGEXRENDER_METRICS_ADDR  Serve Prometheus metrics on this address")
	fmt.Println("  REGEXRENDER_CONFIG        Path to config file")
	fmt.Println()
	fmt.Println("Configuration file: ~/.config/regexrender/config.yaml")
}
