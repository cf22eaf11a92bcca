package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var (
	serverURL   = flag.String("server", "http://localhost:8080", "Back office API base URL")
	email       = flag.String("email", "admin@forecourt.local", "Login email")
	password    = flag.String("password", "admin123", "Login password")
	tankID      = flag.String("tank", "", "Tank ID to submit readings for (default: first active tank)")
	shifts      = flag.Int("shifts", 0, "Number of shifts to submit in auto mode (0 = run until stopped)")
	interval    = flag.Duration("interval", 5*time.Second, "Pause between submissions in auto mode")
	price       = flag.Float64("price", 1.85, "Price per liter")
	seed        = flag.Bool("seed", false, "Create a tank, island, pump and nozzles if the station is empty")
	interactive = flag.Bool("interactive", false, "Enable interactive mode")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	// Setup logger
	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Create simulator config
	config := &SimulatorConfig{
		ServerURL:     *serverURL,
		Email:         *email,
		Password:      *password,
		TankID:        *tankID,
		PricePerLiter: *price,
		Interval:      *interval,
		Seed:          *seed,
	}

	// Create and start simulator
	simulator := NewSimulator(config, logger)

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down simulator...")
		simulator.Stop()
		os.Exit(0)
	}()

	// Log in, resolve the tank and open the live event feed
	if err := simulator.Connect(); err != nil {
		logger.Fatal("Failed to connect to server", zap.Error(err))
	}

	// Start the simulator
	if *interactive {
		runInteractiveMode(simulator)
	} else {
		fmt.Printf("Shift entry simulator started\n")
		fmt.Printf("  Server: %s\n", *serverURL)
		fmt.Printf("  Tank:   %s\n", simulator.TankID())
		fmt.Printf("  Price:  %.2f/L\n", *price)
		fmt.Println("\nPress Ctrl+C to stop")

		simulator.RunAuto(*shifts)
	}
}

func runInteractiveMode(sim *Simulator) {
	fmt.Println("\nForecourt Shift Entry Simulator - Interactive Mode")
	fmt.Println("==================================================")
	fmt.Println("Commands:")
	fmt.Println("  submit                  - Generate and submit the next shift reading")
	fmt.Println("  delivery <liters>       - Record a fuel delivery into the pool")
	fmt.Println("  previous                - Show the previous shift for the tank")
	fmt.Println("  unlinked                - List deliveries not yet claimed by a shift")
	fmt.Println("  report <date>           - Show the daily summary (YYYY-MM-DD)")
	fmt.Println("  attendants <date>       - Show per-attendant sales (YYYY-MM-DD)")
	fmt.Println("  quit                    - Exit simulator")
	fmt.Println("")

	sim.RunInteractive()
}
