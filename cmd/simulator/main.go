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
	serverURL      = flag.String("server", "ws://localhost:9000/ocpp/1.6", "Central system WebSocket URL")
	chargePointID  = flag.String("id", "CP001", "Charge Point ID")
	vendor         = flag.String("vendor", "SIGEC", "Charge Point Vendor")
	model          = flag.String("model", "SimulatorV1", "Charge Point Model")
	serial         = flag.String("serial", "SIM001", "Serial Number")
	firmware       = flag.String("firmware", "1.0.0", "Firmware Version")
	idTag          = flag.String("tag", "ABC123", "RFID tag used for sessions")
	connectorCount = flag.Int("connectors", 2, "Number of connectors")
	steps          = flag.Int("steps", 3, "Meter samples per scenario run")
	stepWh         = flag.Int("step-wh", 500, "Meter increment per sample (Wh)")
	stepInterval   = flag.Duration("step-interval", 2*time.Second, "Delay between meter samples")
	interactive    = flag.Bool("interactive", false, "Enable interactive mode")
	verbose        = flag.Bool("verbose", false, "Enable verbose logging")
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
		ServerURL:       *serverURL,
		ChargePointID:   *chargePointID,
		Vendor:          *vendor,
		Model:           *model,
		SerialNumber:    *serial,
		FirmwareVersion: *firmware,
		IdTag:           *idTag,
		ConnectorCount:  *connectorCount,
		MeterStepWh:     *stepWh,
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

	// Connect to server
	if err := simulator.Connect(); err != nil {
		logger.Fatal("Failed to connect to server", zap.Error(err))
	}

	if *interactive {
		runInteractiveMode(simulator)
		simulator.Stop()
		return
	}

	// Scripted run: boot, authorize, charge, report meters, stop.
	fmt.Printf("OCPP 1.6 Charge Point Simulator started\n")
	fmt.Printf("  ID: %s\n", *chargePointID)
	fmt.Printf("  Server: %s\n", *serverURL)
	fmt.Printf("  Tag: %s\n", *idTag)

	if err := simulator.RunScenario(*steps, *stepInterval); err != nil {
		logger.Fatal("Scenario failed", zap.Error(err))
	}
	simulator.Stop()
	fmt.Println("Scenario complete")
}

func runInteractiveMode(sim *Simulator) {
	fmt.Println("\nOCPP 1.6 Charge Point Simulator - Interactive Mode")
	fmt.Println("==================================================")
	fmt.Println("Commands:")
	fmt.Println("  start <connector>       - Authorize and start a transaction")
	fmt.Println("  meter <deltaWh>         - Advance the register and report it")
	fmt.Println("  stop                    - Stop the open transaction")
	fmt.Println("  status <connector> [st] - Send StatusNotification")
	fmt.Println("  auth                    - Send Authorize for the configured tag")
	fmt.Println("  heartbeat               - Send heartbeat")
	fmt.Println("  fault <connector>       - Simulate fault on connector")
	fmt.Println("  quit                    - Exit simulator")
	fmt.Println("")

	sim.RunInteractive()
}
