// Command fanctrl drives a case fan from a thermal zone reading. It maps
// temperature to a PWM duty cycle through a hysteresis controller, publishes
// fan events to MQTT and serves a status page. install/remove/start/stop/
// status subcommands manage the systemd service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"syscall"
	"time"

	"github.com/takama/daemon"

	"github.com/DWCarrot/fanctrl-rock5b/internal/config"
	"github.com/DWCarrot/fanctrl-rock5b/internal/control"
	"github.com/DWCarrot/fanctrl-rock5b/internal/mqtt"
	"github.com/DWCarrot/fanctrl-rock5b/internal/pwm"
	"github.com/DWCarrot/fanctrl-rock5b/internal/sensor"
	"github.com/DWCarrot/fanctrl-rock5b/internal/signals"
	"github.com/DWCarrot/fanctrl-rock5b/internal/status"
	"github.com/DWCarrot/fanctrl-rock5b/internal/tacho"
	"github.com/DWCarrot/fanctrl-rock5b/internal/web"
)

const (
	name        = "fanctrl"
	version     = "1.2.0"
	description = "temperature controlled fan daemon"

	// The chip's channel 0 drives the fan.
	pwmInstance = 0
)

func main() {
	configPath := flag.String("config", "fanctrl.conf", "Path to the INI configuration file")
	broker := flag.String("broker", "tcp://127.0.0.1:1883", "MQTT broker address")
	httpAddr := flag.String("http", ":8080", "HTTP status address (empty to disable)")
	tachChip := flag.String("tach-chip", "", "GPIO chip with the fan tachometer line (empty to disable)")
	tachLine := flag.Int("tach-line", 0, "GPIO line offset of the tachometer")
	heartbeat := flag.Duration("heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	debug := flag.Bool("debug", false, "Log per-tick controller decisions")
	printTemp := flag.Bool("print-temp", false, "Print the current temperature and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", name, version)
		return
	}

	if flag.NArg() > 0 {
		switch arg := flag.Arg(0); arg {
		case "install", "remove", "start", "stop", "status":
			msg, err := manage(arg, flag.Args()[1:])
			if err != nil {
				if msg != "" {
					log.Fatalf("%s: %v", msg, err)
				}
				log.Fatalf("%v", err)
			}
			fmt.Println(msg)
			return
		default:
			// fanctrl <configuration-file>, the pre-flag invocation style.
			*configPath = arg
		}
	}

	if err := run(*configPath, *broker, *httpAddr, *tachChip, *tachLine, *heartbeat, *debug, *printTemp); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// manage executes a service-management subcommand against the init system.
// Extra arguments to install end up on the service's command line.
func manage(command string, args []string) (string, error) {
	srv, err := daemon.New(name, description, daemon.SystemDaemon)
	if err != nil {
		return "", fmt.Errorf("init service manager: %w", err)
	}
	switch command {
	case "install":
		return srv.Install(args...)
	case "remove":
		return srv.Remove()
	case "start":
		return srv.Start()
	case "stop":
		return srv.Stop()
	}
	return srv.Status()
}

func run(configPath, broker, httpAddr, tachChip string, tachLine int, heartbeat time.Duration, debug, printTemp bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load configuration %s: %w", configPath, err)
	}

	sensorDev, err := sensor.NewDevice(cfg.Watch)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensorDev.Close()
	log.Printf("sensor initialized: path=%s", cfg.Watch)

	// Print temperature mode
	if printTemp {
		temperature, err := sensorDev.Read()
		if err != nil {
			return fmt.Errorf("read temperature: %w", err)
		}
		fmt.Printf("%.2f°C\n", temperature)
		return nil
	}

	fan, err := pwm.NewDevice(cfg.Execute, pwmInstance)
	if err != nil {
		return fmt.Errorf("init pwm: %w", err)
	}
	defer fan.Close()
	log.Printf("pwm initialized: path=%s/pwm%d, frequency=%dHz", cfg.Execute, pwmInstance, cfg.PWMFrequency)

	curve, err := control.NewCurve(cfg.StopTemperature, cfg.StartTemperature, cfg.HighTemperature, cfg.MinDutyCycle, cfg.MaxDutyCycle)
	if err != nil {
		return fmt.Errorf("configuration %s: %w", configPath, err)
	}
	controller := control.NewController(curve, cfg.LagTimeCycle)
	log.Printf("control initialized: %s, interval=%v, lag_time_cycle=%d, max_speed_time_cycle=%d", curve, cfg.Interval, cfg.LagTimeCycle, cfg.MaxSpeedTimeCycle)

	var tach tacho.Counter
	if tachChip != "" {
		tachDev, err := tacho.NewDevice(tachChip, tachLine)
		if err != nil {
			return fmt.Errorf("init tachometer: %w", err)
		}
		defer tachDev.Close()
		tach = tachDev
		log.Printf("tachometer initialized: chip=%s, line=%d", tachChip, tachLine)
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		IntervalMs:     cfg.Interval.Milliseconds(),
		LagCycles:      cfg.LagTimeCycle,
		MaxSpeedCycles: cfg.MaxSpeedTimeCycle,
		HeartbeatMs:    heartbeat.Milliseconds(),
		Broker:         broker,
		HTTPAddr:       httpAddr,
		ThermalZone:    cfg.Watch,
		PWMChip:        cfg.Execute,
		PWMFrequency:   cfg.PWMFrequency,
		TachChip:       tachChip,
		TachLine:       tachLine,
		Curve: status.CurveInfo{
			StopTemperature:  curve.StopTemperature(),
			StartTemperature: curve.StartTemperature(),
			HighTemperature:  curve.HighTemperature(),
			MinDutyCycle:     curve.MinDutyCycle(),
			MaxDutyCycle:     curve.MaxDutyCycle(),
		},
	})

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if httpAddr != "" {
		srv := web.New(httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", httpAddr)
	}

	bridge := signals.New()
	if err := bridge.Register(syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2); err != nil {
		return fmt.Errorf("register signals: %w", err)
	}
	defer bridge.Stop()

	app := &App{
		cfg:        cfg,
		controller: controller,
		sensor:     sensorDev,
		fan:        fan,
		tach:       tach,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		heartbeat:  heartbeat,
		debug:      debug,
		now:        time.Now,
	}
	if err := app.Launch(); err != nil {
		return fmt.Errorf("launch: %w", err)
	}

	log.Printf("started: interval=%v broker=%s heartbeat=%v", cfg.Interval, broker, heartbeat)

	return runLoop(app, bridge, cfg.Interval)
}
