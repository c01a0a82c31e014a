// ws2812 drives a WS2812 LED chain from a GPIO pin on RK356x and RK3588
// boards, locally or over a serial link.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rkws2812/config"
	"rkws2812/core"
	"rkws2812/device"
	"rkws2812/host/link"
	"rkws2812/host/regmap"
	"rkws2812/host/serial"
	"rkws2812/protocol"
)

var (
	configPath = flag.String("config", "", "JSON configuration file")
	platform   = flag.String("platform", "", "SoC register layout (rk356x, rk3588)")
	order      = flag.String("order", "", "color order on the wire (default GRB)")
	memDevice  = flag.String("mem", "", "physical memory device")
	ttyDevice  = flag.String("device", "", "serial device for serve and send")
	baud       = flag.Int("baud", 0, "serial baud rate")
	dryRun     = flag.Bool("dry-run", false, "write to an in-memory register file and print the waveform")
	verbose    = flag.Bool("v", false, "enable verbose logs")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `usage: ws2812 [flags] <command> [args]

commands:
  write <bank> <pin> <position> <color>   set one LED
  send <bank> <pin> <position> <color>    set one LED through a serve instance
  serve                                   accept requests on the serial device
  shell                                   read write commands from stdin
  calibrate <bank> <pin> [writes]         measure register write cost
  lookup <line>                           find the bank and pin of a GPIO line

flags:
`)
	flag.PrintDefaults()
}

// loadConfig reads the configuration file, if any, and applies flag
// overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return nil, err
		}
	}
	if *platform != "" {
		cfg.Platform = *platform
	}
	if *order != "" {
		cfg.ColorOrder = *order
	}
	if *memDevice != "" {
		cfg.MemDevice = *memDevice
	}
	if *ttyDevice != "" {
		cfg.Serial.Device = *ttyDevice
	}
	if *baud != 0 {
		cfg.Serial.Baud = *baud
	}
	return cfg, nil
}

func newLogger() (*zap.Logger, error) {
	if *verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zc.Build()
}

// env bundles what every command needs.
type env struct {
	cfg      *config.Config
	log      *zap.Logger
	mapper   core.Mapper
	recorder *core.RecordingMapper // set with -dry-run
	release  func() error
}

func newEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: log, release: func() error { return nil }}
	if *dryRun {
		e.recorder = core.NewRecordingMapper(regmap.NewMemory())
		e.mapper = e.recorder
		return e, nil
	}
	m, err := openDevMem(cfg.MemDevice)
	if err != nil {
		return nil, err
	}
	e.mapper = m
	e.release = m.Close
	return e, nil
}

func (e *env) close() error {
	_ = e.log.Sync()
	return e.release()
}

func (e *env) openDevice() (*device.Device, error) {
	opts, err := e.cfg.DeviceOptions()
	if err != nil {
		return nil, err
	}
	d := device.New(e.mapper, append(opts, device.WithLogger(e.log))...)
	if err := d.Open(); err != nil {
		return nil, err
	}
	return d, nil
}

func parseUint(s, what string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return uint32(v), nil
}

// parseRequest parses "bank pin position color".
func parseRequest(args []string) (protocol.Request, error) {
	var req protocol.Request
	if len(args) != 4 {
		return req, errors.New("want <bank> <pin> <position> <color>")
	}
	var err error
	if req.Bank, err = parseUint(args[0], "bank"); err != nil {
		return req, err
	}
	if req.Pin, err = parseUint(args[1], "pin"); err != nil {
		return req, err
	}
	if req.Position, err = parseUint(args[2], "position"); err != nil {
		return req, err
	}
	if req.Color, err = protocol.ParseColor(args[3]); err != nil {
		return req, err
	}
	return req, req.Validate()
}

func runWrite(e *env, args []string) error {
	req, err := parseRequest(args)
	if err != nil {
		return err
	}
	d, err := e.openDevice()
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.WriteRequest(req); err != nil {
		return err
	}
	return e.printWaveform(req)
}

func runSend(e *env, args []string) error {
	req, err := parseRequest(args)
	if err != nil {
		return err
	}
	sc := serial.DefaultConfig(e.cfg.Serial.Device)
	sc.Baud = e.cfg.Serial.Baud
	sc.ReadTimeout = 2 * time.Second
	port, err := serial.Open(sc)
	if err != nil {
		return err
	}
	defer port.Close()
	if err := port.Flush(); err != nil {
		e.log.Warn("failed to flush serial port", zap.Error(err))
	}
	if err := link.NewClient(port).Send(req); err != nil {
		return err
	}
	fmt.Printf("sent %s\n", req)
	return nil
}

func runServe(e *env) error {
	sc := serial.DefaultConfig(e.cfg.Serial.Device)
	sc.Baud = e.cfg.Serial.Baud
	port, err := serial.Open(sc)
	if err != nil {
		return err
	}
	d, err := e.openDevice()
	if err != nil {
		port.Close()
		return err
	}
	defer d.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer stop()
		return link.NewServer(port, d, e.log).Serve(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		// Unblocks the server's read.
		return port.Close()
	})
	e.log.Info("serving", zap.String("device", sc.Device), zap.Int("baud", sc.Baud))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runCalibrate(e *env, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("want <bank> <pin> [writes]")
	}
	bank, err := parseUint(args[0], "bank")
	if err != nil {
		return err
	}
	pin, err := parseUint(args[1], "pin")
	if err != nil {
		return err
	}
	n := 100000
	if len(args) == 3 {
		if n, err = strconv.Atoi(args[2]); err != nil || n <= 0 {
			return fmt.Errorf("invalid write count %q", args[2])
		}
	}
	p, err := core.PlatformByName(e.cfg.Platform)
	if err != nil {
		return err
	}
	b, err := p.Resolve(bank, pin)
	if err != nil {
		return err
	}
	reg, err := e.mapper.Map(b.Level)
	if err != nil {
		return err
	}
	defer reg.Close()

	tick := core.Calibrate(reg, n)
	fmt.Printf("%s: %d writes, %s per write\n", b, n, tick)
	t, err := core.SuggestTiming(tick)
	if err != nil {
		return err
	}
	fmt.Printf("suggested timing: bit0 %d/%d bit1 %d/%d\n", t.Bit0High, t.Bit0Low, t.Bit1High, t.Bit1Low)
	fmt.Printf(`  "timing": {"bit0_high": %d, "bit0_low": %d, "bit1_high": %d, "bit1_low": %d, "tick_ns": %d}`+"\n",
		t.Bit0High, t.Bit0Low, t.Bit1High, t.Bit1Low, tick.Nanoseconds())
	return nil
}

func runLookup(args []string) error {
	if len(args) != 1 {
		return errors.New("want <line>")
	}
	l, err := lookupLine(args[0])
	if err != nil {
		return err
	}
	fmt.Println(l)
	return nil
}

func mainImpl() error {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		return errors.New("specify a command; -h lists them")
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	if cmd == "lookup" {
		return runLookup(args)
	}
	e, err := newEnv()
	if err != nil {
		return err
	}
	defer e.close()

	switch cmd {
	case "write":
		return runWrite(e, args)
	case "send":
		return runSend(e, args)
	case "serve":
		return runServe(e)
	case "shell":
		return runShell(e, os.Stdin)
	case "calibrate":
		return runCalibrate(e, args)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "ws2812: %s.\n", err)
		os.Exit(1)
	}
}
