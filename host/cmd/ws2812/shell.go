package main

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"

	"github.com/google/shlex"
	"tinygo.org/x/drivers"

	"rkws2812/core"
	"rkws2812/display"
	"rkws2812/protocol"
)

var errNoStrip = errors.New("no strip selected, use <bank> <pin> first")

// mapper is a register mapper that owns an underlying resource.
type mapper interface {
	core.Mapper
	Close() error
}

// runShell reads one command per line from r until EOF or quit. The device
// stays open between lines, so the previous pin stays bound until the next
// write.
func runShell(e *env, r io.Reader) error {
	d, err := e.openDevice()
	if err != nil {
		return err
	}
	defer d.Close()

	var strip *display.Strip
	var disp drivers.Displayer

	scanner := bufio.NewScanner(r)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		parts, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "quit", "exit", "q":
			return nil

		case "help", "?":
			printShellHelp()

		case "set", "off":
			args := parts[1:]
			if parts[0] == "off" && len(args) == 3 {
				args = append(args, "000000")
			}
			req, err := parseRequest(args)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if err := d.WriteRequest(req); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if err := e.printWaveform(req); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "use":
			if len(parts) != 3 {
				fmt.Fprintln(os.Stderr, "Error: want use <bank> <pin>")
				continue
			}
			bank, err := parseUint(parts[1], "bank")
			if err == nil {
				var pin uint32
				if pin, err = parseUint(parts[2], "pin"); err == nil {
					strip = display.NewStrip(d, bank, pin)
					disp = strip
				}
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "pixel":
			if err := setPixel(disp, parts[1:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		case "show":
			if disp == nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", errNoStrip)
				continue
			}
			if err := disp.Display(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if strip.Pixel().Position == 0 {
				continue // nothing staged yet
			}
			if err := e.printWaveform(strip.Pixel()); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", parts[0])
		}
	}
	return scanner.Err()
}

// setPixel parses "x color" and stages it on disp.
func setPixel(disp drivers.Displayer, args []string) error {
	if disp == nil {
		return errNoStrip
	}
	if len(args) != 2 {
		return errors.New("want pixel <x> <color>")
	}
	w, _ := disp.Size()
	x, err := strconv.Atoi(args[0])
	if err != nil || x < 0 || x >= int(w) {
		return fmt.Errorf("invalid pixel %q, want 0-%d", args[0], w-1)
	}
	c, err := protocol.ParseColor(args[1])
	if err != nil {
		return err
	}
	disp.SetPixel(int16(x), 0, color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xFF})
	return nil
}

func printShellHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  set <bank> <pin> <position> <color>  - Set one LED, color as rrggbb")
	fmt.Println("  off <bank> <pin> <position>          - Turn one LED off")
	fmt.Println("  use <bank> <pin>                     - Select the strip for pixel and show")
	fmt.Println("  pixel <x> <color>                    - Stage pixel x (0-based) on the strip")
	fmt.Println("  show                                 - Light the pixel staged last")
	fmt.Println("  help                                 - Show this help message")
	fmt.Println("  quit/exit/q                          - Exit the shell")
	fmt.Println()
}

// printWaveform prints what a dry run put on the level register. It does
// nothing when writing to real hardware.
func (e *env) printWaveform(req protocol.Request) error {
	if e.recorder == nil {
		return nil
	}
	p, err := core.PlatformByName(e.cfg.Platform)
	if err != nil {
		return err
	}
	b, err := p.Resolve(req.Bank, req.Pin)
	if err != nil {
		return err
	}
	rec := e.recorder.Recorder(b.Level)
	if rec == nil {
		return fmt.Errorf("no recording for %s", b)
	}
	phases := rec.Phases(b.Bit, e.cfg.Timing.CoreTiming().Tick)
	frame := decodePhases(phases)
	fmt.Printf("%s\n  %s\n  %d phases, %d bytes on the wire:", req, b, len(phases), len(frame))
	for _, v := range frame {
		fmt.Printf(" %02x", v)
	}
	fmt.Println()
	return nil
}

// decodePhases classifies the high phases of the first frame by the WS2812
// bands and packs the bits MSB first. A frame runs from the first low phase
// longer than the latch time to the next one; the idle level set when the
// pin is configured comes before it and is never decoded.
func decodePhases(phases []core.Phase) []byte {
	var (
		out     []byte
		cur     byte
		bits    int
		inFrame bool
	)
	for _, ph := range phases {
		if !ph.High {
			if ph.Duration > core.ResetMin {
				if inFrame {
					break
				}
				inFrame = true
			}
			continue
		}
		if !inFrame {
			continue
		}
		switch {
		case core.Bit1HighBand.Contains(ph.Duration):
			cur = cur<<1 | 1
		case core.Bit0HighBand.Contains(ph.Duration):
			cur <<= 1
		default:
			continue
		}
		if bits++; bits == 8 {
			out = append(out, cur)
			cur, bits = 0, 0
		}
	}
	return out
}
