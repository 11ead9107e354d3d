// Command dmrsdr-live captures stereo baseband audio from a sound card
// fed by an SDR's I/Q-over-audio output, demodulates it live with the
// dqpsk core, and announces itself on the local network so a client can
// find the running instance without typing in a hostname.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kb4dsp/dmrdemod/dqpsk"
)

const serviceType = "_dmrdemod._tcp"

func main() {
	var (
		configPath   = pflag.StringP("config", "c", "", "path to YAML session config")
		deviceIndex  = pflag.IntP("device", "d", -1, "portaudio input device index (-1 = default)")
		framesPer    = pflag.Int("frames", 2048, "frames per portaudio buffer read")
		captureFmt   = pflag.String("capture-dir-format", "", "strftime pattern for the path of a raw capture file; missing parent directories are created (empty disables capture)")
		serviceName  = pflag.StringP("name", "n", "", "DNS-SD service name advertised on the network (default: hostname)")
		announcePort = pflag.Int("announce-port", 8473, "port advertised via DNS-SD (informational; this command has no network server of its own yet)")
		verbose      = pflag.BoolP("verbose", "v", false, "enable debug logging")
	)
	pflag.Parse()

	logger := log.New(os.Stderr)
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("loading config", "err", err)
	}

	facade, err := dqpsk.NewFacade(cfg, logger)
	if err != nil {
		logger.Fatal("constructing facade", "err", err)
	}

	var captureFile *os.File
	if *captureFmt != "" {
		captureFile, err = openCaptureFile(*captureFmt)
		if err != nil {
			logger.Fatal("opening capture file", "err", err)
		}
		defer captureFile.Close()
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Fatal("initializing portaudio", "err", err)
	}
	defer portaudio.Terminate()

	inDev, err := selectInputDevice(*deviceIndex)
	if err != nil {
		logger.Fatal("selecting input device", "err", err)
	}
	logger.Info("capturing from device", "name", inDev.Name)

	streamParams := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   inDev,
			Channels: 2, // left = I, right = Q
			Latency:  inDev.DefaultLowInputLatency,
		},
		SampleRate:      cfg.SampleRate,
		FramesPerBuffer: *framesPer,
	}

	buf := make([]float32, 2*(*framesPer))
	var ts int64
	iBuf := make([]float32, *framesPer)
	qBuf := make([]float32, *framesPer)

	stream, err := portaudio.OpenStream(streamParams, buf)
	if err != nil {
		logger.Fatal("opening stream", "err", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		logger.Fatal("starting stream", "err", err)
	}
	defer stream.Stop()

	announceService(logger, *serviceName, *announcePort)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	logger.Info("running, press Ctrl+C to stop")
	for ctx.Err() == nil {
		if err := stream.Read(); err != nil {
			logger.Warn("stream read error", "err", err)
			continue
		}

		for k := 0; k < *framesPer; k++ {
			iBuf[k] = buf[2*k]
			qBuf[k] = buf[2*k+1]
		}

		if captureFile != nil {
			writeCapture(captureFile, iBuf, qBuf, logger)
		}

		facade.Receive(dqpsk.Sample{I: iBuf, Q: qBuf, Timestamp: ts}, func(dibits []dqpsk.Dibit) {
			for _, d := range dibits {
				fmt.Printf("%02b", d.Value())
			}
		})
		ts += int64(float64(*framesPer) * 1e9 / cfg.SampleRate)
	}

	fmt.Println()
	logger.Info("stopped")
}

func selectInputDevice(index int) (*portaudio.DeviceInfo, error) {
	if index >= 0 {
		devices, err := portaudio.Devices()
		if err != nil {
			return nil, err
		}
		if index >= len(devices) {
			return nil, fmt.Errorf("device index %d out of range (have %d devices)", index, len(devices))
		}
		return devices[index], nil
	}
	return portaudio.DefaultInputDevice()
}

func announceService(logger *log.Logger, name string, port int) {
	if name == "" {
		if h, err := os.Hostname(); err == nil {
			name = h
		} else {
			name = "dmrdemod"
		}
	}

	cfg := dnssd.Config{
		Name: name,
		Type: serviceType,
		Port: port,
	}

	sv, err := dnssd.NewService(cfg)
	if err != nil {
		logger.Warn("dns-sd: failed to create service", "err", err)
		return
	}

	rp, err := dnssd.NewResponder()
	if err != nil {
		logger.Warn("dns-sd: failed to create responder", "err", err)
		return
	}

	if _, err := rp.Add(sv); err != nil {
		logger.Warn("dns-sd: failed to add service", "err", err)
		return
	}

	logger.Info("dns-sd: announcing", "name", name, "type", serviceType, "port", port)

	go func() {
		if err := rp.Respond(context.Background()); err != nil {
			logger.Warn("dns-sd: responder stopped", "err", err)
		}
	}()
}

func openCaptureFile(pattern string) (*os.File, error) {
	path, err := strftime.Format(pattern, time.Now())
	if err != nil {
		return nil, fmt.Errorf("formatting capture path: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating capture directory: %w", err)
		}
	}
	return os.Create(path)
}

func writeCapture(f *os.File, iBuf, qBuf []float32, logger *log.Logger) {
	for k := range iBuf {
		var pair [8]byte
		putFloat32(pair[0:4], iBuf[k])
		putFloat32(pair[4:8], qBuf[k])
		if _, err := f.Write(pair[:]); err != nil {
			logger.Warn("capture write failed", "err", err)
			return
		}
	}
}

func putFloat32(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

func loadConfig(path string) (dqpsk.Config, error) {
	cfg := dqpsk.Config{
		SymbolRate: 4800,
		SampleRate: 50000,
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
