// Command mblink is a YAML-driven poll tool: it connects to one modbus
// slave over TCP or RTU and periodically reads the configured data points,
// logging every result.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goburrow/serial"

	"github.com/thinkgos/mblink"
	"github.com/thinkgos/mblink/goburrow"
	"github.com/thinkgos/mblink/internal/config"
	"github.com/thinkgos/mblink/poll"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: mblink <config.yaml>")
	}

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond

	var provider mblink.ClientProvider
	if cfg.Endpoint != "" {
		provider, err = goburrow.NewTCPClientProvider(cfg.Endpoint, cfg.SlaveID, timeout)
	} else {
		provider, err = goburrow.NewRTUClientProvider(serial.Config{
			Address:  cfg.Serial.Port,
			BaudRate: cfg.Serial.BaudRate,
			DataBits: cfg.Serial.DataBits,
			Parity:   cfg.Serial.Parity,
			StopBits: cfg.Serial.StopBits,
			Timeout:  timeout,
		}, cfg.SlaveID)
	}
	if err != nil {
		log.Fatalf("connect failed: %v", err)
	}

	client := poll.New(
		mblink.NewClient(provider,
			mblink.WithTimeout(timeout),
			mblink.WithRetryCount(cfg.RetryCount),
		),
		poll.WithHandler(&logProc{}),
	)
	defer client.Close()

	for _, job := range cfg.Jobs {
		err = client.AddGatherJob(poll.Request{
			FuncCode: job.FC,
			Address:  job.Address,
			Quantity: job.Quantity,
			ScanRate: time.Duration(job.ScanMs) * time.Millisecond,
		})
		if err != nil {
			log.Fatalf("add job failed: %v", err)
		}
	}
	if err := client.Start(); err != nil {
		log.Fatalf("start failed: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}

// logProc logs every poll result.
type logProc struct {
	poll.NopProc
}

func (logProc) ProcReadCoils(address, quantity uint16, values []bool) {
	log.Printf("coils[%d+%d]: %v", address, quantity, values)
}

func (logProc) ProcReadDiscretes(address, quantity uint16, values []bool) {
	log.Printf("discretes[%d+%d]: %v", address, quantity, values)
}

func (logProc) ProcReadHoldingRegisters(address, quantity uint16, values []uint16) {
	log.Printf("holding[%d+%d]: %v", address, quantity, values)
}

func (logProc) ProcReadInputRegisters(address, quantity uint16, values []uint16) {
	log.Printf("input[%d+%d]: %v", address, quantity, values)
}

func (logProc) ProcResult(err error, result *poll.Result) {
	if err != nil {
		log.Printf("read failed fc=%d address=%d quantity=%d tx=%d err=%d: %v",
			result.FuncCode, result.Address, result.Quantity, result.TxCnt, result.ErrCnt, err)
	}
}
