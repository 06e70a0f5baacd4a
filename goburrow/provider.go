// Package goburrow adapts github.com/goburrow/modbus handlers to the
// mblink.ClientProvider boundary. The goburrow library owns connection
// setup, framing and CRC; this package only converts between its packed
// byte payloads and the typed primitives the retry engine consumes.
package goburrow

import (
	"errors"
	"io"
	"time"

	gomodbus "github.com/goburrow/modbus"
	"github.com/goburrow/serial"

	"github.com/thinkgos/mblink"
)

// check implements ClientProvider interface.
var _ mblink.ClientProvider = (*provider)(nil)

type provider struct {
	closer io.Closer
	client gomodbus.Client
}

// NewTCPClientProvider connects to a modbus TCP slave and binds the
// connection to the given slave id. A timeout <= 0 keeps the handler's
// default.
func NewTCPClientProvider(address string, slaveID byte, timeout time.Duration) (mblink.ClientProvider, error) {
	h := gomodbus.NewTCPClientHandler(address)
	h.SlaveId = slaveID
	if timeout > 0 {
		h.Timeout = timeout
	}
	if err := h.Connect(); err != nil {
		return nil, err
	}
	return &provider{closer: h, client: gomodbus.NewClient(h)}, nil
}

// NewRTUClientProvider opens the serial port described by config and binds
// it to the given slave id. config.Address is the port name, e.g.
// "/dev/ttyUSB0".
func NewRTUClientProvider(config serial.Config, slaveID byte) (mblink.ClientProvider, error) {
	h := gomodbus.NewRTUClientHandler(config.Address)
	h.Config = config
	h.SlaveId = slaveID
	if err := h.Connect(); err != nil {
		return nil, err
	}
	return &provider{closer: h, client: gomodbus.NewClient(h)}, nil
}

func (sf *provider) ReadCoils(address, quantity uint16) ([]bool, error) {
	b, err := sf.client.ReadCoils(address, quantity)
	if err != nil {
		return nil, mapError(err)
	}
	return bytes2Bools(b, quantity), nil
}

func (sf *provider) ReadDiscreteInputs(address, quantity uint16) ([]bool, error) {
	b, err := sf.client.ReadDiscreteInputs(address, quantity)
	if err != nil {
		return nil, mapError(err)
	}
	return bytes2Bools(b, quantity), nil
}

func (sf *provider) ReadHoldingRegisters(address, quantity uint16) ([]uint16, error) {
	b, err := sf.client.ReadHoldingRegisters(address, quantity)
	if err != nil {
		return nil, mapError(err)
	}
	return bytes2Uint16(b), nil
}

func (sf *provider) ReadInputRegisters(address, quantity uint16) ([]uint16, error) {
	b, err := sf.client.ReadInputRegisters(address, quantity)
	if err != nil {
		return nil, mapError(err)
	}
	return bytes2Uint16(b), nil
}

func (sf *provider) ReadWriteMultipleRegisters(readAddress, readQuantity, writeAddress uint16, writeData []uint16) ([]uint16, error) {
	b, err := sf.client.ReadWriteMultipleRegisters(readAddress, readQuantity,
		writeAddress, uint16(len(writeData)), uint162Bytes(writeData...))
	if err != nil {
		return nil, mapError(err)
	}
	return bytes2Uint16(b), nil
}

func (sf *provider) WriteSingleCoil(address uint16, value bool) error {
	// the requested ON/OFF state can only be 0xFF00 and 0x0000
	var v uint16
	if value {
		v = 0xFF00
	}
	_, err := sf.client.WriteSingleCoil(address, v)
	return mapError(err)
}

func (sf *provider) WriteSingleRegister(address, value uint16) error {
	_, err := sf.client.WriteSingleRegister(address, value)
	return mapError(err)
}

func (sf *provider) WriteMultipleCoils(address uint16, values []bool) error {
	_, err := sf.client.WriteMultipleCoils(address, uint16(len(values)), bools2Bytes(values))
	return mapError(err)
}

func (sf *provider) WriteMultipleRegisters(address uint16, values []uint16) error {
	_, err := sf.client.WriteMultipleRegisters(address, uint16(len(values)), uint162Bytes(values...))
	return mapError(err)
}

func (sf *provider) MaskWriteRegister(address, andMask, orMask uint16) error {
	_, err := sf.client.MaskWriteRegister(address, andMask, orMask)
	return mapError(err)
}

func (sf *provider) Close() error {
	return sf.closer.Close()
}

// mapError lifts a goburrow exception response into the mblink taxonomy so
// callers see one ExceptionError type on both sides of the link. Everything
// else passes through untouched.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	var me *gomodbus.ModbusError
	if errors.As(err, &me) {
		return &mblink.ExceptionError{ExceptionCode: me.ExceptionCode}
	}
	return err
}
