/*
Package mblink is a thin request/response mediation layer for modbus
master (client) and slave (server) applications.

The wire protocol itself is not implemented here. Framing, CRC/LRC and the
physical connection belong to an underlying transport/codec library which is
attached through the ClientProvider interface on the master side and the
ServerProvider interface on the slave side. On top of that boundary this
package supplies the two pieces with real control flow:

  - a bounded-retry, per-call-timeout engine that turns the heterogeneous
    read/write operations into a uniform fail/succeed contract (see Client),
  - a request router that filters by slave address, dispatches by function
    code to a pluggable device model and translates the outcome into a
    protocol response or exception (see Router).

The protocol is strictly half-duplex: one outstanding operation per session,
one request/reply in flight per link.
*/
package mblink

import (
	"fmt"
)

// proto address limit.
const (
	AddressBroadCast = 0
	AddressMin       = 1
	AddressMax       = 247
)

// proto register limit
const (
	// Bits
	ReadBitsQuantityMin  = 1    // 0x0001
	ReadBitsQuantityMax  = 2000 // 0x07d0
	WriteBitsQuantityMin = 1    // 1
	WriteBitsQuantityMax = 1968 // 0x07b0
	// 16 Bits
	ReadRegQuantityMin             = 1   // 1
	ReadRegQuantityMax             = 125 // 0x007d
	WriteRegQuantityMin            = 1   // 1
	WriteRegQuantityMax            = 123 // 0x007b
	ReadWriteOnReadRegQuantityMin  = 1   // 1
	ReadWriteOnReadRegQuantityMax  = 125 // 0x007d
	ReadWriteOnWriteRegQuantityMin = 1   // 1
	ReadWriteOnWriteRegQuantityMax = 121 // 0x0079
)

// Function Code
const (
	// Bit access
	FuncCodeReadDiscreteInputs = 2
	FuncCodeReadCoils          = 1
	FuncCodeWriteSingleCoil    = 5
	FuncCodeWriteMultipleCoils = 15

	// 16-bit access
	FuncCodeReadInputRegisters         = 4
	FuncCodeReadHoldingRegisters       = 3
	FuncCodeWriteSingleRegister        = 6
	FuncCodeWriteMultipleRegisters     = 16
	FuncCodeReadWriteMultipleRegisters = 23
	FuncCodeMaskWriteRegister          = 22
)

// Exception Code
const (
	ExceptionCodeIllegalFunction                    = 1
	ExceptionCodeIllegalDataAddress                 = 2
	ExceptionCodeIllegalDataValue                   = 3
	ExceptionCodeServerDeviceFailure                = 4
	ExceptionCodeAcknowledge                        = 5
	ExceptionCodeServerDeviceBusy                   = 6
	ExceptionCodeNegativeAcknowledge                = 7
	ExceptionCodeMemoryParityError                  = 8
	ExceptionCodeGatewayPathUnavailable             = 10
	ExceptionCodeGatewayTargetDeviceFailedToRespond = 11
)

// ExceptionError implements error interface.
type ExceptionError struct {
	ExceptionCode byte
}

// Error converts known modbus exception code to error message.
func (e *ExceptionError) Error() string {
	var name string
	switch e.ExceptionCode {
	case ExceptionCodeIllegalFunction:
		name = "illegal function"
	case ExceptionCodeIllegalDataAddress:
		name = "illegal data address"
	case ExceptionCodeIllegalDataValue:
		name = "illegal data value"
	case ExceptionCodeServerDeviceFailure:
		name = "server device failure"
	case ExceptionCodeAcknowledge:
		name = "acknowledge"
	case ExceptionCodeServerDeviceBusy:
		name = "server device busy"
	case ExceptionCodeNegativeAcknowledge:
		name = "negative acknowledge"
	case ExceptionCodeMemoryParityError:
		name = "memory parity error"
	case ExceptionCodeGatewayPathUnavailable:
		name = "gateway path unavailable"
	case ExceptionCodeGatewayTargetDeviceFailedToRespond:
		name = "gateway target device failed to respond"
	default:
		name = "unknown"
	}
	return fmt.Sprintf("mblink: exception '%v' (%s)", e.ExceptionCode, name)
}

// Request is a single decoded protocol operation, tagged by function code.
// Only the fields of the tagged kind are meaningful. A Request is immutable
// once constructed and lives for exactly one call.
//
//	FuncCodeReadCoils,ReadDiscreteInputs:         Address, Quantity
//	FuncCodeReadHoldingRegisters,InputRegisters:  Address, Quantity
//	FuncCodeWriteSingleCoil:                      Address, CoilValue
//	FuncCodeWriteSingleRegister:                  Address, RegValue
//	FuncCodeWriteMultipleCoils:                   Address, Coils
//	FuncCodeWriteMultipleRegisters:               Address, Regs
//	FuncCodeMaskWriteRegister:                    Address, AndMask, OrMask
//	FuncCodeReadWriteMultipleRegisters:           Address(read), Quantity(read),
//	                                              WriteAddress, Regs(write data)
type Request struct {
	FuncCode     byte
	Address      uint16
	Quantity     uint16
	CoilValue    bool
	RegValue     uint16
	Coils        []bool
	Regs         []uint16
	WriteAddress uint16
	AndMask      uint16
	OrMask       uint16
}

// Response is the positive reply to a Request, tagged by the same function
// code. Reads carry Bits or Words; writes echo addressing fields.
type Response struct {
	FuncCode  byte
	Bits      []bool
	Words     []uint16
	Address   uint16
	Quantity  uint16
	CoilValue bool
	RegValue  uint16
	AndMask   uint16
	OrMask    uint16
}

// SlaveRequest is one inbound request envelope as delivered by the server
// transport: the addressed slave id plus the decoded operation.
type SlaveRequest struct {
	SlaveID byte
	Request Request
}

// ResultValue is the normalized result of a read operation. It is a closed
// sum of the two shapes the protocol knows: a bool sequence (coils, discrete
// inputs) or a 16-bit word sequence (registers). The engine returns it so a
// single retry loop can serve every read kind; the Reader methods narrow it
// straight back to the concrete shape and fail loudly on a mismatch.
type ResultValue interface {
	isResultValue()
}

// BoolValues is the bool-shaped ResultValue.
type BoolValues []bool

// WordValues is the 16-bit-word-shaped ResultValue.
type WordValues []uint16

func (BoolValues) isResultValue() {}
func (WordValues) isResultValue() {}

// ClientProvider is the master-side transport/codec boundary. It owns the
// physical connection and the byte-level protocol, and exposes one blocking
// typed primitive per operation kind.
//
// The retry engine races each call against a timer. A call that loses the
// race is abandoned, not awaited: the provider must either tolerate a new
// call while a previous one is still in flight or bound its own I/O so the
// abandoned call terminates on its own.
type ClientProvider interface {
	ReadCoils(address, quantity uint16) ([]bool, error)
	ReadDiscreteInputs(address, quantity uint16) ([]bool, error)
	ReadHoldingRegisters(address, quantity uint16) ([]uint16, error)
	ReadInputRegisters(address, quantity uint16) ([]uint16, error)
	ReadWriteMultipleRegisters(readAddress, readQuantity, writeAddress uint16, writeData []uint16) ([]uint16, error)
	WriteSingleCoil(address uint16, value bool) error
	WriteSingleRegister(address, value uint16) error
	WriteMultipleCoils(address uint16, values []bool) error
	WriteMultipleRegisters(address uint16, values []uint16) error
	MaskWriteRegister(address, andMask, orMask uint16) error
	// Close disconnect the remote server
	Close() error
}

// LogProvider RFC5424 log message levels only Debug and Error
type LogProvider interface {
	Errorf(format string, v ...interface{})
	Debugf(format string, v ...interface{})
}
