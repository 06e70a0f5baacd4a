package mblink

// Reader is the read capability surface of a client session. Every method
// issues exactly one operation through the retry/timeout engine; addresses
// and quantities are raw 16-bit protocol fields and are not range-checked
// here — out-of-range values are rejected by the transport or the remote
// device and surface as a transport error.
type Reader interface {
	// ReadCoils reads contiguous coils (0x01) and returns their status.
	ReadCoils(address, quantity uint16) ([]bool, error)
	// ReadDiscreteInputs reads contiguous discrete inputs (0x02) and
	// returns their status.
	ReadDiscreteInputs(address, quantity uint16) ([]bool, error)
	// ReadHoldingRegisters reads a contiguous block of holding
	// registers (0x03) and returns the register values.
	ReadHoldingRegisters(address, quantity uint16) ([]uint16, error)
	// ReadInputRegisters reads a contiguous block of input registers
	// (0x04) and returns the register values.
	ReadInputRegisters(address, quantity uint16) ([]uint16, error)
	// ReadWriteMultipleRegisters performs a combination of one read and
	// one write operation (0x17) and returns the read register values.
	ReadWriteMultipleRegisters(readAddress, readQuantity, writeAddress uint16, writeData []uint16) ([]uint16, error)
}

// Writer is the write capability surface of a client session.
type Writer interface {
	// WriteSingleCoil writes a single output to either ON or OFF (0x05).
	WriteSingleCoil(address uint16, value bool) error
	// WriteSingleRegister writes a single holding register (0x06).
	WriteSingleRegister(address, value uint16) error
	// WriteMultipleCoils forces each coil in a sequence to either ON or
	// OFF (0x0F).
	WriteMultipleCoils(address uint16, values []bool) error
	// WriteMultipleRegisters writes a block of contiguous holding
	// registers (0x10).
	WriteMultipleRegisters(address uint16, values []uint16) error
	// MaskWriteRegister modifies a holding register using a combination
	// of an AND mask and an OR mask (0x16).
	MaskWriteRegister(address, andMask, orMask uint16) error
}

// Client is one master session bound to a single slave through its
// ClientProvider. It processes one call at a time to completion; callers
// must not share a session between concurrent goroutines.
type Client interface {
	Reader
	Writer
	// Close closes the underlying provider.
	Close() error
}
