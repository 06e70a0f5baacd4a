package mblink

// Callback is the pluggable device model behind a server: the synchronous
// business logic that owns the actual coil/register values. The Router
// invokes exactly one method per inbound request.
//
// Every method either succeeds with its data or fails with a protocol
// exception; failures must be returned as *ExceptionError so they reach the
// remote master unchanged. A server that accepts multiple connections
// shares one Callback between them, so implementations must be safe for
// concurrent invocation.
type Callback interface {
	// ReadCoils reads contiguous coils (0x01).
	ReadCoils(address, quantity uint16) ([]bool, error)
	// ReadDiscreteInputs reads contiguous discrete inputs (0x02).
	ReadDiscreteInputs(address, quantity uint16) ([]bool, error)
	// ReadHoldingRegisters reads contiguous holding registers (0x03).
	ReadHoldingRegisters(address, quantity uint16) ([]uint16, error)
	// ReadInputRegisters reads contiguous input registers (0x04).
	ReadInputRegisters(address, quantity uint16) ([]uint16, error)
	// WriteCoil writes a single coil (0x05).
	WriteCoil(address uint16, value bool) error
	// WriteRegister writes a single holding register (0x06).
	WriteRegister(address, value uint16) error
	// WriteCoils writes contiguous coils (0x0F) and returns the number
	// of coils written, echoed in the response.
	WriteCoils(address uint16, values []bool) (uint16, error)
	// WriteRegisters writes contiguous holding registers (0x10) and
	// returns the number of registers written.
	WriteRegisters(address uint16, values []uint16) (uint16, error)
	// MaskWriteRegister applies AND/OR masks to a holding register (0x16).
	MaskWriteRegister(address, andMask, orMask uint16) error
	// ReadWriteMultipleRegisters writes then reads holding registers in
	// one operation (0x17) and returns the read values.
	ReadWriteMultipleRegisters(readAddress, readQuantity, writeAddress uint16, writeData []uint16) ([]uint16, error)
}
