package poll

// Handler 处理函数
type Handler interface {
	ProcReadCoils(address, quantity uint16, values []bool)
	ProcReadDiscretes(address, quantity uint16, values []bool)
	ProcReadHoldingRegisters(address, quantity uint16, values []uint16)
	ProcReadInputRegisters(address, quantity uint16, values []uint16)
	ProcResult(err error, result *Result)
}

// NopProc implement interface Handler
type NopProc struct{}

// ProcReadCoils implement interface Handler
func (NopProc) ProcReadCoils(uint16, uint16, []bool) {}

// ProcReadDiscretes implement interface Handler
func (NopProc) ProcReadDiscretes(uint16, uint16, []bool) {}

// ProcReadHoldingRegisters implement interface Handler
func (NopProc) ProcReadHoldingRegisters(uint16, uint16, []uint16) {}

// ProcReadInputRegisters implement interface Handler
func (NopProc) ProcReadInputRegisters(uint16, uint16, []uint16) {}

// ProcResult implement interface Handler
func (NopProc) ProcResult(error, *Result) {}
