package mblink

// Router decides whether and how to answer one decoded inbound request.
// It holds no mutable state of its own and may be shared freely between
// concurrently served connections; serialization of the device model, if
// any is needed, is the Callback's concern.
type Router struct {
	slaveID  byte
	callback Callback
	clogs
}

// NewRouter creates a router answering for the given slave id with the
// given device model. Both are fixed for the router's lifetime.
func NewRouter(slaveID byte, cb Callback) *Router {
	return &Router{
		slaveID:  slaveID,
		callback: cb,
		clogs:    clogs{newDefaultLogger("mblink server =>"), 0},
	}
}

// SlaveID returns the slave id this router answers for.
func (sf *Router) SlaveID() byte {
	return sf.slaveID
}

// Process routes one request envelope to the device model and shapes the
// outcome into a response.
//
// A request addressed to a different slave id yields IllegalDataAddress
// without touching the device model; on a shared bus that is expected
// traffic, not an error, so it is not logged. A recognized operation
// invokes the matching Callback method exactly once; its exception, if any,
// is propagated unchanged. An unrecognized function code is the one path
// treated as exceptional: it is logged and answered with IllegalFunction.
func (sf *Router) Process(req *SlaveRequest) (*Response, error) {
	if req.SlaveID != sf.slaveID {
		return nil, &ExceptionError{ExceptionCodeIllegalDataAddress}
	}

	r := &req.Request
	switch r.FuncCode {
	case FuncCodeReadCoils:
		values, err := sf.callback.ReadCoils(r.Address, r.Quantity)
		if err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Bits: values}, nil

	case FuncCodeReadDiscreteInputs:
		values, err := sf.callback.ReadDiscreteInputs(r.Address, r.Quantity)
		if err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Bits: values}, nil

	case FuncCodeReadHoldingRegisters:
		values, err := sf.callback.ReadHoldingRegisters(r.Address, r.Quantity)
		if err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Words: values}, nil

	case FuncCodeReadInputRegisters:
		values, err := sf.callback.ReadInputRegisters(r.Address, r.Quantity)
		if err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Words: values}, nil

	case FuncCodeWriteSingleCoil:
		// single-value writes have no independent return payload,
		// the response echoes the request's own address and value.
		if err := sf.callback.WriteCoil(r.Address, r.CoilValue); err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Address: r.Address, CoilValue: r.CoilValue}, nil

	case FuncCodeWriteSingleRegister:
		if err := sf.callback.WriteRegister(r.Address, r.RegValue); err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Address: r.Address, RegValue: r.RegValue}, nil

	case FuncCodeWriteMultipleCoils:
		count, err := sf.callback.WriteCoils(r.Address, r.Coils)
		if err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Address: r.Address, Quantity: count}, nil

	case FuncCodeWriteMultipleRegisters:
		if _, err := sf.callback.WriteRegisters(r.Address, r.Regs); err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Address: r.Address, Quantity: uint16(len(r.Regs))}, nil

	case FuncCodeMaskWriteRegister:
		if err := sf.callback.MaskWriteRegister(r.Address, r.AndMask, r.OrMask); err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Address: r.Address, AndMask: r.AndMask, OrMask: r.OrMask}, nil

	case FuncCodeReadWriteMultipleRegisters:
		values, err := sf.callback.ReadWriteMultipleRegisters(r.Address, r.Quantity, r.WriteAddress, r.Regs)
		if err != nil {
			return nil, err
		}
		return &Response{FuncCode: r.FuncCode, Words: values}, nil

	default:
		sf.Errorf("unimplemented function code %d in request for slave %d", r.FuncCode, req.SlaveID)
		return nil, &ExceptionError{ExceptionCodeIllegalFunction}
	}
}
