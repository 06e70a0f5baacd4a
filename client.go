package mblink

import (
	"time"
)

// client session tuning defaults.
const (
	// DefaultTimeout per-attempt deadline.
	DefaultTimeout = 500 * time.Millisecond
	// DefaultRetryCount total attempt budget per call.
	DefaultRetryCount = 5
)

// Option custom session option
type Option func(c *session)

// WithTimeout set the per-attempt deadline, default DefaultTimeout.
// Values <= 0 are ignored.
func WithTimeout(t time.Duration) Option {
	return func(c *session) {
		if t > 0 {
			c.timeout = t
		}
	}
}

// WithRetryCount set the attempt budget, default DefaultRetryCount.
// The budget must be >= 1; a budget that has been forced lower makes
// every call fail immediately with ErrDeadlineElapsed.
func WithRetryCount(n int) Option {
	return func(c *session) {
		c.retryCount = n
	}
}

// WithLogProvider set logger provider.
func WithLogProvider(p LogProvider) Option {
	return func(c *session) {
		c.SetLogProvider(p)
	}
}

// WithEnableLogger enable log output when you has set logger.
func WithEnableLogger() Option {
	return func(c *session) {
		c.LogMode(true)
	}
}

// check implements Client interface.
var _ Client = (*session)(nil)

// session owns its ClientProvider exclusively and executes one operation at
// a time through the retry/timeout engine.
type session struct {
	provider   ClientProvider
	timeout    time.Duration
	retryCount int
	clogs
}

// NewClient creates a new client session on the given provider.
// The provider handle is owned by the session from here on; no other
// session may share it.
func NewClient(p ClientProvider, opts ...Option) Client {
	c := &session{
		provider:   p,
		timeout:    DefaultTimeout,
		retryCount: DefaultRetryCount,
		clogs:      clogs{newDefaultLogger("mblink =>"), 0},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close closes the underlying provider.
func (sf *session) Close() error {
	return sf.provider.Close()
}

func (sf *session) ReadCoils(address, quantity uint16) ([]bool, error) {
	result, err := sf.executeRead(Request{
		FuncCode: FuncCodeReadCoils,
		Address:  address,
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}
	return resultBools(result)
}

func (sf *session) ReadDiscreteInputs(address, quantity uint16) ([]bool, error) {
	result, err := sf.executeRead(Request{
		FuncCode: FuncCodeReadDiscreteInputs,
		Address:  address,
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}
	return resultBools(result)
}

func (sf *session) ReadHoldingRegisters(address, quantity uint16) ([]uint16, error) {
	result, err := sf.executeRead(Request{
		FuncCode: FuncCodeReadHoldingRegisters,
		Address:  address,
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}
	return resultWords(result)
}

func (sf *session) ReadInputRegisters(address, quantity uint16) ([]uint16, error) {
	result, err := sf.executeRead(Request{
		FuncCode: FuncCodeReadInputRegisters,
		Address:  address,
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}
	return resultWords(result)
}

func (sf *session) ReadWriteMultipleRegisters(readAddress, readQuantity, writeAddress uint16, writeData []uint16) ([]uint16, error) {
	result, err := sf.executeRead(Request{
		FuncCode:     FuncCodeReadWriteMultipleRegisters,
		Address:      readAddress,
		Quantity:     readQuantity,
		WriteAddress: writeAddress,
		Regs:         writeData,
	})
	if err != nil {
		return nil, err
	}
	return resultWords(result)
}

func (sf *session) WriteSingleCoil(address uint16, value bool) error {
	return sf.executeWrite(Request{
		FuncCode:  FuncCodeWriteSingleCoil,
		Address:   address,
		CoilValue: value,
	})
}

func (sf *session) WriteSingleRegister(address, value uint16) error {
	return sf.executeWrite(Request{
		FuncCode: FuncCodeWriteSingleRegister,
		Address:  address,
		RegValue: value,
	})
}

func (sf *session) WriteMultipleCoils(address uint16, values []bool) error {
	return sf.executeWrite(Request{
		FuncCode: FuncCodeWriteMultipleCoils,
		Address:  address,
		Coils:    values,
	})
}

func (sf *session) WriteMultipleRegisters(address uint16, values []uint16) error {
	return sf.executeWrite(Request{
		FuncCode: FuncCodeWriteMultipleRegisters,
		Address:  address,
		Regs:     values,
	})
}

func (sf *session) MaskWriteRegister(address, andMask, orMask uint16) error {
	return sf.executeWrite(Request{
		FuncCode: FuncCodeMaskWriteRegister,
		Address:  address,
		AndMask:  andMask,
		OrMask:   orMask,
	})
}

// callOutcome carries one attempt's result across the deadline race.
type callOutcome struct {
	value ResultValue
	err   error
}

// executeRead runs one read request against the provider under the
// retry/timeout policy: only a deadline expiry is retried, any other error
// aborts immediately, success returns immediately. Word-shaped kinds are
// matched first; only a request matching neither path is rejected, without
// consuming an attempt.
func (sf *session) executeRead(req Request) (ResultValue, error) {
	for remain := sf.retryCount; remain > 0; remain-- {
		var call func() (ResultValue, error)

		switch req.FuncCode {
		case FuncCodeReadHoldingRegisters:
			call = func() (ResultValue, error) {
				v, err := sf.provider.ReadHoldingRegisters(req.Address, req.Quantity)
				return WordValues(v), err
			}
		case FuncCodeReadInputRegisters:
			call = func() (ResultValue, error) {
				v, err := sf.provider.ReadInputRegisters(req.Address, req.Quantity)
				return WordValues(v), err
			}
		case FuncCodeReadWriteMultipleRegisters:
			call = func() (ResultValue, error) {
				v, err := sf.provider.ReadWriteMultipleRegisters(req.Address, req.Quantity, req.WriteAddress, req.Regs)
				return WordValues(v), err
			}
		}
		if call == nil {
			switch req.FuncCode {
			case FuncCodeReadCoils:
				call = func() (ResultValue, error) {
					v, err := sf.provider.ReadCoils(req.Address, req.Quantity)
					return BoolValues(v), err
				}
			case FuncCodeReadDiscreteInputs:
				call = func() (ResultValue, error) {
					v, err := sf.provider.ReadDiscreteInputs(req.Address, req.Quantity)
					return BoolValues(v), err
				}
			default:
				return nil, ErrUnknownRequest
			}
		}

		value, err, ok := sf.attempt(call)
		if !ok {
			sf.Debugf("attempt timed out, function code %d, %d attempt(s) left", req.FuncCode, remain-1)
			continue
		}
		if err != nil {
			return nil, err
		}
		return value, nil
	}
	return nil, ErrDeadlineElapsed
}

// executeWrite is the write-side twin of executeRead.
func (sf *session) executeWrite(req Request) error {
	for remain := sf.retryCount; remain > 0; remain-- {
		var call func() error

		switch req.FuncCode {
		case FuncCodeWriteSingleCoil:
			call = func() error { return sf.provider.WriteSingleCoil(req.Address, req.CoilValue) }
		case FuncCodeWriteSingleRegister:
			call = func() error { return sf.provider.WriteSingleRegister(req.Address, req.RegValue) }
		case FuncCodeWriteMultipleCoils:
			call = func() error { return sf.provider.WriteMultipleCoils(req.Address, req.Coils) }
		case FuncCodeWriteMultipleRegisters:
			call = func() error { return sf.provider.WriteMultipleRegisters(req.Address, req.Regs) }
		case FuncCodeMaskWriteRegister:
			call = func() error { return sf.provider.MaskWriteRegister(req.Address, req.AndMask, req.OrMask) }
		default:
			return ErrUnknownRequest
		}

		_, err, ok := sf.attempt(func() (ResultValue, error) { return nil, call() })
		if !ok {
			sf.Debugf("attempt timed out, function code %d, %d attempt(s) left", req.FuncCode, remain-1)
			continue
		}
		if err != nil {
			return err
		}
		return nil
	}
	return ErrDeadlineElapsed
}

// attempt races one provider call against the per-attempt deadline.
// ok reports whether the call finished in time. A call that loses the race
// is abandoned: its goroutine delivers into a buffered channel nobody reads
// and exits, any late reply from the remote is discarded by the provider.
func (sf *session) attempt(call func() (ResultValue, error)) (ResultValue, error, bool) {
	done := make(chan callOutcome, 1)
	go func() {
		value, err := call()
		done <- callOutcome{value, err}
	}()

	t := time.NewTimer(sf.timeout)
	defer t.Stop()
	select {
	case out := <-done:
		return out.value, out.err, true
	case <-t.C:
		return nil, nil, false
	}
}

// resultBools narrows a ResultValue to the bool shape. The mismatch branch
// is unreachable under correct dispatch and exists to fail fast on engine
// defects rather than silently coerce.
func resultBools(v ResultValue) ([]bool, error) {
	b, ok := v.(BoolValues)
	if !ok {
		return nil, ErrNotBoolResult
	}
	return b, nil
}

// resultWords narrows a ResultValue to the 16-bit word shape.
func resultWords(v ResultValue) ([]uint16, error) {
	w, ok := v.(WordValues)
	if !ok {
		return nil, ErrNotWordResult
	}
	return w, nil
}
