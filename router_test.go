package mblink

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recordCallback records which Callback method the router invoked and with
// what arguments, answering from canned values.
type recordCallback struct {
	calls []string
	args  [][]interface{}
	bits  []bool
	words []uint16
	count uint16
	err   error
}

func (sf *recordCallback) record(name string, a ...interface{}) {
	sf.calls = append(sf.calls, name)
	sf.args = append(sf.args, a)
}

func (sf *recordCallback) ReadCoils(address, quantity uint16) ([]bool, error) {
	sf.record("ReadCoils", address, quantity)
	return sf.bits, sf.err
}

func (sf *recordCallback) ReadDiscreteInputs(address, quantity uint16) ([]bool, error) {
	sf.record("ReadDiscreteInputs", address, quantity)
	return sf.bits, sf.err
}

func (sf *recordCallback) ReadHoldingRegisters(address, quantity uint16) ([]uint16, error) {
	sf.record("ReadHoldingRegisters", address, quantity)
	return sf.words, sf.err
}

func (sf *recordCallback) ReadInputRegisters(address, quantity uint16) ([]uint16, error) {
	sf.record("ReadInputRegisters", address, quantity)
	return sf.words, sf.err
}

func (sf *recordCallback) WriteCoil(address uint16, value bool) error {
	sf.record("WriteCoil", address, value)
	return sf.err
}

func (sf *recordCallback) WriteRegister(address, value uint16) error {
	sf.record("WriteRegister", address, value)
	return sf.err
}

func (sf *recordCallback) WriteCoils(address uint16, values []bool) (uint16, error) {
	sf.record("WriteCoils", address, values)
	return sf.count, sf.err
}

func (sf *recordCallback) WriteRegisters(address uint16, values []uint16) (uint16, error) {
	sf.record("WriteRegisters", address, values)
	return uint16(len(values)), sf.err
}

func (sf *recordCallback) MaskWriteRegister(address, andMask, orMask uint16) error {
	sf.record("MaskWriteRegister", address, andMask, orMask)
	return sf.err
}

func (sf *recordCallback) ReadWriteMultipleRegisters(readAddress, readQuantity, writeAddress uint16, writeData []uint16) ([]uint16, error) {
	sf.record("ReadWriteMultipleRegisters", readAddress, readQuantity, writeAddress, writeData)
	return sf.words, sf.err
}

func TestRouterAddressFilter(t *testing.T) {
	cb := &recordCallback{bits: []bool{true}}
	router := NewRouter(1, cb)

	_, err := router.Process(&SlaveRequest{
		SlaveID: 2,
		Request: Request{FuncCode: FuncCodeReadCoils, Address: 0, Quantity: 8},
	})
	var ex *ExceptionError
	if !errors.As(err, &ex) || ex.ExceptionCode != ExceptionCodeIllegalDataAddress {
		t.Fatalf("got error %v, want IllegalDataAddress", err)
	}
	if len(cb.calls) != 0 {
		t.Errorf("device model invoked %v for a foreign slave id", cb.calls)
	}
}

func TestRouterDispatch(t *testing.T) {
	tests := []struct {
		name     string
		req      Request
		want     *Response
		wantCall string
		wantArgs []interface{}
	}{
		{
			"read coils",
			Request{FuncCode: FuncCodeReadCoils, Address: 2, Quantity: 3},
			&Response{FuncCode: FuncCodeReadCoils, Bits: []bool{true, false, true}},
			"ReadCoils", []interface{}{uint16(2), uint16(3)},
		},
		{
			"read discrete inputs",
			Request{FuncCode: FuncCodeReadDiscreteInputs, Address: 8, Quantity: 3},
			&Response{FuncCode: FuncCodeReadDiscreteInputs, Bits: []bool{true, false, true}},
			"ReadDiscreteInputs", []interface{}{uint16(8), uint16(3)},
		},
		{
			"read holding registers",
			Request{FuncCode: FuncCodeReadHoldingRegisters, Address: 100, Quantity: 2},
			&Response{FuncCode: FuncCodeReadHoldingRegisters, Words: []uint16{42, 43}},
			"ReadHoldingRegisters", []interface{}{uint16(100), uint16(2)},
		},
		{
			"read input registers",
			Request{FuncCode: FuncCodeReadInputRegisters, Address: 100, Quantity: 2},
			&Response{FuncCode: FuncCodeReadInputRegisters, Words: []uint16{42, 43}},
			"ReadInputRegisters", []interface{}{uint16(100), uint16(2)},
		},
		{
			"write single coil echoes request",
			Request{FuncCode: FuncCodeWriteSingleCoil, Address: 7, CoilValue: true},
			&Response{FuncCode: FuncCodeWriteSingleCoil, Address: 7, CoilValue: true},
			"WriteCoil", []interface{}{uint16(7), true},
		},
		{
			"write single register echoes request",
			Request{FuncCode: FuncCodeWriteSingleRegister, Address: 7, RegValue: 42},
			&Response{FuncCode: FuncCodeWriteSingleRegister, Address: 7, RegValue: 42},
			"WriteRegister", []interface{}{uint16(7), uint16(42)},
		},
		{
			"write multiple coils reports model count",
			Request{FuncCode: FuncCodeWriteMultipleCoils, Address: 7, Quantity: 2, Coils: []bool{true, false}},
			&Response{FuncCode: FuncCodeWriteMultipleCoils, Address: 7, Quantity: 5},
			"WriteCoils", []interface{}{uint16(7), []bool{true, false}},
		},
		{
			"write multiple registers reports request length",
			Request{FuncCode: FuncCodeWriteMultipleRegisters, Address: 7, Quantity: 3, Regs: []uint16{1, 2, 3}},
			&Response{FuncCode: FuncCodeWriteMultipleRegisters, Address: 7, Quantity: 3},
			"WriteRegisters", []interface{}{uint16(7), []uint16{1, 2, 3}},
		},
		{
			"mask write register echoes request",
			Request{FuncCode: FuncCodeMaskWriteRegister, Address: 7, AndMask: 0x00F2, OrMask: 0x0025},
			&Response{FuncCode: FuncCodeMaskWriteRegister, Address: 7, AndMask: 0x00F2, OrMask: 0x0025},
			"MaskWriteRegister", []interface{}{uint16(7), uint16(0x00F2), uint16(0x0025)},
		},
		{
			"read write multiple registers",
			Request{FuncCode: FuncCodeReadWriteMultipleRegisters, Address: 100, Quantity: 2, WriteAddress: 200, Regs: []uint16{9}},
			&Response{FuncCode: FuncCodeReadWriteMultipleRegisters, Words: []uint16{42, 43}},
			"ReadWriteMultipleRegisters", []interface{}{uint16(100), uint16(2), uint16(200), []uint16{9}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb := &recordCallback{
				bits:  []bool{true, false, true},
				words: []uint16{42, 43},
				count: 5, // deliberately not the request quantity
			}
			router := NewRouter(1, cb)

			got, err := router.Process(&SlaveRequest{SlaveID: 1, Request: tt.req})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("response mismatch (-want +got):\n%s", diff)
			}
			if len(cb.calls) != 1 || cb.calls[0] != tt.wantCall {
				t.Fatalf("device model invocations %v, want exactly one %s", cb.calls, tt.wantCall)
			}
			if diff := cmp.Diff(tt.wantArgs, cb.args[0]); diff != "" {
				t.Errorf("argument mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRouterExceptionPassthrough(t *testing.T) {
	want := &ExceptionError{ExceptionCodeServerDeviceBusy}
	cb := &recordCallback{err: want}
	router := NewRouter(1, cb)

	_, err := router.Process(&SlaveRequest{
		SlaveID: 1,
		Request: Request{FuncCode: FuncCodeReadHoldingRegisters, Address: 0, Quantity: 1},
	})
	if err != want { // the exact value must come through untouched
		t.Fatalf("got error %v, want the device model's exception unchanged", err)
	}
}

func TestRouterIllegalFunction(t *testing.T) {
	cb := &recordCallback{}
	router := NewRouter(1, cb)

	_, err := router.Process(&SlaveRequest{
		SlaveID: 1,
		Request: Request{FuncCode: 0x2B},
	})
	var ex *ExceptionError
	if !errors.As(err, &ex) || ex.ExceptionCode != ExceptionCodeIllegalFunction {
		t.Fatalf("got error %v, want IllegalFunction", err)
	}
	if len(cb.calls) != 0 {
		t.Errorf("device model invoked %v for an unknown function code", cb.calls)
	}
}
