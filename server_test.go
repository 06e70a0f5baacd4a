package mblink

import (
	"errors"
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type reply struct {
	resp *Response
	ex   *ExceptionError
}

// scriptProvider feeds a fixed request sequence and records every reply.
// An exhausted script reads as a clean peer disconnect.
type scriptProvider struct {
	reqs     []*SlaveRequest
	recvErr  error
	replyErr error
	replies  []reply
	closed   bool
}

func (sf *scriptProvider) Receive() (*SlaveRequest, error) {
	if len(sf.reqs) == 0 {
		if sf.recvErr != nil {
			return nil, sf.recvErr
		}
		return nil, io.EOF
	}
	req := sf.reqs[0]
	sf.reqs = sf.reqs[1:]
	return req, nil
}

func (sf *scriptProvider) Reply(resp *Response, ex *ExceptionError) error {
	sf.replies = append(sf.replies, reply{resp, ex})
	return sf.replyErr
}

func (sf *scriptProvider) Close() error {
	sf.closed = true
	return nil
}

func TestServerServe(t *testing.T) {
	bank := NewRegBank(0, 16, 0, 16, 0, 16, 100, 8)
	srv := NewServer(1, bank)

	p := &scriptProvider{
		reqs: []*SlaveRequest{
			{SlaveID: 1, Request: Request{
				FuncCode: FuncCodeWriteMultipleRegisters, Address: 100, Quantity: 2, Regs: []uint16{42, 43},
			}},
			{SlaveID: 1, Request: Request{
				FuncCode: FuncCodeReadHoldingRegisters, Address: 100, Quantity: 2,
			}},
			{SlaveID: 1, Request: Request{
				FuncCode: FuncCodeWriteSingleCoil, Address: 3, CoilValue: true,
			}},
		},
	}

	if err := srv.Serve(p, nil); err != nil {
		t.Fatalf("Serve returned %v, want nil on clean disconnect", err)
	}

	want := []reply{
		{resp: &Response{FuncCode: FuncCodeWriteMultipleRegisters, Address: 100, Quantity: 2}},
		{resp: &Response{FuncCode: FuncCodeReadHoldingRegisters, Words: []uint16{42, 43}}},
		{resp: &Response{FuncCode: FuncCodeWriteSingleCoil, Address: 3, CoilValue: true}},
	}
	if diff := cmp.Diff(want, p.replies, cmp.AllowUnexported(reply{})); diff != "" {
		t.Errorf("replies mismatch (-want +got):\n%s", diff)
	}
}

func TestServerServeForeignSlave(t *testing.T) {
	srv := NewServer(1, NewRegBank(0, 16, 0, 16, 0, 16, 0, 16))
	p := &scriptProvider{
		reqs: []*SlaveRequest{
			{SlaveID: 2, Request: Request{FuncCode: FuncCodeReadCoils, Address: 0, Quantity: 8}},
		},
	}

	if err := srv.Serve(p, nil); err != nil {
		t.Fatalf("Serve returned %v", err)
	}
	if len(p.replies) != 1 || p.replies[0].ex == nil ||
		p.replies[0].ex.ExceptionCode != ExceptionCodeIllegalDataAddress {
		t.Errorf("replies = %+v, want one IllegalDataAddress exception", p.replies)
	}
}

// faultCallback fails one read with a plain error to exercise the wire
// boundary mapping.
type faultCallback struct {
	*RegBank
}

func (sf *faultCallback) ReadHoldingRegisters(address, quantity uint16) ([]uint16, error) {
	return nil, errors.New("backing store offline")
}

func TestServerServeDeviceFailure(t *testing.T) {
	cb := &faultCallback{NewRegBank(0, 16, 0, 16, 0, 16, 0, 16)}
	srv := NewServer(1, cb)
	p := &scriptProvider{
		reqs: []*SlaveRequest{
			{SlaveID: 1, Request: Request{FuncCode: FuncCodeReadHoldingRegisters, Address: 0, Quantity: 1}},
		},
	}

	if err := srv.Serve(p, nil); err != nil {
		t.Fatalf("Serve returned %v", err)
	}
	if len(p.replies) != 1 || p.replies[0].ex == nil ||
		p.replies[0].ex.ExceptionCode != ExceptionCodeServerDeviceFailure {
		t.Errorf("replies = %+v, want one ServerDeviceFailure exception", p.replies)
	}
}

func TestServerServeReceiveError(t *testing.T) {
	srv := NewServer(1, NewRegBank(0, 16, 0, 16, 0, 16, 0, 16))
	broken := errors.New("read: connection reset")
	p := &scriptProvider{recvErr: broken}

	var seen error
	err := srv.Serve(p, func(e error) { seen = e })
	if !errors.Is(err, broken) {
		t.Fatalf("Serve returned %v, want the transport error", err)
	}
	if !errors.Is(seen, broken) {
		t.Errorf("onError saw %v, want the transport error", seen)
	}
}

func TestServerServeReplyError(t *testing.T) {
	srv := NewServer(1, NewRegBank(0, 16, 0, 16, 0, 16, 0, 16))
	broken := errors.New("write: broken pipe")
	p := &scriptProvider{
		reqs: []*SlaveRequest{
			{SlaveID: 1, Request: Request{FuncCode: FuncCodeReadCoils, Address: 0, Quantity: 1}},
		},
		replyErr: broken,
	}

	var seen error
	err := srv.Serve(p, func(e error) { seen = e })
	if !errors.Is(err, broken) {
		t.Fatalf("Serve returned %v, want the transport error", err)
	}
	if !errors.Is(seen, broken) {
		t.Errorf("onError saw %v, want the transport error", seen)
	}
}
