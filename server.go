package mblink

import (
	"errors"
	"io"
)

// ServerProvider is the slave-side transport/codec boundary. The transport
// owns listen/accept, framing and encode/decode; it hands decoded request
// envelopes to the server one at a time per connection and encodes whatever
// the server answers.
type ServerProvider interface {
	// Receive blocks until the next decoded request arrives. It returns
	// io.EOF when the peer closed the connection cleanly.
	Receive() (*SlaveRequest, error)
	// Reply transmits the outcome of the request most recently received.
	// Exactly one of resp, ex is non-nil; ex is encoded as a protocol
	// exception response.
	Reply(resp *Response, ex *ExceptionError) error
	// Close closes the connection.
	Close() error
}

// Server answers requests from one or more ServerProviders through a shared
// Router. The router side is stateless, so a single Server may serve many
// connections concurrently, one Serve call per connection.
type Server struct {
	router *Router
	clogs
}

// NewServer creates a server for the given slave id and device model.
func NewServer(slaveID byte, cb Callback) *Server {
	return &Server{
		router: NewRouter(slaveID, cb),
		clogs:  clogs{newDefaultLogger("mblink server =>"), 0},
	}
}

// Router returns the server's request router.
func (sf *Server) Router() *Router {
	return sf.router
}

// Serve answers requests from p until the transport fails or the peer
// disconnects. Requests are processed strictly one at a time in arrival
// order, matching the protocol's half-duplex request/reply discipline.
//
// Connection-level I/O errors are the transport's concern: they are handed
// to onError and end the loop; a clean peer disconnect (io.EOF) ends the
// loop silently. A device-model failure that is not a protocol exception is
// answered as ServerDeviceFailure — the mapping happens here at the wire
// boundary, the Router itself propagates such errors unchanged.
func (sf *Server) Serve(p ServerProvider, onError func(error)) error {
	if onError == nil {
		onError = func(error) {}
	}
	for {
		req, err := p.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			onError(err)
			return err
		}

		resp, err := sf.router.Process(req)
		if err != nil {
			var ex *ExceptionError
			if !errors.As(err, &ex) {
				sf.Errorf("device model returned non-exception error: %v", err)
				ex = &ExceptionError{ExceptionCodeServerDeviceFailure}
			}
			err = p.Reply(nil, ex)
		} else {
			err = p.Reply(resp, nil)
		}
		if err != nil {
			onError(err)
			return err
		}
	}
}
