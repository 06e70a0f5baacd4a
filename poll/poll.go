// Package poll schedules periodic read jobs over one client session.
// Jobs are fired by a timing wheel into a ready queue and executed by a
// single poll goroutine, which keeps the session's one-outstanding-call
// discipline intact.
package poll

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/thinkgos/timing/v4"

	"github.com/thinkgos/mblink"
)

const (
	// DefaultRandValue 单位ms
	// 默认随机值上限, 当就绪队列满时, 请求以 rand.Intn(v)*1ms 的随机延迟重新入队
	DefaultRandValue = 50
	// DefaultReadyQueuesLength 默认就绪列表长度
	DefaultReadyQueuesLength = 256
)

// Client 周期采集客户端
type Client struct {
	mblink.Client
	randValue      int
	readyQueueSize int
	ready          chan *Request
	handler        Handler
	panicHandle    func(err interface{})
	ctx            context.Context
	cancel         context.CancelFunc
}

// Result 某个请求的结果与参数
type Result struct {
	FuncCode byte          // 功能码
	Address  uint16        // 请求数据用实际地址
	Quantity uint16        // 请求数量
	ScanRate time.Duration // 扫描速率scan rate
	TxCnt    uint64        // 发送计数
	ErrCnt   uint64        // 发送错误计数
}

// Request 请求
type Request struct {
	FuncCode byte          // 功能码
	Address  uint16        // 请求数据用实际地址
	Quantity uint16        // 请求数量
	ScanRate time.Duration // 扫描速率scan rate
	txCnt    uint64        // 发送计数
	errCnt   uint64        // 发送错误计数
	tm       *timing.Timer
}

// New 在已创建的会话上创建采集客户端
func New(c mblink.Client, opts ...Option) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	cli := &Client{
		Client:         c,
		randValue:      DefaultRandValue,
		readyQueueSize: DefaultReadyQueuesLength,
		handler:        &NopProc{},
		panicHandle:    func(interface{}) {},
		ctx:            ctx,
		cancel:         cancel,
	}
	for _, opt := range opts {
		opt(cli)
	}
	cli.ready = make(chan *Request, cli.readyQueueSize)
	return cli
}

// Start 启动采集
func (sf *Client) Start() error {
	if err := sf.ctx.Err(); err != nil {
		return err
	}
	go sf.readPoll()
	return nil
}

// Close 停止采集并关闭底层会话
func (sf *Client) Close() error {
	sf.cancel()
	return sf.Client.Close()
}

// AddGatherJob 增加采集任务, 超过单次请求上限的数量将被按上限分片
func (sf *Client) AddGatherJob(r Request) error {
	var quantityMax int

	if err := sf.ctx.Err(); err != nil {
		return err
	}

	switch r.FuncCode {
	case mblink.FuncCodeReadCoils, mblink.FuncCodeReadDiscreteInputs:
		quantityMax = mblink.ReadBitsQuantityMax
	case mblink.FuncCodeReadInputRegisters, mblink.FuncCodeReadHoldingRegisters:
		quantityMax = mblink.ReadRegQuantityMax
	default:
		return errors.New("poll: invalid function code")
	}

	address := r.Address
	remain := int(r.Quantity)
	for remain > 0 {
		count := remain
		if count > quantityMax {
			count = quantityMax
		}

		req := &Request{
			FuncCode: r.FuncCode,
			Address:  address,
			Quantity: uint16(count),
			ScanRate: r.ScanRate,
			tm:       timing.NewTimer(),
		}
		req.tm.WithJobFunc(func() {
			select {
			case <-sf.ctx.Done():
				return
			case sf.ready <- req:
			default:
				timing.Add(req.tm, time.Duration(rand.Intn(sf.randValue))*time.Millisecond)
			}
		})
		timing.Add(req.tm, req.ScanRate)

		address += uint16(count)
		remain -= count
	}
	return nil
}

// 读协程
func (sf *Client) readPoll() {
	for {
		select {
		case <-sf.ctx.Done():
			return
		case req := <-sf.ready: // 查看是否有准备好的请求
			sf.procRequest(req)
		}
	}
}

func (sf *Client) procRequest(req *Request) {
	var err error

	defer func() {
		if err := recover(); err != nil {
			sf.panicHandle(err)
		}
	}()

	req.txCnt++
	switch req.FuncCode {
	// Bit access read
	case mblink.FuncCodeReadCoils:
		var values []bool
		values, err = sf.ReadCoils(req.Address, req.Quantity)
		if err == nil {
			sf.handler.ProcReadCoils(req.Address, req.Quantity, values)
		}
	case mblink.FuncCodeReadDiscreteInputs:
		var values []bool
		values, err = sf.ReadDiscreteInputs(req.Address, req.Quantity)
		if err == nil {
			sf.handler.ProcReadDiscretes(req.Address, req.Quantity, values)
		}

	// 16-bit access read
	case mblink.FuncCodeReadHoldingRegisters:
		var values []uint16
		values, err = sf.ReadHoldingRegisters(req.Address, req.Quantity)
		if err == nil {
			sf.handler.ProcReadHoldingRegisters(req.Address, req.Quantity, values)
		}
	case mblink.FuncCodeReadInputRegisters:
		var values []uint16
		values, err = sf.ReadInputRegisters(req.Address, req.Quantity)
		if err == nil {
			sf.handler.ProcReadInputRegisters(req.Address, req.Quantity, values)
		}
	}
	if err != nil {
		req.errCnt++
	}

	if req.ScanRate > 0 {
		timing.Add(req.tm, req.ScanRate)
	}
	sf.handler.ProcResult(err, &Result{
		req.FuncCode,
		req.Address,
		req.Quantity,
		req.ScanRate,
		req.txCnt,
		req.errCnt,
	})
}
