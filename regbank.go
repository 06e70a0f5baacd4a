package mblink

// 本文件提供一个线程安全的内存设备模型, 可直接作为服务端的 Callback 使用

import (
	"sync"
)

// check implements Callback interface.
var _ Callback = (*RegBank)(nil)

// RegBank is a thread-safe in-memory device model: four fixed slabs of
// coils, discrete inputs, input registers and holding registers, each with
// its own start address. It implements Callback, so it can back a Server
// directly, and it is the stock device model used by the package tests.
//
// Discrete inputs and input registers are read-only on the wire; the
// WriteDiscretes and WriteInputs helpers exist so local code can feed them.
type RegBank struct {
	rw                              sync.RWMutex
	coilsStart, coilsQuantity       uint16
	coils                           []uint8
	discreteStart, discreteQuantity uint16
	discrete                        []uint8
	inputStart                      uint16
	input                           []uint16
	holdingStart                    uint16
	holding                         []uint16
}

// NewRegBank creates a register bank with the given slab geometry.
func NewRegBank(coilsStart, coilsQuantity,
	discreteStart, discreteQuantity,
	inputStart, inputQuantity,
	holdingStart, holdingQuantity uint16) *RegBank {
	coilsBytes := (int(coilsQuantity) + 7) / 8
	discreteBytes := (int(discreteQuantity) + 7) / 8

	b := make([]byte, coilsBytes+discreteBytes)
	w := make([]uint16, int(inputQuantity)+int(holdingQuantity))
	return &RegBank{
		coilsStart:       coilsStart,
		coilsQuantity:    coilsQuantity,
		coils:            b[:coilsBytes],
		discreteStart:    discreteStart,
		discreteQuantity: discreteQuantity,
		discrete:         b[coilsBytes:],
		inputStart:       inputStart,
		input:            w[:inputQuantity],
		holdingStart:     holdingStart,
		holding:          w[inputQuantity:],
	}
}

// rangeOK reports whether [address, address+quantity) lies inside the slab
// [start, start+limit). Widened to int so the sums cannot wrap.
func rangeOK(address, quantity, start, limit uint16) bool {
	return address >= start && int(address)+int(quantity) <= int(start)+int(limit)
}

// ReadCoils 读线圈 (0x01)
func (sf *RegBank) ReadCoils(address, quantity uint16) ([]bool, error) {
	sf.rw.RLock()
	defer sf.rw.RUnlock()
	if !rangeOK(address, quantity, sf.coilsStart, sf.coilsQuantity) {
		return nil, &ExceptionError{ExceptionCodeIllegalDataAddress}
	}
	start := address - sf.coilsStart
	values := make([]bool, quantity)
	for i := uint16(0); i < quantity; i++ {
		values[i] = getBits(sf.coils, start+i, 1) != 0
	}
	return values, nil
}

// ReadDiscreteInputs 读离散量 (0x02)
func (sf *RegBank) ReadDiscreteInputs(address, quantity uint16) ([]bool, error) {
	sf.rw.RLock()
	defer sf.rw.RUnlock()
	if !rangeOK(address, quantity, sf.discreteStart, sf.discreteQuantity) {
		return nil, &ExceptionError{ExceptionCodeIllegalDataAddress}
	}
	start := address - sf.discreteStart
	values := make([]bool, quantity)
	for i := uint16(0); i < quantity; i++ {
		values[i] = getBits(sf.discrete, start+i, 1) != 0
	}
	return values, nil
}

// ReadHoldingRegisters 读保持寄存器 (0x03)
func (sf *RegBank) ReadHoldingRegisters(address, quantity uint16) ([]uint16, error) {
	sf.rw.RLock()
	defer sf.rw.RUnlock()
	src, err := sf.holdingRange(address, quantity)
	if err != nil {
		return nil, err
	}
	result := make([]uint16, quantity)
	copy(result, src)
	return result, nil
}

// ReadInputRegisters 读输入寄存器 (0x04)
func (sf *RegBank) ReadInputRegisters(address, quantity uint16) ([]uint16, error) {
	sf.rw.RLock()
	defer sf.rw.RUnlock()
	if !rangeOK(address, quantity, sf.inputStart, uint16(len(sf.input))) {
		return nil, &ExceptionError{ExceptionCodeIllegalDataAddress}
	}
	start := address - sf.inputStart
	result := make([]uint16, quantity)
	copy(result, sf.input[start:start+quantity])
	return result, nil
}

// WriteCoil 写单个线圈 (0x05)
func (sf *RegBank) WriteCoil(address uint16, value bool) error {
	return sf.setCoils(address, []bool{value})
}

// WriteRegister 写单个保持寄存器 (0x06)
func (sf *RegBank) WriteRegister(address, value uint16) error {
	sf.rw.Lock()
	defer sf.rw.Unlock()
	dst, err := sf.holdingRange(address, 1)
	if err != nil {
		return err
	}
	dst[0] = value
	return nil
}

// WriteCoils 写多个线圈 (0x0F), 返回写入的数量
func (sf *RegBank) WriteCoils(address uint16, values []bool) (uint16, error) {
	if err := sf.setCoils(address, values); err != nil {
		return 0, err
	}
	return uint16(len(values)), nil
}

// WriteRegisters 写多个保持寄存器 (0x10), 返回写入的数量
func (sf *RegBank) WriteRegisters(address uint16, values []uint16) (uint16, error) {
	sf.rw.Lock()
	defer sf.rw.Unlock()
	dst, err := sf.holdingRange(address, uint16(len(values)))
	if err != nil {
		return 0, err
	}
	copy(dst, values)
	return uint16(len(values)), nil
}

// MaskWriteRegister 屏蔽写保持寄存器 (0x16)
// 结果为 (current & andMask) | (orMask & ^andMask)
func (sf *RegBank) MaskWriteRegister(address, andMask, orMask uint16) error {
	sf.rw.Lock()
	defer sf.rw.Unlock()
	dst, err := sf.holdingRange(address, 1)
	if err != nil {
		return err
	}
	dst[0] = (dst[0] & andMask) | (orMask &^ andMask)
	return nil
}

// ReadWriteMultipleRegisters 写并读保持寄存器 (0x17), 先写后读
func (sf *RegBank) ReadWriteMultipleRegisters(readAddress, readQuantity, writeAddress uint16, writeData []uint16) ([]uint16, error) {
	sf.rw.Lock()
	defer sf.rw.Unlock()
	dst, err := sf.holdingRange(writeAddress, uint16(len(writeData)))
	if err != nil {
		return nil, err
	}
	copy(dst, writeData)
	src, err := sf.holdingRange(readAddress, readQuantity)
	if err != nil {
		return nil, err
	}
	result := make([]uint16, readQuantity)
	copy(result, src)
	return result, nil
}

// setCoils sets contiguous coils in the packed slab.
func (sf *RegBank) setCoils(address uint16, values []bool) error {
	sf.rw.Lock()
	defer sf.rw.Unlock()
	if !rangeOK(address, uint16(len(values)), sf.coilsStart, sf.coilsQuantity) {
		return &ExceptionError{ExceptionCodeIllegalDataAddress}
	}
	start := address - sf.coilsStart
	for i, v := range values {
		b := byte(0)
		if v {
			b = 1
		}
		setBits(sf.coils, start+uint16(i), 1, b)
	}
	return nil
}

// WriteDiscretes sets contiguous discrete inputs locally. The wire has no
// write access to discretes, this is for the owning application.
func (sf *RegBank) WriteDiscretes(address uint16, values []bool) error {
	sf.rw.Lock()
	defer sf.rw.Unlock()
	if !rangeOK(address, uint16(len(values)), sf.discreteStart, sf.discreteQuantity) {
		return &ExceptionError{ExceptionCodeIllegalDataAddress}
	}
	start := address - sf.discreteStart
	for i, v := range values {
		b := byte(0)
		if v {
			b = 1
		}
		setBits(sf.discrete, start+uint16(i), 1, b)
	}
	return nil
}

// WriteInputs sets contiguous input registers locally.
func (sf *RegBank) WriteInputs(address uint16, values []uint16) error {
	sf.rw.Lock()
	defer sf.rw.Unlock()
	if !rangeOK(address, uint16(len(values)), sf.inputStart, uint16(len(sf.input))) {
		return &ExceptionError{ExceptionCodeIllegalDataAddress}
	}
	start := address - sf.inputStart
	copy(sf.input[start:int(start)+len(values)], values)
	return nil
}

// holdingRange returns the holding sub-slice for [address, address+quantity).
// The caller holds the lock.
func (sf *RegBank) holdingRange(address, quantity uint16) ([]uint16, error) {
	if !rangeOK(address, quantity, sf.holdingStart, uint16(len(sf.holding))) {
		return nil, &ExceptionError{ExceptionCodeIllegalDataAddress}
	}
	start := address - sf.holdingStart
	return sf.holding[start : start+quantity], nil
}

// getBits 读取切片的位的值, nBits <= 8, nBits + start <= len(buf)*8
func getBits(buf []byte, start, nBits uint16) uint8 {
	byteOffset := start / 8         // 计算字节偏移量
	preBits := start - byteOffset*8 // 有多少个位需要设置

	mask := (uint16(1) << nBits) - 1 // 准备一个掩码来设置新的位
	word := uint16(buf[byteOffset])  // 复制到临时存储
	if preBits+nBits > 8 {
		word |= uint16(buf[byteOffset+1]) << 8
	}
	word >>= preBits // 抛弃不用的位
	word &= mask
	return uint8(word)
}

// setBits 设置切片的位的值, nBits <= 8, nBits + start <= len(buf)*8
func setBits(buf []byte, start, nBits uint16, value byte) {
	byteOffset := start / 8              // 计算字节偏移量
	preBits := start - byteOffset*8      // 有多少个位需要设置
	newValue := uint16(value) << preBits // 移到要设置的位的位置
	mask := uint16((1 << nBits) - 1)     // 准备一个掩码来设置新的位
	mask <<= preBits
	newValue &= mask
	word := uint16(buf[byteOffset]) // 复制到临时存储
	if (preBits + nBits) > 8 {
		word |= uint16(buf[byteOffset+1]) << 8
	}

	word = (word & (^mask)) | newValue   // 要写的位置清零
	buf[byteOffset] = uint8(word & 0xFF) // 写回到存储中
	if (preBits + nBits) > 8 {
		buf[byteOffset+1] = uint8(word >> 8)
	}
}
