package sdbus

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// MemCard is a minimal in-memory SD card backing store implementing
// Bus. It understands just enough of the SD command set to drive a
// host controller through a realistic read/write session —
// CMD8/CMD55/ACMD41 for the init handshake, CMD2/CMD3/CMD9 for
// identification, CMD17/CMD18 (read single/multiple block) and
// CMD24/CMD25 (write single/multiple block) for data transfer, CMD12
// to stop a multi-block transfer — without pulling in a real SD stack.
// It exists for cmd/sdhcreplay and for tests that want a card behind
// the controller rather than a hand-fed canned response.
type MemCard struct {
	mu sync.Mutex

	storage    []byte
	blockLen   uint32
	readOnly   bool
	present    bool
	rca        uint16
	activeRead  []byte
	activeWrite []byte
	writeAddr   uint32
}

// NewMemCard creates a card backed by size bytes of zeroed storage,
// transferred in 512-byte blocks. Read and write command arguments are
// byte addresses, as on a standard-capacity SD card.
func NewMemCard(size int) *MemCard {
	return &MemCard{
		storage:  make([]byte, size),
		blockLen: 512,
		present:  true,
		rca:      0xaaaa,
	}
}

// SetReadOnly marks the card as write-protected; writes become no-ops.
func (c *MemCard) SetReadOnly(ro bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readOnly = ro
}

// Storage returns the backing byte slice directly, for test setup and
// inspection.
func (c *MemCard) Storage() []byte { return c.storage }

// SubmitCommand implements Bus.
func (c *MemCard) SubmitCommand(req Request) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.present {
		return nil, ErrCommandFailed
	}

	switch req.Cmd {
	case 0: // GO_IDLE_STATE
		return nil, nil
	case 8: // SEND_IF_COND
		resp := make([]byte, 4)
		binary.BigEndian.PutUint32(resp, req.Arg&0xFFF)
		return resp, nil
	case 55: // APP_CMD
		return cardStatusResponse(c.rca), nil
	case 41: // SD_SEND_OP_COND (ACMD41)
		resp := make([]byte, 4)
		binary.BigEndian.PutUint32(resp, 0x80FF8000) // busy=0 (ready), voltage window, no HCS
		return resp, nil
	case 2: // ALL_SEND_CID
		return make([]byte, 16), nil
	case 3: // SEND_RELATIVE_ADDR
		resp := make([]byte, 4)
		binary.BigEndian.PutUint32(resp, uint32(c.rca)<<16)
		return resp, nil
	case 9: // SEND_CSD
		return make([]byte, 16), nil
	case 7: // SELECT/DESELECT_CARD
		return cardStatusResponse(c.rca), nil
	case 16: // SET_BLOCKLEN
		c.blockLen = req.Arg
		return cardStatusResponse(c.rca), nil
	case 17, 18: // READ_SINGLE_BLOCK, READ_MULTIPLE_BLOCK
		if err := c.beginRead(req.Arg); err != nil {
			return nil, err
		}
		return cardStatusResponse(c.rca), nil
	case 24, 25: // WRITE_BLOCK, WRITE_MULTIPLE_BLOCK
		if c.readOnly {
			return nil, ErrCommandFailed
		}
		c.beginWrite(req.Arg)
		return cardStatusResponse(c.rca), nil
	case 12: // STOP_TRANSMISSION
		c.activeRead = nil
		c.flushWrite()
		return cardStatusResponse(c.rca), nil
	default:
		return cardStatusResponse(c.rca), nil
	}
}

// DataReady implements Bus.
func (c *MemCard) DataReady() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.activeRead) > 0
}

// ReadByte implements Bus.
func (c *MemCard) ReadByte() byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.activeRead) == 0 {
		return 0
	}
	b := c.activeRead[0]
	c.activeRead = c.activeRead[1:]
	return b
}

// WriteByte implements Bus.
func (c *MemCard) WriteByte(b byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readOnly {
		return
	}
	c.activeWrite = append(c.activeWrite, b)
	if uint32(len(c.activeWrite)) >= c.blockLen {
		c.flushWriteLocked()
	}
}

// SetInserted implements InsertionSink for symmetry with the host
// controller's own card-insertion callback, letting a demo flip this
// card's presence and have the controller observe it.
func (c *MemCard) SetInserted(inserted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.present = inserted
}

func (c *MemCard) beginRead(blockAddr uint32) error {
	start := int(blockAddr)
	end := start + int(c.blockLen)
	if start < 0 || end > len(c.storage) {
		return fmt.Errorf("sdbus: read block address 0x%x out of range", blockAddr)
	}
	c.activeRead = append([]byte(nil), c.storage[start:end]...)
	return nil
}

func (c *MemCard) beginWrite(blockAddr uint32) {
	c.writeAddr = blockAddr
	c.activeWrite = c.activeWrite[:0]
}

func (c *MemCard) flushWrite() {
	c.flushWriteLocked()
}

func (c *MemCard) flushWriteLocked() {
	if len(c.activeWrite) == 0 {
		return
	}
	start := int(c.writeAddr)
	end := start + len(c.activeWrite)
	if start >= 0 && end <= len(c.storage) {
		copy(c.storage[start:end], c.activeWrite)
	}
	c.writeAddr += uint32(len(c.activeWrite))
	c.activeWrite = c.activeWrite[:0]
}

func cardStatusResponse(rca uint16) []byte {
	resp := make([]byte, 4)
	binary.BigEndian.PutUint32(resp, uint32(rca)<<16|0x0900) // READY_FOR_DATA | tran state
	return resp
}

var _ Bus = (*MemCard)(nil)
var _ InsertionSink = (*MemCard)(nil)
