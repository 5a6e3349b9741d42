package robot

import (
	"testing"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// fakeServo is a register file answering on one ID.
type fakeServo struct {
	regs   [256]byte
	status feetech.StatusError
	model  uint16
}

// fakeBus answers instruction packets written to a MockTransport as if the
// servos in it were attached. IDs without a servo stay silent.
type fakeBus struct {
	mock    *feetech.MockTransport
	proto   *feetech.Protocol
	servos  map[int]*fakeServo
	done    int
	pending []byte
}

func newFakeBus(servos map[int]*fakeServo) *fakeBus {
	fb := &fakeBus{
		mock:   &feetech.MockTransport{},
		proto:  feetech.NewProtocol(feetech.ProtocolSTS),
		servos: servos,
	}
	fb.mock.ReadFunc = fb.read
	return fb
}

func (fb *fakeBus) read(p []byte) (int, error) {
	fb.process()
	if len(fb.pending) == 0 {
		return 0, nil
	}
	n := copy(p, fb.pending)
	fb.pending = fb.pending[n:]
	return n, nil
}

func (fb *fakeBus) process() {
	data := fb.mock.WriteData
	for fb.done+6 <= len(data) {
		pkt := data[fb.done:]
		total := 4 + int(pkt[3])
		if len(pkt) < total {
			return
		}
		fb.done += total
		fb.respond(pkt[2], pkt[4], pkt[5:total-1])
	}
}

func (fb *fakeBus) respond(id, inst byte, params []byte) {
	s, ok := fb.servos[int(id)]
	if !ok {
		return
	}
	var reply []byte
	switch inst {
	case feetech.InstRead:
		addr, n := int(params[0]), int(params[1])
		reply = append(reply, s.regs[addr:addr+n]...)
	case feetech.InstWrite:
		if s.status == 0 {
			copy(s.regs[params[0]:], params[1:])
		}
	}
	if inst == feetech.InstRead && int(params[0]) == int(feetech.RegModelNumber.Address) {
		reply = fb.proto.EncodeWord(s.model)
	}
	// The status byte sits where Encode puts the instruction.
	fb.pending = append(fb.pending, fb.proto.Encode(feetech.Packet{
		ID:          id,
		Instruction: byte(s.status),
		Parameters:  reply,
	})...)
}

// writes returns the instruction packets sent so far.
func (fb *fakeBus) writes() [][]byte {
	var pkts [][]byte
	data := fb.mock.WriteData
	for off := 0; off+6 <= len(data); {
		total := 4 + int(data[off+3])
		pkts = append(pkts, data[off:off+total])
		off += total
	}
	return pkts
}

func newTestChain(t *testing.T, cfg *Config, servos map[int]*fakeServo) (*Chain, *fakeBus) {
	t.Helper()
	fb := newFakeBus(servos)
	bus, err := feetech.NewBus(feetech.BusConfig{
		Transport:     fb.mock,
		Timeout:       20 * time.Millisecond,
		MinCommandGap: time.Microsecond,
	})
	if err != nil {
		t.Fatalf("NewBus failed: %v", err)
	}
	chain := NewChain(bus, cfg)
	t.Cleanup(func() { chain.Close() })
	return chain, fb
}
