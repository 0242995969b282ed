package server

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// records builds capture records for a request frame and its reply
func records(t *testing.T, frames ...dirFrame) []PacketRecord {
	t.Helper()
	var out []PacketRecord
	for _, fr := range frames {
		for _, p := range protocol.Packetize(fr.f.Marshal()) {
			out = append(out, PacketRecord{
				PacketNum: len(out) + 1,
				Direction: fr.dir,
				PacketHex: hex.EncodeToString(p),
			})
		}
	}
	return out
}

type dirFrame struct {
	dir string
	f   *protocol.Frame
}

func reply(payload []byte, rejected bool) *protocol.Frame {
	return &protocol.Frame{
		Flags:   protocol.Flags{Direction: protocol.Read, Reply: true, Error: rejected},
		Length:  uint16(len(payload)),
		Payload: payload,
	}
}

func TestReadCapture(t *testing.T) {
	input := `{"packet_num":1,"direction":"host->device","packet_hex":"c0"}

{"packet_num":2,"direction":"device->host","packet_hex":"00"}
`
	recs, err := ReadCapture(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCapture() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("ReadCapture() = %d records, want 2", len(recs))
	}
	if recs[1].Direction != DirectionFromDevice {
		t.Errorf("Direction = %q, want %q", recs[1].Direction, DirectionFromDevice)
	}

	if _, err := ReadCapture(strings.NewReader("{\"packet_num\":1}\nnot json\n")); err == nil ||
		!strings.Contains(err.Error(), "line 2") {
		t.Errorf("ReadCapture() error = %v, want line 2 error", err)
	}
}

func TestReassemble(t *testing.T) {
	lut := make([]byte, 24*3)
	for i := range lut {
		lut[i] = byte(i)
	}
	bulk := protocol.Encode(protocol.Write, dlpc350.OpMailboxData, lut)

	recs := records(t,
		dirFrame{DirectionToDevice, protocol.Encode(protocol.Read, dlpc350.OpMainStatus, nil)},
		dirFrame{DirectionFromDevice, reply([]byte{0x03}, false)},
		dirFrame{DirectionToDevice, bulk},
		dirFrame{DirectionFromDevice, reply(nil, false)},
		dirFrame{DirectionToDevice, protocol.Encode(protocol.Write, dlpc350.OpDisplayMode, []byte{1})},
		dirFrame{DirectionFromDevice, reply(nil, true)},
	)

	txs, err := Reassemble(recs)
	if err != nil {
		t.Fatalf("Reassemble() error = %v", err)
	}
	if len(txs) != 6 {
		t.Fatalf("Reassemble() = %d transactions, want 6", len(txs))
	}

	if txs[1].Opcode != dlpc350.OpMainStatus {
		t.Errorf("reply opcode = %v, want %v", txs[1].Opcode, dlpc350.OpMainStatus)
	}
	if txs[2].Packets != 2 {
		t.Errorf("bulk packets = %d, want 2", txs[2].Packets)
	}
	if got := txs[2].Frame.Params(); len(got) != len(lut) || got[71] != 71 {
		t.Errorf("bulk params not reassembled: %d bytes", len(got))
	}
	if !txs[5].Rejected() {
		t.Error("rejected reply not flagged")
	}

	s := Summarize(txs)
	if s.Packets != 7 || s.Requests != 3 || s.Replies != 3 || s.Rejected != 1 {
		t.Errorf("Summarize() = %+v", s)
	}
	if s.ByOpcode[dlpc350.OpMailboxData] != 1 {
		t.Errorf("ByOpcode[mailbox data] = %d, want 1", s.ByOpcode[dlpc350.OpMailboxData])
	}
}

func TestReassembleTruncated(t *testing.T) {
	bulk := protocol.Encode(protocol.Write, dlpc350.OpMailboxData, make([]byte, 100))
	recs := records(t, dirFrame{DirectionToDevice, bulk})

	if _, err := Reassemble(recs[:1]); err == nil {
		t.Error("Reassemble() error = nil for a truncated frame")
	}
}
