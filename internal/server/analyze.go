package server

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lightcrafter/dlpc350/internal/protocol"
)

// ReadCapture parses a JSON Lines capture file. Blank lines are skipped.
func ReadCapture(r io.Reader) ([]PacketRecord, error) {
	var records []PacketRecord
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec PacketRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Transaction is a frame reassembled from captured packets
type Transaction struct {
	PacketNum int // first packet of the frame
	Direction string
	Frame     *protocol.Frame
	Opcode    protocol.Opcode // for replies, the opcode of the request
	Packets   int
}

// Rejected reports whether the device set the error bit
func (t Transaction) Rejected() bool {
	return t.Direction == DirectionFromDevice && t.Frame.Flags.Error
}

// Reassemble joins continuation packets into frames and pairs every reply
// with the read or acknowledged write that requested it
func Reassemble(records []PacketRecord) ([]Transaction, error) {
	var (
		out     []Transaction
		pending []byte // host frame bytes collected so far
		want    int    // packets the pending frame occupies
		start   int
		lastOp  protocol.Opcode
	)

	for _, rec := range records {
		packet, err := hex.DecodeString(rec.PacketHex)
		if err != nil {
			return nil, fmt.Errorf("packet %d: %w", rec.PacketNum, err)
		}

		if rec.Direction == DirectionFromDevice {
			f, err := protocol.Decode(packet)
			if err != nil {
				return nil, fmt.Errorf("packet %d: %w", rec.PacketNum, err)
			}
			out = append(out, Transaction{
				PacketNum: rec.PacketNum,
				Direction: rec.Direction,
				Frame:     f,
				Opcode:    lastOp,
				Packets:   1,
			})
			continue
		}

		if pending == nil {
			f, err := protocol.Decode(packet)
			if err != nil {
				return nil, fmt.Errorf("packet %d: %w", rec.PacketNum, err)
			}
			want = protocol.PacketCount(int(f.Length))
			start = rec.PacketNum
		}
		pending = append(pending, packet...)
		if len(pending) < want*protocol.MaxPacketSize {
			continue
		}

		f, err := protocol.Decode(pending)
		if err != nil {
			return nil, fmt.Errorf("packet %d: %w", start, err)
		}
		lastOp = f.Opcode()
		out = append(out, Transaction{
			PacketNum: start,
			Direction: rec.Direction,
			Frame:     f,
			Opcode:    lastOp,
			Packets:   want,
		})
		pending = nil
	}

	if pending != nil {
		return out, fmt.Errorf("capture ends inside a frame starting at packet %d", start)
	}
	return out, nil
}

// Summary counts the transactions of a capture
type Summary struct {
	Packets  int
	Requests int
	Replies  int
	Rejected int
	ByOpcode map[protocol.Opcode]int // requests per opcode
}

// Summarize counts requests, replies and rejections
func Summarize(txs []Transaction) Summary {
	s := Summary{ByOpcode: make(map[protocol.Opcode]int)}
	for _, t := range txs {
		s.Packets += t.Packets
		if t.Direction == DirectionToDevice {
			s.Requests++
			s.ByOpcode[t.Opcode]++
			continue
		}
		s.Replies++
		if t.Rejected() {
			s.Rejected++
		}
	}
	return s
}
