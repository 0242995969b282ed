package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/lightcrafter/dlpc350/internal/dlpc350"
	"github.com/lightcrafter/dlpc350/internal/protocol"
	"github.com/lightcrafter/dlpc350/internal/server"
)

var captureDump bool

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().BoolVar(&captureDump, "dump", false, "Hex dump every frame payload")
}

var captureCmd = &cobra.Command{
	Use:   "capture <file.jsonl>",
	Short: "Decode a bridge packet capture",
	Long: `Read a capture written by 'dlpc350-bridge serve --capture-dir',
reassemble multi-packet frames and list every transaction with its
opcode. Ends with per-opcode request counts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		records, err := server.ReadCapture(f)
		if err != nil {
			return fmt.Errorf("read capture: %w", err)
		}
		txs, err := server.Reassemble(records)
		if err != nil {
			// Print what was decoded before the damage
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}

		for _, t := range txs {
			printTransaction(t)
		}

		s := server.Summarize(txs)
		fmt.Printf("\n%d packets, %d requests, %d replies, %d rejected\n",
			s.Packets, s.Requests, s.Replies, s.Rejected)

		ops := make([]protocol.Opcode, 0, len(s.ByOpcode))
		for op := range s.ByOpcode {
			ops = append(ops, op)
		}
		sort.Slice(ops, func(i, j int) bool { return s.ByOpcode[ops[i]] > s.ByOpcode[ops[j]] })
		for _, op := range ops {
			fmt.Printf("  %5d  %s  %s\n", s.ByOpcode[op], op, dlpc350.OpcodeName(op))
		}
		return nil
	},
}

func printTransaction(t server.Transaction) {
	arrow := ">"
	data := t.Frame.Params()
	if t.Direction == server.DirectionFromDevice {
		arrow = "<"
		data = t.Frame.Payload
	}
	marker := ""
	if t.Rejected() {
		marker = " REJECTED"
	}
	fmt.Printf("%5d %s %-5s %-28s %3d bytes%s\n",
		t.PacketNum, arrow, t.Frame.Flags.Direction, dlpc350.OpcodeName(t.Opcode), len(data), marker)
	if captureDump && len(data) > 0 {
		fmt.Print(hex.Dump(data))
	}
}
