package dlpc350

import "github.com/lightcrafter/dlpc350/internal/protocol"

// Controller opcodes (CMD2 in the high byte, CMD3 in the low byte)
const (
	OpInputSource        protocol.Opcode = 0x1A00
	OpLEDEnable          protocol.Opcode = 0x1A07
	OpHardwareStatus     protocol.Opcode = 0x1A0A
	OpSystemStatus       protocol.Opcode = 0x1A0B
	OpMainStatus         protocol.Opcode = 0x1A0C
	OpValidate           protocol.Opcode = 0x1A1A
	OpDisplayMode        protocol.Opcode = 0x1A1B
	OpPatternDisplayMode protocol.Opcode = 0x1A22
	OpPatternTriggerMode protocol.Opcode = 0x1A23
	OpSequenceRunState   protocol.Opcode = 0x1A24
	OpPatternPeriod      protocol.Opcode = 0x1A29
	OpConfigureSequence  protocol.Opcode = 0x1A31
	OpMailboxAddress     protocol.Opcode = 0x1A32
	OpMailboxControl     protocol.Opcode = 0x1A33
	OpMailboxData        protocol.Opcode = 0x1A34
	OpFlashImage         protocol.Opcode = 0x1A39
	OpNumImagesInFlash   protocol.Opcode = 0x1A42
	OpFirmwareTag        protocol.Opcode = 0x1AFF
	OpPowerMode          protocol.Opcode = 0x0200
	OpVersion            protocol.Opcode = 0x0205
	OpLEDCurrent         protocol.Opcode = 0x0B01
	OpTestPattern        protocol.Opcode = 0x1203
)

var opcodeNames = map[protocol.Opcode]string{
	OpInputSource:        "input source",
	OpLEDEnable:          "LED enable",
	OpHardwareStatus:     "hardware status",
	OpSystemStatus:       "system status",
	OpMainStatus:         "main status",
	OpValidate:           "validate pattern sequence",
	OpDisplayMode:        "display mode",
	OpPatternDisplayMode: "pattern display mode",
	OpPatternTriggerMode: "pattern trigger mode",
	OpSequenceRunState:   "pattern sequence run state",
	OpPatternPeriod:      "pattern period",
	OpConfigureSequence:  "configure pattern sequence",
	OpMailboxAddress:     "mailbox address",
	OpMailboxControl:     "mailbox control",
	OpMailboxData:        "mailbox data",
	OpFlashImage:         "flash image",
	OpNumImagesInFlash:   "number of images in flash",
	OpFirmwareTag:        "firmware tag",
	OpPowerMode:          "power mode",
	OpVersion:            "version",
	OpLEDCurrent:         "LED current",
	OpTestPattern:        "test pattern",
}

// OpcodeName returns a short description of a known opcode
func OpcodeName(op protocol.Opcode) string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return op.String()
}

// Mailbox targets
const (
	MailboxImageLUT   uint8 = 1
	MailboxPatternLUT uint8 = 2
)

// MaxMailboxAddress is the highest write cursor offset accepted by the controller
const MaxMailboxAddress = 127
