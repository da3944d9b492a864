package codec

// Instruction identifies a gateway entry point routed by discriminator.
type Instruction uint8

const (
	InstructionUnknown Instruction = iota
	InstructionDepositAndCall
	InstructionDepositTokenAndCall
	InstructionCall
)

func (i Instruction) String() string {
	switch i {
	case InstructionDepositAndCall:
		return "deposit_and_call"
	case InstructionDepositTokenAndCall:
		return "deposit_spl_token_and_call"
	case InstructionCall:
		return "call"
	default:
		return "unknown"
	}
}

// Discriminators computed once at init. Tests pin the exact byte values so a
// drifting hash input cannot silently reroute calls.
var (
	DiscriminatorDepositAndCall      = Discriminator("deposit_and_call")
	DiscriminatorDepositTokenAndCall = Discriminator("deposit_spl_token_and_call")
	DiscriminatorCall                = Discriminator("call")
)

var dispatchTable = map[[8]byte]Instruction{
	DiscriminatorDepositAndCall:      InstructionDepositAndCall,
	DiscriminatorDepositTokenAndCall: InstructionDepositTokenAndCall,
	DiscriminatorCall:                InstructionCall,
}

// Route resolves a discriminator to its instruction via the constant lookup
// table. Unknown discriminators return (InstructionUnknown, false).
func Route(discriminator [8]byte) (Instruction, bool) {
	instruction, ok := dispatchTable[discriminator]
	return instruction, ok
}
