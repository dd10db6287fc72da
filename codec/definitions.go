package codec

// Serialized type codes.
const (
	typeUInt16    = 1
	typeUInt32    = 2
	typeAmount    = 6
	typeBlob      = 7
	typeAccountID = 8
	typeSTObject  = 14
	typeSTArray   = 15
)

const (
	objectEndMarker byte = 0xE1
	arrayEndMarker  byte = 0xF1
)

type fieldDef struct {
	Name      string
	TypeCode  int
	FieldCode int
	// Signing is false for fields left out of the signing digest.
	Signing bool
}

// Fields understood by the encoder, including the Hooks amendment fields
// (Import, Blob, OperationLimit) used by burn-to-mint.
var fields = map[string]fieldDef{
	"TransactionType":    {"TransactionType", typeUInt16, 2, true},
	"SignerWeight":       {"SignerWeight", typeUInt16, 3, true},
	"NetworkID":          {"NetworkID", typeUInt32, 1, true},
	"Flags":              {"Flags", typeUInt32, 2, true},
	"SourceTag":          {"SourceTag", typeUInt32, 3, true},
	"Sequence":           {"Sequence", typeUInt32, 4, true},
	"DestinationTag":     {"DestinationTag", typeUInt32, 14, true},
	"LastLedgerSequence": {"LastLedgerSequence", typeUInt32, 27, true},
	"OperationLimit":     {"OperationLimit", typeUInt32, 29, true},
	"SignerQuorum":       {"SignerQuorum", typeUInt32, 35, true},
	"Amount":             {"Amount", typeAmount, 1, true},
	"Fee":                {"Fee", typeAmount, 8, true},
	"SigningPubKey":      {"SigningPubKey", typeBlob, 3, true},
	"TxnSignature":       {"TxnSignature", typeBlob, 4, false},
	"Blob":               {"Blob", typeBlob, 26, true},
	"Account":            {"Account", typeAccountID, 1, true},
	"Destination":        {"Destination", typeAccountID, 3, true},
	"SignerEntry":        {"SignerEntry", typeSTObject, 11, true},
	"SignerEntries":      {"SignerEntries", typeSTArray, 4, true},
}

// TransactionTypes maps transaction type names to their UInt16 codes.
var TransactionTypes = map[string]uint16{
	"Payment":       0,
	"AccountSet":    3,
	"SignerListSet": 12,
	"Import":        97,
}

// Hash prefixes, see rippled HashPrefix.h.
var (
	TransactionSigPrefix = []byte{0x53, 0x54, 0x58, 0x00} // "STX\0"
	TransactionIDPrefix  = []byte{0x54, 0x58, 0x4E, 0x00} // "TXN\0"
)
