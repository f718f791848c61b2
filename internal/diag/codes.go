package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Value reflection (inlining the runtime environment)
	RefInfo             Code = 1000
	RefNoExternName     Code = 1001
	RefFieldDropped     Code = 1002
	RefBindingDropped   Code = 1003
	RefUnsupportedValue Code = 1004

	// Reduction
	RedInfo           Code = 2000
	RedMissingField   Code = 2001
	RedBadApplication Code = 2002
	RedChannelNonUnit Code = 2003

	// Code generation
	GenInfo           Code = 3000
	GenUnresolvedType Code = 3001
	GenUnreducedTerm  Code = 3002
	GenOpenForm       Code = 3003
	GenStringOperand  Code = 3004

	// I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002

	// Project / manifest
	ProjInfo            Code = 5000
	ProjMissingManifest Code = 5001
	ProjBadManifest     Code = 5002
	ProjDuplicateTarget Code = 5003
	ProjMissingEntry    Code = 5004
	ProjBadSampleRate   Code = 5005

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:         "Unknown error",
	RefInfo:             "Reflection information",
	RefNoExternName:     "Foreign function has no external name",
	RefFieldDropped:     "Record field dropped from inlined environment",
	RefBindingDropped:   "Binding dropped from inlined environment",
	RefUnsupportedValue: "Runtime value cannot be reflected into a term",
	RedInfo:             "Reduction information",
	RedMissingField:     "Record has no such field",
	RedBadApplication:   "Application callee cannot be applied",
	RedChannelNonUnit:   "Channel payload type must be unit",
	GenInfo:             "Code generation information",
	GenUnresolvedType:   "Unresolved type at code generation",
	GenUnreducedTerm:    "Unreduced term reached code generation",
	GenOpenForm:         "Module-opening form reached code generation",
	GenStringOperand:    "String operand is not representable in the target",
	IOLoadFileError:     "I/O load file error",
	IOWriteFileError:    "I/O write file error",
	ProjInfo:            "Project information",
	ProjMissingManifest: "Project manifest not found",
	ProjBadManifest:     "Malformed project manifest",
	ProjDuplicateTarget: "Duplicate target in project manifest",
	ProjMissingEntry:    "Target entry name is empty",
	ProjBadSampleRate:   "Sample rate must be positive",
	ObsInfo:             "Observability information",
	ObsTimings:          "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("REF%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("RED%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
