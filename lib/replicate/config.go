package replicate

// UnknownOpcodePolicy decides what the applier does with an instruction
// it can parse but has no mapping for.
type UnknownOpcodePolicy int

const (
	// FailOnUnknown aborts the apply. This is the default.
	FailOnUnknown UnknownOpcodePolicy = iota
	// SkipUnknown drops the instruction and continues.
	SkipUnknown
)

// CascadePolicy toggles the target store's cascade engine for the
// duration of an apply.
type CascadePolicy int

const (
	// CascadeEnabled re-derives the implicit strong-ownership deletions.
	// This is the default.
	CascadeEnabled CascadePolicy = iota
	// CascadeDisabled suppresses cascade. Only legal while the schema
	// carries no strong link columns; Apply refuses it otherwise.
	CascadeDisabled
)

// ApplyMode selects how accessor layers are informed during an apply.
type ApplyMode int

const (
	// ModeNormal delivers every change notification to the group's
	// observer so surviving accessor handles can be rebased.
	ModeNormal ApplyMode = iota
	// ModeNonatomicRebuild suppresses the attachment-discipline
	// signals; the host rebuilds its accessors from scratch afterwards.
	ModeNonatomicRebuild
)

// Config collects the applier options. The zero value is the default
// configuration: fail on unknown instructions, cascade enabled, normal
// apply mode.
type Config struct {
	UnknownOpcode UnknownOpcodePolicy
	Cascade       CascadePolicy
	Mode          ApplyMode
}
