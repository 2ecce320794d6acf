package value

type CompletionKind uint8

const (
	CompletionNormal CompletionKind = iota
	CompletionBreak
	CompletionContinue
	CompletionReturn
	CompletionThrow
)

var completionKindNames = [...]string{
	CompletionNormal:   "normal",
	CompletionBreak:    "break",
	CompletionContinue: "continue",
	CompletionReturn:   "return",
	CompletionThrow:    "throw",
}

func (k CompletionKind) String() string {
	if int(k) < len(completionKindNames) {
		return completionKindNames[k]
	}
	return "unknown"
}

// Completion records how a statement finished. Value may be nil for an
// empty completion. Err carries the Go error behind a throw completion.
type Completion struct {
	Kind   CompletionKind
	Value  Value
	Target String
	Err    error
}

func (*Completion) Type() Type { return TypeCompletion }

func NormalCompletion(v Value) *Completion {
	return &Completion{Kind: CompletionNormal, Value: v}
}

func ThrowCompletion(err error) *Completion {
	return &Completion{Kind: CompletionThrow, Value: NewString(err.Error()), Err: err}
}

func (c *Completion) IsAbrupt() bool {
	return c.Kind != CompletionNormal
}
