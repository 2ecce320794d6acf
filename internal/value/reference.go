package value

// Reference is the Reference specification type: the result of resolving a
// name or a property access, consumed by GetValue and PutValue.
type Reference struct {
	Base   Value
	Name   String
	Strict bool
}

func (*Reference) Type() Type { return TypeReference }

func NewReference(base Value, name String, strict bool) *Reference {
	return &Reference{Base: base, Name: name, Strict: strict}
}

func (r *Reference) HasPrimitiveBase() bool {
	switch r.Base.Type() {
	case TypeBoolean, TypeString, TypeNumber:
		return true
	default:
		return false
	}
}

func (r *Reference) IsPropertyReference() bool {
	return r.HasPrimitiveBase() || r.Base.Type() == TypeObject
}

func (r *Reference) IsUnresolvable() bool {
	return IsUndefined(r.Base)
}
