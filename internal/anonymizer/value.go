package anonymizer

// Kind discriminates the two leaf shapes Flatten can produce. Nested
// mappings never reach a leaf; Flatten recurses into them.
type Kind int

const (
	KindScalar Kind = iota
	KindSequence
)

// Value is one flattened leaf: a scalar (string, number, bool, nil) or a
// sequence of scalars. Keeping the shape explicit lets the classifier and
// hasher switch exhaustively instead of type-asserting at every use.
type Value struct {
	kind   Kind
	scalar interface{}
	seq    []interface{}
}

func Scalar(v interface{}) Value {
	return Value{kind: KindScalar, scalar: v}
}

func Sequence(v []interface{}) Value {
	return Value{kind: KindSequence, seq: v}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) Scalar() interface{} {
	return v.scalar
}

func (v Value) Sequence() []interface{} {
	return v.seq
}

// Raw returns the value in its original record representation, for
// passthrough and unflattening.
func (v Value) Raw() interface{} {
	if v.kind == KindSequence {
		return v.seq
	}
	return v.scalar
}
