package types

// Primitive is a built-in numeric or boolean scalar type. Primitives are
// the leaves of the type universe: there are finitely many of them, they
// carry no members, and they are always mutually assignable (§4.2,
// "primitive <- primitive: always true").
type Primitive struct {
	Name    string
	Bits    int
	Signed  bool
	Float   bool
	Bool    bool
	// Score orders primitives for numeric-literal specialization (§4.2):
	// wider integers outscore narrower ones, and any float outscores any
	// integer of the same "intent". Ties are broken in favor of the
	// left-hand operand by MostSpecialized, never by Score itself.
	Score int
}

func (p *Primitive) String() string { return p.Name }
func (p *Primitive) FQN() string    { return p.Name }
func (p *Primitive) IsValid() bool  { return true }

// The closed set of primitive types, keyed by spelling. Scores leave gaps
// so a future primitive can be slotted in without renumbering everything.
var primitiveTable = []*Primitive{
	{Name: "i8", Bits: 8, Signed: true, Score: 10},
	{Name: "u8", Bits: 8, Signed: false, Score: 15},
	{Name: "i16", Bits: 16, Signed: true, Score: 20},
	{Name: "u16", Bits: 16, Signed: false, Score: 25},
	{Name: "i32", Bits: 32, Signed: true, Score: 30},
	{Name: "u32", Bits: 32, Signed: false, Score: 35},
	{Name: "i64", Bits: 64, Signed: true, Score: 40},
	{Name: "u64", Bits: 64, Signed: false, Score: 45},
	{Name: "i128", Bits: 128, Signed: true, Score: 50},
	{Name: "u128", Bits: 128, Signed: false, Score: 55},
	{Name: "isize", Bits: 64, Signed: true, Score: 42},
	{Name: "usize", Bits: 64, Signed: false, Score: 47},
	{Name: "f16", Bits: 16, Float: true, Score: 110},
	{Name: "f32", Bits: 32, Float: true, Score: 120},
	{Name: "f64", Bits: 64, Float: true, Score: 130},
	{Name: "f80", Bits: 80, Float: true, Score: 140},
	{Name: "f128", Bits: 128, Float: true, Score: 150},
	{Name: "bool", Bits: 1, Bool: true, Score: 1},
}

var primitivesByName map[string]*Primitive

func init() {
	primitivesByName = make(map[string]*Primitive, len(primitiveTable))
	for _, p := range primitiveTable {
		primitivesByName[p.Name] = p
	}
}

// LookupPrimitive returns the shared Primitive instance for name, or nil
// if name does not name a primitive. Lookups always return the same
// pointer, so Primitive equality can use plain pointer comparison as well
// as FQN comparison.
func LookupPrimitive(name string) *Primitive {
	return primitivesByName[name]
}

// Coercion describes how to convert a value of one primitive type to
// another, per §4.2's "int widen/narrow, int<->float" coercion matrix.
type Coercion int

const (
	NoCoercion Coercion = iota
	SignExtend
	ZeroExtend
	Truncate
	IntToFloat
	FloatToInt
	FloatExtend
	FloatTruncate
)

// CoercionFor reports how to convert a value of type from into a value of
// type to, assuming both are primitives and the conversion has already
// been deemed legal by the caller (IsAssignableFrom, or an explicit cast).
func CoercionFor(to, from *Primitive) Coercion {
	switch {
	case to.Bits == from.Bits && to.Float == from.Float && to.Signed == from.Signed:
		return NoCoercion
	case to.Float && from.Float:
		if to.Bits > from.Bits {
			return FloatExtend
		}
		return FloatTruncate
	case to.Float && !from.Float:
		return IntToFloat
	case !to.Float && from.Float:
		return FloatToInt
	case to.Bits > from.Bits:
		if from.Signed {
			return SignExtend
		}
		return ZeroExtend
	case to.Bits < from.Bits:
		return Truncate
	default:
		return NoCoercion
	}
}
