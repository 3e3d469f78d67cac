package bundle

import (
	"bytes"
	"fmt"

	"github.com/emberlang/ember/lang/codegen"
	"github.com/emberlang/ember/lang/session"
	"github.com/emberlang/ember/lang/types"
)

// buildMetadata renders sess.Table as the §6.3 textual metadata format:
// a CATA_META header, one null-delimited symbol record per defined FQN
// (in sorted order, for a deterministic byte-for-byte bundle across
// identical compilations), and a trailing CATA_END line.
func buildMetadata(sess *session.Session) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "CATA_META\n%s\n%s\n", metadataVersion, sess.GlobalNamespace)

	for _, fqn := range sess.Table.SortedFQNs() {
		sym, ok := sess.Table.Lookup(fqn)
		if !ok {
			continue
		}
		buf.WriteString(sym.FQN)
		buf.WriteByte(0)
		if err := encodeType(&buf, sym.Type); err != nil {
			return nil, fmt.Errorf("symbol %q: %w", sym.FQN, err)
		}
		buf.WriteByte('\n')
	}

	buf.WriteString("CATA_END\n")
	return buf.Bytes(), nil
}

// metadataVersion is the bundle metadata format's own version string,
// independent of the emberc binary version.
const metadataVersion = "1"

// Type-serialisation discriminator bytes (§6.3).
const (
	discPrimitive    = 'p'
	discUndefined    = 'u'
	discVoid         = 'v'
	discFunction     = 'f'
	discNamespace    = 'n'
	discCustom       = 'c'
	discObjectHandle = 'o'
)

// encodeType writes t's single-byte discriminator followed by its
// variant-specific fields, per §6.3. A nil type or a type variant with
// no encoding (§7's one fatal condition, "serialisation of an
// un-typeable symbol") is reported as an error rather than silently
// emitting a malformed record; an unresolved (undefined) type is written
// as the 'u' discriminator.
func encodeType(buf *bytes.Buffer, t types.Type) error {
	switch tt := t.(type) {
	case nil:
		return fmt.Errorf("cannot serialise a nil type")
	case *types.Primitive:
		buf.WriteByte(discPrimitive)
		writeCString(buf, tt.Name)
	case *types.Function:
		buf.WriteByte(discFunction)
		result := tt.Result
		if result == nil {
			result = types.Void
		}
		if err := encodeType(buf, result); err != nil {
			return err
		}
		writeUvarint(buf, uint64(len(tt.Params)))
		for _, p := range tt.Params {
			if err := encodeType(buf, p); err != nil {
				return err
			}
		}
		if tt.MethodOf != nil {
			buf.WriteByte(1)
			writeCString(buf, tt.MethodOf.FQN())
		} else {
			buf.WriteByte(0)
		}
	case *types.Namespace:
		buf.WriteByte(discNamespace)
		writeCString(buf, tt.FullName)
	case *types.Struct:
		buf.WriteByte(discCustom)
		if err := encodeCustom(buf, tt, nil); err != nil {
			return err
		}
	case *types.Virtual:
		buf.WriteByte(discCustom)
		if err := encodeCustom(buf, tt, tt.Supers); err != nil {
			return err
		}
	case *types.ObjectHandle:
		buf.WriteByte(discObjectHandle)
		name := "<undefined>"
		if tt.Referent != nil {
			name = tt.Referent.FQN()
		}
		writeCString(buf, name)
	default:
		if !t.IsValid() {
			buf.WriteByte(discUndefined)
			return nil
		}
		if types.Equal(t, types.Void) {
			buf.WriteByte(discVoid)
			return nil
		}
		return fmt.Errorf("unserialisable type %T", t)
	}
	return nil
}

// encodeCustom writes a custom type's name, its synthesized init
// function's name, its member list, and — for a Virtual — its super
// list as weak type references (by FQN, not a full recursive encoding,
// matching an ObjectTypeRef's own by-name rehydration model).
func encodeCustom(buf *bytes.Buffer, c types.Custom, supers []*types.Virtual) error {
	writeCString(buf, c.FQN())
	writeCString(buf, fmt.Sprintf("%s.%s", codegen.InitFuncPrefix, shortName(c)))

	members := c.Members()
	writeUvarint(buf, uint64(len(members)))
	for _, m := range members {
		writeCString(buf, m.Name)
		if err := encodeType(buf, m.Type); err != nil {
			return fmt.Errorf("member %q: %w", m.Name, err)
		}
		buf.WriteByte(byte(len(m.Classifiers)))
		for _, c := range m.Classifiers {
			buf.WriteByte(byte(c))
		}
	}

	if supers != nil {
		writeUvarint(buf, uint64(len(supers)))
		for _, s := range supers {
			writeCString(buf, s.FQN())
		}
	}
	return nil
}

// shortName returns c's bare declared name, matching the name
// lang/codegen.InitFuncPrefix is joined with for the synthesized
// __CATA_INIT function (lang/codegen's ownerFQNPart: the init routine is
// named off the type's own name, not its full namespace-qualified FQN).
func shortName(c types.Custom) string {
	switch t := c.(type) {
	case *types.Struct:
		return t.Name
	case *types.Virtual:
		return t.Name
	default:
		return "anon"
	}
}

func writeCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var tmp [10]byte
	n := 0
	for v >= 0x80 {
		tmp[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	tmp[n] = byte(v)
	buf.Write(tmp[:n+1])
}
