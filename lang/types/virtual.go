package types

import "strings"

// VirtualKind distinguishes a class from an interface. Both share the
// same layout/dispatch machinery (§3 "virtual"); only classes may carry
// non-virtual data members and only interfaces may be implemented without
// a base-class relationship.
type VirtualKind int

const (
	KindClass VirtualKind = iota
	KindInterface
)

func (k VirtualKind) String() string {
	if k == KindInterface {
		return "iface"
	}
	return "class"
}

// Virtual is the shared representation for class and interface types: a
// name, zero or more supers, a member list, and the memoised products of
// inheritance flattening (virtual member order, vtable layout, and the
// per-ancestor metadata objects emitted for it) (§3, §6.5, C7).
type Virtual struct {
	Kind      VirtualKind
	Name      string
	Namespace string
	Supers    []*Virtual
	Decl      any // *ast.ClassDecl or *ast.InterfaceDecl

	members    []*Member
	memberByID map[string]*Member

	virtualMembersCache []MemberLocator

	// LLIRType is the backend struct type for instances of this type
	// (a vtable-pointer slot, embedded super subobjects, then data
	// members), cached by codegen.
	LLIRType any
	// MetaLLIRType is the backend struct type for this type's own
	// metadata object (a struct whose only field is the vtable array),
	// cached by codegen.
	MetaLLIRType any
	// MetadataObjects maps an ancestor (including itself) to the global
	// backing the metadata object built when instances of this type
	// present themselves as that ancestor (C7's "metadata object indexed
	// by presenting-as ancestor").
	MetadataObjects map[*Virtual]any
	// Thunks maps (target, presenting-as) pairs, keyed by the target
	// member's name and the presenting ancestor, to the this-adjusting
	// thunk function built for multiple-inheritance dispatch (C7).
	Thunks map[thunkKey]any
}

type thunkKey struct {
	Member      string
	PresentedAs *Virtual
}

// NewVirtual creates an (initially member-less, super-less) class or
// interface type.
func NewVirtual(kind VirtualKind, namespace, name string, decl any) *Virtual {
	return &Virtual{
		Kind: kind, Name: name, Namespace: namespace, Decl: decl,
		memberByID:      map[string]*Member{},
		MetadataObjects: map[*Virtual]any{},
		Thunks:          map[thunkKey]any{},
	}
}

func (v *Virtual) AddMember(m *Member) {
	v.members = append(v.members, m)
	v.memberByID[m.Name] = m
	v.virtualMembersCache = nil
}

// UpsertMember adds m, or replaces the existing member of the same name
// in place, preserving its original slot (and hence its vtable index, if
// it has one). See Struct.UpsertMember for why this matters to the
// fixed-point prototype pass.
func (v *Virtual) UpsertMember(m *Member) {
	if _, ok := v.memberByID[m.Name]; ok {
		for i, old := range v.members {
			if old.Name == m.Name {
				v.members[i] = m
				break
			}
		}
	} else {
		v.members = append(v.members, m)
	}
	v.memberByID[m.Name] = m
	v.virtualMembersCache = nil
}

// SetSupers replaces v's super list, invalidating the memoised virtual
// member flattening. Returns whether the list actually changed, so
// callers can report it as a fixed-point-pass change count.
func (v *Virtual) SetSupers(supers []*Virtual) bool {
	if len(supers) == len(v.Supers) {
		same := true
		for i := range supers {
			if supers[i] != v.Supers[i] {
				same = false
				break
			}
		}
		if same {
			return false
		}
	}
	v.Supers = supers
	v.virtualMembersCache = nil
	return true
}

func (v *Virtual) Members() []*Member         { return v.members }
func (v *Virtual) Member(name string) *Member { return v.memberByID[name] }

// FindMember searches v's own members first, then its supers
// depth-first, returning both the member and the ancestor (possibly v
// itself) whose layout actually carries it. Unlike Member, this follows
// the inherited-field embedding codegen's virtualLayout builds, so a
// member declared on a base class is still reachable through a
// derived-class handle.
func (v *Virtual) FindMember(name string) (*Member, *Virtual) {
	if m, ok := v.memberByID[name]; ok {
		return m, v
	}
	for _, s := range v.Supers {
		if m, owner := s.FindMember(name); m != nil {
			return m, owner
		}
	}
	return nil, nil
}

// GetVirtualMembers returns the flattened, ordered list of virtual
// methods that a metadata object for v must carry a vtable slot for:
// every distinct virtual method inherited from its supers, in the order
// each is first introduced (depth-first across Supers), with any
// `override` declared directly on v replacing its inherited slot in
// place rather than appending a new one, followed by any wholly new
// `virtual` methods v itself introduces.
func (v *Virtual) GetVirtualMembers() []MemberLocator {
	if v.virtualMembersCache != nil {
		return v.virtualMembersCache
	}
	var result []MemberLocator
	index := map[string]int{}
	for _, s := range v.Supers {
		for _, loc := range s.GetVirtualMembers() {
			if i, ok := index[loc.Member.Name]; ok {
				result[i] = loc
				continue
			}
			index[loc.Member.Name] = len(result)
			result = append(result, loc)
		}
	}
	for _, m := range v.members {
		if !m.IsVirtual() && !m.IsOverride() {
			continue
		}
		loc := MemberLocator{Member: m, Residence: v}
		if i, ok := index[m.Name]; ok {
			result[i] = loc
			continue
		}
		index[m.Name] = len(result)
		result = append(result, loc)
	}
	v.virtualMembersCache = result
	return result
}

// IsSubtypeOf reports whether v is, transitively, the same type as or a
// descendant of base.
func (v *Virtual) IsSubtypeOf(base *Virtual) bool {
	return handleAssignable(base, v)
}

func (v *Virtual) FQN() string {
	var b strings.Builder
	if v.Namespace != "" {
		b.WriteString(v.Namespace)
		b.WriteByte('.')
	}
	b.WriteString(v.Kind.String())
	b.WriteByte('(')
	b.WriteString(v.Name)
	for _, s := range v.Supers {
		b.WriteByte(':')
		b.WriteString(s.FQN())
	}
	b.WriteByte(')')
	if len(v.members) > 0 {
		b.WriteByte('{')
		for i, m := range v.members {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(m.Name)
			b.WriteByte(':')
			b.WriteString(m.Type.FQN())
		}
		b.WriteByte('}')
	}
	return b.String()
}

func (v *Virtual) String() string { return v.FQN() }

func (v *Virtual) IsValid() bool {
	for _, s := range v.Supers {
		if !s.IsValid() {
			return false
		}
	}
	for _, m := range v.members {
		if !m.Type.IsValid() {
			return false
		}
	}
	return true
}
