package types

import "strings"

// Struct is a value-typed aggregate: a flat list of members with no
// supers and no virtual dispatch (§3 "struct"). Its LLIR layout is just
// its own non-function members, in declaration order.
type Struct struct {
	Name       string
	Namespace  string // enclosing namespace FQN, or "" at the top level
	Decl       any    // *ast.StructDecl, kept as any to avoid an import cycle
	members    []*Member
	memberByID map[string]*Member

	// LLIRType caches the backend struct type once codegen has built it,
	// so repeated member accesses don't re-derive the layout.
	LLIRType any
}

// NewStruct creates an (initially member-less) struct type. UpsertMember
// is used to populate it as the prototype pass walks the declaration body.
func NewStruct(namespace, name string, decl any) *Struct {
	return &Struct{Name: name, Namespace: namespace, Decl: decl, memberByID: map[string]*Member{}}
}

// AddMember appends m to s, indexing it by name for Member lookups.
func (s *Struct) AddMember(m *Member) {
	s.members = append(s.members, m)
	s.memberByID[m.Name] = m
}

// UpsertMember adds m, or replaces the existing member of the same name
// in place, preserving its original slot. Used by the prototype pass so
// re-running it to convergence refines a field's type in place instead
// of accumulating duplicate members.
func (s *Struct) UpsertMember(m *Member) {
	if _, ok := s.memberByID[m.Name]; ok {
		for i, old := range s.members {
			if old.Name == m.Name {
				s.members[i] = m
				break
			}
		}
	} else {
		s.members = append(s.members, m)
	}
	s.memberByID[m.Name] = m
}

func (s *Struct) Members() []*Member         { return s.members }
func (s *Struct) Member(name string) *Member { return s.memberByID[name] }

func (s *Struct) FQN() string {
	var b strings.Builder
	if s.Namespace != "" {
		b.WriteString(s.Namespace)
		b.WriteByte('.')
	}
	b.WriteString("struct(")
	b.WriteString(s.Name)
	b.WriteByte(')')
	if len(s.members) > 0 {
		b.WriteByte('{')
		for i, m := range s.members {
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

func (s *Struct) String() string { return s.FQN() }

func (s *Struct) IsValid() bool {
	for _, m := range s.members {
		if !m.Type.IsValid() {
			return false
		}
	}
	return true
}
