package symtab

import "strings"

// Scope is one level of the lexical scope stack: a namespace, a
// struct/class/interface body, or a function body. Its Name is the bare
// name introduced at this level ("" for the file-level/global scope),
// and FQN joins every enclosing scope's Name with '.' (§4.2).
type Scope struct {
	Name   string
	Parent *Scope
}

// FQN returns the dot-joined fully qualified name of this scope itself.
func (s *Scope) FQN() string {
	if s == nil || s.Name == "" {
		if s == nil || s.Parent == nil {
			return ""
		}
		return s.Parent.FQN()
	}
	parent := s.Parent.FQN()
	if parent == "" {
		return s.Name
	}
	return parent + "." + s.Name
}

// Qualify joins name onto this scope's FQN, per the table in §4.2.
func (s *Scope) Qualify(name string) string {
	fqn := s.FQN()
	if fqn == "" {
		return name
	}
	return fqn + "." + name
}

// stack is the push/pop scope stack a walker threads through a single
// pass over the tree.
type stack struct {
	top *Scope
}

func (s *stack) push(name string) { s.top = &Scope{Name: name, Parent: s.top} }
func (s *stack) pop()             { s.top = s.top.Parent }
func (s *stack) current() *Scope  { return s.top }

// ScopeChain rebuilds the nested *Scope a dotted FQN prefix denotes,
// e.g. "a.b.c" becomes the scope reached by entering "a", then "b", then
// "c", in order. lang/codegen uses this to recover the lexical scope a
// declaration was resolved under during lang/sema (which threads a live
// scope stack) from nothing but the declaration's own FQN, since codegen
// runs as a second, independent tree walk after the scope stack that
// produced that FQN has already been popped back to empty.
func ScopeChain(fqn string) *Scope {
	if fqn == "" {
		return nil
	}
	var s *Scope
	for _, part := range strings.Split(fqn, ".") {
		s = &Scope{Name: part, Parent: s}
	}
	return s
}

// splitOverload splits a symbol name of the form "name`N" (an
// overload-renamed declaration, §4.4.1) into its base name and whether a
// backtick suffix was present.
func splitOverload(name string) (base string, overloaded bool) {
	i := strings.IndexByte(name, '`')
	if i < 0 {
		return name, false
	}
	return name[:i], true
}
