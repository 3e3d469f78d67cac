package types

// Namespace is the type given to a namespace declaration itself (so a
// qualified-name resolution step can carry "this name denotes a
// namespace" as a type like any other, rather than as a special case)
// (§3 "namespace").
type Namespace struct {
	FullName string
}

func NewNamespace(fqn string) *Namespace { return &Namespace{FullName: fqn} }

func (n *Namespace) FQN() string   { return n.FullName }
func (n *Namespace) String() string { return n.FullName }
func (n *Namespace) IsValid() bool  { return true }
