package program

// Environment holds the current value of every parameter while the
// dynamic tree is traversed. It starts out populated with each
// parameter's registered default and is mutated only by Set (directly,
// or through the Assign nodes Traverse applies once its walk is done),
// never while Choose/When branches are being selected.
type Environment struct {
	values map[ParameterID]int64
}

// NewEnvironment builds an Environment seeded with every parameter's
// default value from ctx.
func NewEnvironment(ctx *ProgramContext) *Environment {
	env := &Environment{values: make(map[ParameterID]int64, len(ctx.parameters))}
	for id, p := range ctx.parameters {
		env.values[id] = p.Default
	}
	return env
}

// Get returns id's current value, or 0 if id is not present.
func (e *Environment) Get(id ParameterID) int64 {
	return e.values[id]
}

// Set overwrites id's current value.
func (e *Environment) Set(id ParameterID, value int64) {
	e.values[id] = value
}

// Node is one entry in the dynamic configuration tree. Exactly one of
// its variant fields is populated; Choose/Block additionally carry
// Children describing what to traverse next.
type Node struct {
	Choose          *ChooseNode
	ParameterBlock  *ParameterBlockNode
	ParameterRefRef *ParameterRefRefNode
	Assign          *AssignNode
}

// ChooseNode reads Ref's current value and descends into whichever
// Branch's Test matches it.
type ChooseNode struct {
	Ref      ParameterID
	Branches []WhenBranch
}

// WhenBranch is one arm of a ChooseNode.
type WhenBranch struct {
	Test int64
	Body []Node
}

// ParameterBlockNode is a plain sequential grouping of child nodes,
// always traversed in full.
type ParameterBlockNode struct {
	Children []Node
}

// ParameterRefRefNode marks a parameter as active: reachable under the
// current configuration, and therefore due to be written into the
// device image.
type ParameterRefRefNode struct {
	Ref ParameterID
}

// AssignNode copies Source's current value (or, if Source is nil,
// Literal) into Target. Collected during traversal and applied only
// after the walk completes — see Traverse.
type AssignNode struct {
	Target  ParameterID
	Source  *ParameterID
	Literal int64
}

// Traverse walks tree against env, returning every ParameterID reached
// by an active ParameterRefRefNode. Every Assign reached along the
// active path is collected during the walk and applied to env only
// after traversal completes, so no branch decision within this call
// can observe an Assign this same call also made — matching spec §9's
// guidance to decouple Assign's effect from traversal order.
func Traverse(nodes []Node, env *Environment) []ParameterID {
	var active []ParameterID
	var pending []AssignNode
	walk(nodes, env, &active, &pending)
	for _, a := range pending {
		apply(a, env)
	}
	return active
}

func walk(nodes []Node, env *Environment, active *[]ParameterID, pending *[]AssignNode) {
	for _, n := range nodes {
		switch {
		case n.Choose != nil:
			current := env.Get(n.Choose.Ref)
			for _, branch := range n.Choose.Branches {
				if branch.Test == current {
					walk(branch.Body, env, active, pending)
					break
				}
			}
		case n.ParameterBlock != nil:
			walk(n.ParameterBlock.Children, env, active, pending)
		case n.ParameterRefRef != nil:
			*active = append(*active, n.ParameterRefRef.Ref)
		case n.Assign != nil:
			*pending = append(*pending, *n.Assign)
		}
	}
}

func apply(a AssignNode, env *Environment) {
	if a.Source != nil {
		env.Set(a.Target, env.Get(*a.Source))
		return
	}
	env.Set(a.Target, a.Literal)
}
