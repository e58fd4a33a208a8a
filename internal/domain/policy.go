package domain

// IfExists is the existence policy applied when a write destination exists.
type IfExists string

// Existence policies.
const (
	IfExistsFail    IfExists = "fail"
	IfExistsReplace IfExists = "replace"
	IfExistsAppend  IfExists = "append"
)

// Action is what a write does to its destination before sending rows.
type Action int

// Destination actions. Every (policy, exists) pair maps to exactly one.
const (
	ActionFail Action = iota
	ActionCreate
	ActionRecreate
	ActionReuse
)

func (a Action) String() string {
	switch a {
	case ActionFail:
		return "fail"
	case ActionCreate:
		return "create"
	case ActionRecreate:
		return "recreate"
	case ActionReuse:
		return "reuse"
	}
	return "unknown"
}

// ParseIfExists validates a policy string against the given allowed set.
// An empty string selects IfExistsFail.
func ParseIfExists(s string, allowed ...IfExists) (IfExists, error) {
	if s == "" {
		return IfExistsFail, nil
	}
	if len(allowed) == 0 {
		allowed = []IfExists{IfExistsFail, IfExistsReplace, IfExistsAppend}
	}
	for _, p := range allowed {
		if IfExists(s) == p {
			return p, nil
		}
	}
	return "", ErrValidation(ErrInvalidPolicy, "Invalid if_exists `%s`", s)
}

// Decide returns the destination action for this policy.
func (p IfExists) Decide(exists bool) (Action, error) {
	switch p {
	case IfExistsFail:
		if exists {
			return ActionFail, nil
		}
		return ActionCreate, nil
	case IfExistsReplace:
		if exists {
			return ActionRecreate, nil
		}
		return ActionCreate, nil
	case IfExistsAppend:
		if exists {
			return ActionReuse, nil
		}
		return ActionCreate, nil
	}
	return ActionFail, ErrValidation(ErrInvalidPolicy, "Invalid if_exists `%s`", string(p))
}
