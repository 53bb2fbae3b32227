package syntax

// ArithToken is the operator of a binary expression node.
type ArithToken uint8

const (
	ArithNone ArithToken = iota
	ArithAdd
	ArithSub
	ArithMul
	ArithDiv
)

func (t ArithToken) String() string {
	switch t {
	case ArithAdd:
		return "+"
	case ArithSub:
		return "-"
	case ArithMul:
		return "*"
	case ArithDiv:
		return "/"
	default:
		return "?"
	}
}

// CompareToken is a relational comparator token.
type CompareToken uint8

const (
	CompareNone CompareToken = iota
	CompareEQ
	CompareNE
	CompareGT
	CompareGE
	CompareLE
	CompareLT
)

func (t CompareToken) String() string {
	switch t {
	case CompareEQ:
		return "="
	case CompareNE:
		return "<>"
	case CompareGT:
		return ">"
	case CompareGE:
		return ">="
	case CompareLE:
		return "<="
	case CompareLT:
		return "<"
	default:
		return "?"
	}
}

// LogicToken joins two multiple_condition nodes.
type LogicToken uint8

const (
	LogicNone LogicToken = iota
	LogicAnd
	LogicOr
)

func (t LogicToken) String() string {
	switch t {
	case LogicAnd:
		return "AND"
	case LogicOr:
		return "OR"
	default:
		return "?"
	}
}

type LiteralKind uint8

const (
	LiteralNumber LiteralKind = iota + 1
	LiteralString
	LiteralNull
)

type TypeKind uint8

const (
	TypeInt TypeKind = iota + 1
	TypeLong
	TypeFloat
	TypeDouble
	TypeString
)

func (k TypeKind) String() string {
	switch k {
	case TypeInt:
		return "INT"
	case TypeLong:
		return "LONG"
	case TypeFloat:
		return "FLOAT"
	case TypeDouble:
		return "DOUBLE"
	case TypeString:
		return "STRING"
	default:
		return "?"
	}
}

// ColumnConstraint is a per-column constraint keyword sequence.
type ColumnConstraint uint8

const (
	ConstraintPrimaryKey ColumnConstraint = iota + 1
	ConstraintNotNull
)
