package ast

import (
	"fmt"
	"strings"
)

// QueryTable is one FROM entry: a *SingleTable or a *JoinTable.
type QueryTable interface {
	fmt.Stringer
	// TableNames lists every table the entry reads, in source order.
	TableNames() []string
	queryTable()
}

type SingleTable struct {
	Name string
}

func (*SingleTable) queryTable() {}

func (t *SingleTable) TableNames() []string { return []string{t.Name} }

func (t *SingleTable) String() string { return t.Name }

// JoinTable joins at least two tables on a condition. Names order drives the
// join order downstream.
type JoinTable struct {
	Names []string
	On    Where
}

func (*JoinTable) queryTable() {}

func (t *JoinTable) TableNames() []string {
	out := make([]string, len(t.Names))
	copy(out, t.Names)
	return out
}

func (t *JoinTable) String() string {
	return fmt.Sprintf("%s ON %s", strings.Join(t.Names, " JOIN "), t.On)
}

// Projection is the SELECT column list. The zero value and AllColumns both
// mean "*"; an explicit list is never reported as All.
type Projection struct {
	explicit bool
	names    []string
}

func AllColumns() Projection { return Projection{} }

func Columns(names ...string) Projection {
	cp := make([]string, len(names))
	copy(cp, names)
	return Projection{explicit: true, names: cp}
}

func (p Projection) All() bool { return !p.explicit }

// Names returns the explicit column list, nil for "*".
func (p Projection) Names() []string {
	if !p.explicit {
		return nil
	}
	out := make([]string, len(p.names))
	copy(out, p.names)
	return out
}

func (p Projection) String() string {
	if !p.explicit {
		return "*"
	}
	return strings.Join(p.names, ", ")
}
