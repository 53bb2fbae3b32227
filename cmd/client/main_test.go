package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Chinwer/ThssDB/internal/sql/executor"
)

func TestStatementComplete(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"USE d;", true},
		{"USE d;  ", true},
		{"SELECT a\nFROM t", false},
		{"INSERT INTO t VALUES ('a;'", false},
		{"INSERT INTO t VALUES ('a;');", true},
		{"INSERT INTO t VALUES ('it''s');", true},
		{"USE d; -- done", true},
		{"USE d -- later;", false},
		{"USE d -- later;\n;", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, statementComplete(c.in), c.in)
	}
}

func TestCompactOneLine(t *testing.T) {
	assert.Equal(t, "SELECT a FROM t;", compactOneLine("SELECT a\n\tFROM   t;\n"))
}

func TestPrintResult(t *testing.T) {
	var out bytes.Buffer
	printResult(&out, &executor.Result{Message: "Inserted 2 rows."})
	printResult(&out, &executor.Result{ResultSet: &executor.ResultSet{
		Columns: []string{"id", "name"},
		Rows:    [][]any{{1, "ann"}, {22, nil}},
	}})

	assert.Equal(t, "Inserted 2 rows.\n"+
		"id | name\n"+
		"---+-----\n"+
		"1  | ann \n"+
		"22 | NULL\n"+
		"(2 rows)\n", out.String())
}
