package executor

// Result is the outcome of one statement: a status message for DDL/DML or a
// result set for SELECT.
type Result struct {
	Message   string     `json:"message,omitempty"`
	ResultSet *ResultSet `json:"result_set,omitempty"`
}

// ResultSet is what a manager returns for SELECT.
type ResultSet struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
