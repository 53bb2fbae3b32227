package parser

import (
	"fmt"
	"strings"

	"github.com/Chinwer/ThssDB/internal/sql/syntax"
)

type parser struct {
	src  []rune
	toks []token
	pos  int
}

// Parse parses a script of one or more statements separated by ';'.
// A trailing ';' is optional; empty statements between separators are skipped.
func Parse(sql string) (*syntax.StmtList, error) {
	if strings.TrimSpace(sql) == "" {
		return nil, fmt.Errorf("parser: empty statement")
	}

	toks, err := tokenize(sql)
	if err != nil {
		return nil, err
	}
	p := &parser{src: []rune(sql), toks: toks}
	return p.parseStmtList()
}

// ----- token helpers -----

func (p *parser) cur() token { return p.toks[p.pos] }

func (p *parser) advance() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) at(kind tokenKind) bool { return p.cur().kind == kind }

func (p *parser) atKeyword(kw string) bool {
	t := p.cur()
	return t.kind == tokKeyword && t.word == kw
}

// acceptKeyword consumes kw if it is next.
func (p *parser) acceptKeyword(kw string) bool {
	if p.atKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) accept(kind tokenKind) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

// span returns the source text from the start of first to the end of last.
func (p *parser) span(first, last token) string {
	return string(p.src[first.start:last.end])
}

func (p *parser) errorf(format string, args ...any) error {
	t := p.cur()
	return &SyntaxError{Line: t.line, Col: t.col, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	if !p.at(kind) {
		return token{}, p.errorf("expected %s, got %s", what, p.cur())
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(kws ...string) error {
	for _, kw := range kws {
		if !p.acceptKeyword(kw) {
			return p.errorf("expected %s, got %s", kw, p.cur())
		}
	}
	return nil
}

// parseIdent reads a database/table/column name as written.
func (p *parser) parseIdent() (string, error) {
	t, err := p.expect(tokIdent, "identifier")
	if err != nil {
		return "", err
	}
	return t.text, nil
}

func (p *parser) parseIdentList() ([]string, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if !p.accept(tokComma) {
			break
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return names, nil
}

// ----- statements -----

func (p *parser) parseStmtList() (*syntax.StmtList, error) {
	list := &syntax.StmtList{}
	for p.accept(tokSemicolon) {
	}
	if p.at(tokEOF) {
		return nil, fmt.Errorf("parser: empty statement")
	}

	for !p.at(tokEOF) {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		list.Stmts = append(list.Stmts, stmt)

		if p.at(tokEOF) {
			break
		}
		if _, err := p.expect(tokSemicolon, "';'"); err != nil {
			return nil, err
		}
		for p.accept(tokSemicolon) {
		}
	}
	return list, nil
}

func (p *parser) parseStmt() (syntax.Stmt, error) {
	switch {
	case p.acceptKeyword("CREATE"):
		switch {
		case p.acceptKeyword("DATABASE"):
			name, err := p.parseIdent()
			if err != nil {
				return nil, fmt.Errorf("invalid CREATE DATABASE syntax: %w", err)
			}
			return &syntax.CreateDatabase{Name: name}, nil
		case p.acceptKeyword("TABLE"):
			return p.parseCreateTable()
		}
		return nil, p.errorf("expected DATABASE or TABLE after CREATE, got %s", p.cur())

	case p.acceptKeyword("DROP"):
		switch {
		case p.acceptKeyword("DATABASE"):
			name, err := p.parseIdent()
			if err != nil {
				return nil, fmt.Errorf("invalid DROP DATABASE syntax: %w", err)
			}
			return &syntax.DropDatabase{Name: name}, nil
		case p.acceptKeyword("TABLE"):
			return p.parseDropTable()
		}
		return nil, p.errorf("expected DATABASE or TABLE after DROP, got %s", p.cur())

	case p.acceptKeyword("USE"):
		name, err := p.parseIdent()
		if err != nil {
			return nil, fmt.Errorf("invalid USE syntax: %w", err)
		}
		return &syntax.UseDatabase{Name: name}, nil

	case p.acceptKeyword("INSERT"):
		return p.parseInsert()
	case p.acceptKeyword("SELECT"):
		return p.parseSelect()
	default:
		return nil, p.errorf("unsupported statement starting with %s", p.cur())
	}
}

func (p *parser) parseCreateTable() (syntax.Stmt, error) {
	// CREATE TABLE users (id INT PRIMARY KEY, name STRING(32) NOT NULL, PRIMARY KEY (id))
	name, err := p.parseIdent()
	if err != nil {
		return nil, fmt.Errorf("invalid CREATE TABLE syntax: %w", err)
	}
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, fmt.Errorf("invalid CREATE TABLE syntax: %w", err)
	}

	stmt := &syntax.CreateTable{Name: name}
	for {
		if p.atKeyword("PRIMARY") {
			if len(stmt.Columns) == 0 {
				return nil, p.errorf("table constraint before any column definition")
			}
			p.advance()
			if err := p.expectKeyword("KEY"); err != nil {
				return nil, err
			}
			cols, err := p.parseIdentList()
			if err != nil {
				return nil, err
			}
			stmt.Constraint = &syntax.TableConstraint{Columns: cols}
			// the table constraint is always the last element
			break
		}

		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)
		if !p.accept(tokComma) {
			break
		}
	}

	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, fmt.Errorf("invalid CREATE TABLE syntax: %w", err)
	}
	return stmt, nil
}

func (p *parser) parseColumnDef() (*syntax.ColumnDef, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, fmt.Errorf("invalid column name: %w", err)
	}
	typ, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}

	def := &syntax.ColumnDef{Name: name, Type: typ}
	for {
		switch {
		case p.acceptKeyword("PRIMARY"):
			if err := p.expectKeyword("KEY"); err != nil {
				return nil, err
			}
			def.Constraints = append(def.Constraints, syntax.ConstraintPrimaryKey)
		case p.acceptKeyword("NOT"):
			if err := p.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			def.Constraints = append(def.Constraints, syntax.ConstraintNotNull)
		default:
			return def, nil
		}
	}
}

func (p *parser) parseTypeName() (syntax.TypeName, error) {
	t := p.cur()
	if t.kind != tokKeyword {
		return syntax.TypeName{}, p.errorf("expected column type, got %s", t)
	}

	var kind syntax.TypeKind
	switch t.word {
	case "INT":
		kind = syntax.TypeInt
	case "LONG":
		kind = syntax.TypeLong
	case "FLOAT":
		kind = syntax.TypeFloat
	case "DOUBLE":
		kind = syntax.TypeDouble
	case "STRING":
		kind = syntax.TypeString
	default:
		return syntax.TypeName{}, p.errorf("unsupported column type %s", t)
	}
	p.advance()

	if kind != syntax.TypeString {
		return syntax.TypeName{Kind: kind}, nil
	}

	if _, err := p.expect(tokLParen, "'(' after STRING"); err != nil {
		return syntax.TypeName{}, err
	}
	width, err := p.expect(tokNumber, "string width")
	if err != nil {
		return syntax.TypeName{}, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return syntax.TypeName{}, err
	}
	return syntax.TypeName{Kind: kind, Width: width.text}, nil
}

func (p *parser) parseDropTable() (syntax.Stmt, error) {
	stmt := &syntax.DropTable{}
	if p.acceptKeyword("IF") {
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, err
		}
		stmt.IfExists = true
	}
	name, err := p.parseIdent()
	if err != nil {
		return nil, fmt.Errorf("invalid DROP TABLE syntax: %w", err)
	}
	stmt.Name = name
	return stmt, nil
}

func (p *parser) parseInsert() (syntax.Stmt, error) {
	// INSERT INTO users [(id, name)] VALUES (1, 'abc'), (2, NULL)
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, fmt.Errorf("invalid INSERT syntax: %w", err)
	}

	stmt := &syntax.Insert{Table: table}
	if p.at(tokLParen) {
		cols, err := p.parseIdentList()
		if err != nil {
			return nil, err
		}
		stmt.Columns = cols
	}

	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, fmt.Errorf("invalid INSERT syntax: %w", err)
	}
	for {
		entry, err := p.parseValueEntry()
		if err != nil {
			return nil, err
		}
		stmt.Rows = append(stmt.Rows, entry)
		if !p.accept(tokComma) {
			break
		}
	}
	return stmt, nil
}

func (p *parser) parseValueEntry() (*syntax.ValueEntry, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, fmt.Errorf("invalid INSERT values syntax: %w", err)
	}
	entry := &syntax.ValueEntry{}
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		entry.Values = append(entry.Values, lit)
		if !p.accept(tokComma) {
			break
		}
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, fmt.Errorf("invalid INSERT values syntax: %w", err)
	}
	return entry, nil
}

func (p *parser) parseLiteral() (*syntax.Literal, error) {
	t := p.cur()
	switch {
	case t.kind == tokNumber:
		p.advance()
		return &syntax.Literal{Kind: syntax.LiteralNumber, Text: t.text}, nil
	case t.kind == tokMinus && p.toks[p.pos+1].kind == tokNumber:
		p.advance()
		num := p.advance()
		return &syntax.Literal{Kind: syntax.LiteralNumber, Text: p.span(t, num)}, nil
	case t.kind == tokString:
		p.advance()
		return &syntax.Literal{Kind: syntax.LiteralString, Text: t.text}, nil
	case t.kind == tokKeyword && t.word == "NULL":
		p.advance()
		return &syntax.Literal{Kind: syntax.LiteralNull, Text: t.text}, nil
	default:
		return nil, p.errorf("unsupported literal %s", t)
	}
}

func (p *parser) parseSelect() (syntax.Stmt, error) {
	stmt := &syntax.Select{}
	if p.acceptKeyword("DISTINCT") {
		stmt.Distinct = true
	} else {
		p.acceptKeyword("ALL")
	}

	for {
		col, err := p.parseResultColumn()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)
		if !p.accept(tokComma) {
			break
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, fmt.Errorf("invalid SELECT syntax: %w", err)
	}
	for {
		tq, err := p.parseTableQuery()
		if err != nil {
			return nil, err
		}
		stmt.From = append(stmt.From, tq)
		if !p.accept(tokComma) {
			break
		}
	}

	if p.acceptKeyword("WHERE") {
		where, err := p.parseMultipleCondition()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}
	return stmt, nil
}

func (p *parser) parseResultColumn() (*syntax.ResultColumn, error) {
	if p.accept(tokStar) {
		return &syntax.ResultColumn{Text: "*"}, nil
	}
	first, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if !p.accept(tokDot) {
		return &syntax.ResultColumn{Text: first}, nil
	}
	if p.accept(tokStar) {
		return &syntax.ResultColumn{Text: first + ".*"}, nil
	}
	second, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	return &syntax.ResultColumn{Text: first + "." + second}, nil
}

func (p *parser) parseTableQuery() (*syntax.TableQuery, error) {
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	tq := &syntax.TableQuery{Tables: []string{name}}
	for p.acceptKeyword("JOIN") {
		tq.Join = true
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		tq.Tables = append(tq.Tables, name)
	}
	if !tq.Join {
		return tq, nil
	}

	if err := p.expectKeyword("ON"); err != nil {
		return nil, err
	}
	on, err := p.parseMultipleCondition()
	if err != nil {
		return nil, err
	}
	tq.On = on
	return tq, nil
}

// ----- conditions -----

// parseMultipleCondition encodes AND binding tighter than OR, both
// left-associative, in the shape of the returned tree.
func (p *parser) parseMultipleCondition() (*syntax.MultipleCondition, error) {
	left, err := p.parseAndCondition()
	if err != nil {
		return nil, err
	}
	for p.acceptKeyword("OR") {
		right, err := p.parseAndCondition()
		if err != nil {
			return nil, err
		}
		left = &syntax.MultipleCondition{Left: left, Right: right, Logic: syntax.LogicOr}
	}
	return left, nil
}

func (p *parser) parseAndCondition() (*syntax.MultipleCondition, error) {
	left, err := p.parseConditionLeaf()
	if err != nil {
		return nil, err
	}
	for p.acceptKeyword("AND") {
		right, err := p.parseConditionLeaf()
		if err != nil {
			return nil, err
		}
		left = &syntax.MultipleCondition{Left: left, Right: right, Logic: syntax.LogicAnd}
	}
	return left, nil
}

func (p *parser) parseConditionLeaf() (*syntax.MultipleCondition, error) {
	left, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	cmp, err := p.parseComparator()
	if err != nil {
		return nil, err
	}
	right, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &syntax.MultipleCondition{
		Cond: &syntax.Condition{Left: left, Right: right, Comparator: cmp},
	}, nil
}

func (p *parser) parseComparator() (syntax.Comparator, error) {
	var tok syntax.CompareToken
	switch p.cur().kind {
	case tokEQ:
		tok = syntax.CompareEQ
	case tokNE:
		tok = syntax.CompareNE
	case tokGT:
		tok = syntax.CompareGT
	case tokGE:
		tok = syntax.CompareGE
	case tokLE:
		tok = syntax.CompareLE
	case tokLT:
		tok = syntax.CompareLT
	default:
		return syntax.Comparator{}, p.errorf("expected comparator, got %s", p.cur())
	}
	p.advance()
	return syntax.Comparator{Token: tok}, nil
}

// ----- expressions -----

func (p *parser) parseExpression() (*syntax.Expression, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		var op syntax.ArithToken
		switch p.cur().kind {
		case tokPlus:
			op = syntax.ArithAdd
		case tokMinus:
			op = syntax.ArithSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &syntax.Expression{Children: []*syntax.Expression{left, right}, Op: op}
	}
}

func (p *parser) parseTerm() (*syntax.Expression, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		var op syntax.ArithToken
		switch p.cur().kind {
		case tokStar:
			op = syntax.ArithMul
		case tokSlash:
			op = syntax.ArithDiv
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &syntax.Expression{Children: []*syntax.Expression{left, right}, Op: op}
	}
}

func (p *parser) parseFactor() (*syntax.Expression, error) {
	if p.accept(tokLParen) {
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return &syntax.Expression{Children: []*syntax.Expression{inner}}, nil
	}

	if p.at(tokIdent) {
		name, err := p.parseColumnFullName()
		if err != nil {
			return nil, err
		}
		return &syntax.Expression{Comparer: &syntax.Comparer{Column: name}}, nil
	}

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return &syntax.Expression{Comparer: &syntax.Comparer{Literal: lit}}, nil
}

func (p *parser) parseColumnFullName() (string, error) {
	first, err := p.parseIdent()
	if err != nil {
		return "", err
	}
	if !p.accept(tokDot) {
		return first, nil
	}
	second, err := p.parseIdent()
	if err != nil {
		return "", err
	}
	return first + "." + second, nil
}
