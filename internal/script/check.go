package script

// checker validates a parsed module before it runs: top-level shape,
// duplicate definitions, name resolution and call arity.
type checker struct {
	funcs map[string]*FuncDef
}

func check(stmts []Stmt) (map[string]*FuncDef, []*FuncDef, error) {
	c := &checker{funcs: make(map[string]*FuncDef)}
	var order []*FuncDef

	for _, s := range stmts {
		switch s := s.(type) {
		case *FuncDef:
			if _, dup := c.funcs[s.Name]; dup {
				return nil, nil, errorf(s.Pos, "function '%s' is already defined", s.Name)
			}
			if isModuleRef(s.Name) {
				return nil, nil, errorf(s.Pos, "cannot redefine module name '%s'", s.Name)
			}
			c.funcs[s.Name] = s
			order = append(order, s)
		case *ReturnStmt:
			return nil, nil, errorf(s.Pos, "'return' outside function")
		default:
			return nil, nil, errorf(s.Position(), "only function definitions are allowed at top level")
		}
	}

	for _, fd := range order {
		if err := c.function(fd); err != nil {
			return nil, nil, err
		}
	}
	return c.funcs, order, nil
}

// scope tracks the names bound so far in a function body, plus every name
// the body assigns anywhere, to tell unbound locals from undefined names.
type scope struct {
	bound    map[string]bool
	assigned map[string]bool
}

func (s scope) with() scope {
	bound := make(map[string]bool, len(s.bound))
	for k := range s.bound {
		bound[k] = true
	}
	return scope{bound: bound, assigned: s.assigned}
}

func (c *checker) function(fd *FuncDef) error {
	sc := scope{bound: make(map[string]bool), assigned: make(map[string]bool)}
	for _, p := range fd.Params {
		if sc.bound[p.Name] {
			return errorf(p.Pos, "duplicate argument '%s' in function definition", p.Name)
		}
		if isModuleRef(p.Name) {
			return errorf(p.Pos, "cannot use module name '%s' as a parameter", p.Name)
		}
		sc.bound[p.Name] = true
	}
	collectAssigned(fd.Body, sc.assigned)
	_, err := c.block(fd.Body, sc)
	return err
}

func collectAssigned(body []Stmt, into map[string]bool) {
	for _, s := range body {
		switch s := s.(type) {
		case *AssignStmt:
			for _, t := range s.Targets {
				into[t.ID] = true
			}
		case *IfStmt:
			collectAssigned(s.Then, into)
			collectAssigned(s.Else, into)
		}
	}
}

// block checks statements in order and returns the names bound after it.
func (c *checker) block(body []Stmt, sc scope) (scope, error) {
	for _, s := range body {
		var err error
		if sc, err = c.stmt(s, sc); err != nil {
			return sc, err
		}
	}
	return sc, nil
}

func (c *checker) stmt(s Stmt, sc scope) (scope, error) {
	switch s := s.(type) {
	case *FuncDef:
		return sc, errorf(s.Pos, "nested function definitions are not supported")
	case *ReturnStmt:
		if s.Value != nil {
			return sc, c.expr(s.Value, sc)
		}
	case *AssignStmt:
		if err := c.expr(s.Value, sc); err != nil {
			return sc, err
		}
		for _, t := range s.Targets {
			if isModuleRef(t.ID) {
				return sc, errorf(t.Pos, "cannot assign to module name '%s'", t.ID)
			}
			sc.bound[t.ID] = true
		}
	case *AugAssignStmt:
		if err := c.expr(s.Target, sc); err != nil {
			return sc, err
		}
		return sc, c.expr(s.Value, sc)
	case *IfStmt:
		if err := c.expr(s.Cond, sc); err != nil {
			return sc, err
		}
		then, err := c.block(s.Then, sc.with())
		if err != nil {
			return sc, err
		}
		els, err := c.block(s.Else, sc.with())
		if err != nil {
			return sc, err
		}
		// Names bound on either branch may be used afterwards; the
		// interpreter reports the path where they are not.
		for k := range then.bound {
			sc.bound[k] = true
		}
		for k := range els.bound {
			sc.bound[k] = true
		}
	case *ExprStmt:
		return sc, c.expr(s.X, sc)
	}
	return sc, nil
}

func (c *checker) expr(e Expr, sc scope) error {
	switch e := e.(type) {
	case *Name:
		return c.name(e, sc)
	case *ListLit:
		for _, x := range e.Elems {
			if err := c.expr(x, sc); err != nil {
				return err
			}
		}
	case *UnaryExpr:
		return c.expr(e.X, sc)
	case *BinaryExpr:
		if err := c.expr(e.X, sc); err != nil {
			return err
		}
		return c.expr(e.Y, sc)
	case *Attribute:
		if dotted, ok := dottedName(e); ok && isModuleRef(dotted) {
			return errorf(e.Pos, "module attribute '%s' cannot be used as a value", dotted)
		}
		return c.expr(e.X, sc)
	case *Index:
		if err := c.expr(e.X, sc); err != nil {
			return err
		}
		return c.expr(e.Index, sc)
	case *Call:
		return c.call(e, sc)
	}
	return nil
}

func (c *checker) name(n *Name, sc scope) error {
	switch {
	case sc.bound[n.ID]:
		return nil
	case sc.assigned[n.ID]:
		return errorf(n.Pos, "local variable '%s' referenced before assignment", n.ID)
	case isModuleRef(n.ID):
		return errorf(n.Pos, "module '%s' cannot be used as a value", n.ID)
	case c.funcs[n.ID] != nil:
		return errorf(n.Pos, "function '%s' cannot be used as a value", n.ID)
	default:
		return errorf(n.Pos, "name '%s' is not defined", n.ID)
	}
}

func (c *checker) call(call *Call, sc scope) error {
	for _, a := range call.Args {
		if err := c.expr(a, sc); err != nil {
			return err
		}
	}
	kwNames := make([]string, len(call.Keywords))
	for i, kw := range call.Keywords {
		if err := c.expr(kw.Value, sc); err != nil {
			return err
		}
		kwNames[i] = kw.Name
	}

	var (
		name string
		sig  signature
		npos = len(call.Args)
	)
	switch fn := call.Func.(type) {
	case *Name:
		if sc.bound[fn.ID] {
			return errorf(fn.Pos, "'%s' is not callable", fn.ID)
		}
		if fd, ok := c.funcs[fn.ID]; ok {
			name, sig = fd.Name, fixedSignature(paramNames(fd)...)
		} else if b, ok := builtins.plain[fn.ID]; ok {
			name, sig = b.name, b.sig
		} else {
			return errorf(fn.Pos, "function '%s' is not defined", fn.ID)
		}
	case *Attribute:
		if dotted, ok := dottedName(fn); ok && isModuleRef(dotted) {
			b, found := builtins.lookupQualified(dotted)
			if !found {
				return errorf(fn.Pos, "unknown builtin '%s'", dotted)
			}
			name, sig = dotted, b.sig
			break
		}
		if err := c.expr(fn.X, sc); err != nil {
			return err
		}
		b, ok := builtins.methods[fn.Name]
		if !ok {
			return errorf(fn.Pos, "unknown tensor method '%s'", fn.Name)
		}
		name, sig, npos = b.name, b.sig, npos+1
	default:
		return errorf(call.Pos, "expression is not callable")
	}

	if _, err := sig.bind(name, npos, kwNames); err != nil {
		return errorf(call.Pos, "%v", err)
	}
	return nil
}
