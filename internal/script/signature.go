package script

import "fmt"

// signature describes how call arguments bind to parameters.
type signature struct {
	params   []string
	required int  // leading params without a default
	variadic bool // the last param collects surplus positional args
}

func fixedSignature(params ...string) signature {
	return signature{params: params, required: len(params)}
}

// bind maps npos positional arguments and the named keywords onto
// parameter slots. It returns the slot for each keyword.
func (s signature) bind(fn string, npos int, kws []string) ([]int, error) {
	filled := make([]bool, len(s.params))
	limit := len(s.params)
	if s.variadic {
		limit = len(s.params) - 1
	}
	if npos > limit && !s.variadic {
		return nil, fmt.Errorf("%s() takes %d positional arguments but %d were given", fn, len(s.params), npos)
	}
	for i := 0; i < npos && i < len(s.params); i++ {
		filled[i] = true
	}
	if s.variadic && npos > limit {
		filled[len(s.params)-1] = true
	}

	slots := make([]int, len(kws))
	for i, kw := range kws {
		idx := -1
		for j, p := range s.params {
			if p == kw {
				idx = j
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("%s() got an unexpected keyword argument '%s'", fn, kw)
		}
		if filled[idx] {
			return nil, fmt.Errorf("%s() got multiple values for argument '%s'", fn, kw)
		}
		filled[idx] = true
		slots[i] = idx
	}

	for i := 0; i < s.required; i++ {
		if !filled[i] {
			return nil, fmt.Errorf("%s() missing required argument '%s'", fn, s.params[i])
		}
	}
	return slots, nil
}

// assemble binds evaluated arguments into one value per parameter.
// Unfilled optional parameters are None. A variadic parameter receives a
// list, or the single list argument given in its place.
func (s signature) assemble(fn string, args []Value, kwNames []string, kwValues []Value) []Value {
	slots, err := s.bind(fn, len(args), kwNames)
	if err != nil {
		fail("%v", err)
	}

	out := make([]Value, len(s.params))
	for i := range out {
		out[i] = None
	}
	fixed := len(args)
	if s.variadic && fixed > len(s.params)-1 {
		fixed = len(s.params) - 1
		rest := args[fixed:]
		if len(rest) == 1 && rest[0].Tag == VTList {
			out[len(s.params)-1] = rest[0]
		} else {
			out[len(s.params)-1] = List(append([]Value(nil), rest...))
		}
	}
	copy(out, args[:fixed])
	for i, slot := range slots {
		out[slot] = kwValues[i]
	}
	return out
}
