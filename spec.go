// FILE: lixenwraith/cfgtree/spec.go
package cfgtree

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog"
)

// CorrectionAction tells what Correct did to an entry.
type CorrectionAction uint8

const (
	// CorrectionAdd set a default where the entry was missing.
	CorrectionAdd CorrectionAction = iota
	// CorrectionReplace overwrote an invalid value with a default or a sub-config.
	CorrectionReplace
	// CorrectionRemove deleted an entry no rule declares.
	CorrectionRemove
)

func (a CorrectionAction) String() string {
	switch a {
	case CorrectionAdd:
		return "add"
	case CorrectionReplace:
		return "replace"
	case CorrectionRemove:
		return "remove"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// CorrectionListener observes each correction. For removals corrected is absent.
type CorrectionListener func(action CorrectionAction, path Path, incorrect, corrected Value)

// LogCorrections returns a listener writing one info event per correction.
func LogCorrections(logger zerolog.Logger) CorrectionListener {
	return func(action CorrectionAction, path Path, incorrect, corrected Value) {
		ev := logger.Info().
			Str("action", action.String()).
			Str("path", path.String())
		if incorrect.IsValid() {
			ev = ev.Str("incorrect", incorrect.String())
		}
		if corrected.IsValid() {
			ev = ev.Str("corrected", corrected.String())
		}
		ev.Msg("config entry corrected")
	}
}

// Rule binds a path to a validity check and the default used to correct it.
type Rule struct {
	Path    Path
	Default Value
	Check   func(Value) bool
}

// Spec is an ordered set of rules. In strict mode entries that no rule
// declares are incorrect and Correct removes them; otherwise they are ignored.
type Spec struct {
	strict bool
	rules  []*Rule
	root   *specLevel
}

// specLevel indexes rule paths for the undeclared-entry pass.
type specLevel struct {
	rule     *Rule
	children map[string]*specLevel
}

func NewSpec(strict bool) *Spec {
	return &Spec{strict: strict, root: &specLevel{}}
}

func (s *Spec) Strict() bool { return s.strict }

// Rules returns the rules in declaration order.
func (s *Spec) Rules() []*Rule {
	out := make([]*Rule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Define adds or replaces the rule for p. Replacing keeps the original position.
func (s *Spec) Define(p Path, def Value, check func(Value) bool) {
	mustPath("define", p)
	if !def.IsValid() {
		panic(&UsageError{Op: "define", Path: p, Err: ErrAbsentValue})
	}
	if !check(def) {
		panic(&UsageError{Op: "define", Path: p, Err: fmt.Errorf("default %s fails its own rule", def)})
	}
	rule := &Rule{Path: append(Path(nil), p...), Default: def, Check: check}

	lvl := s.root
	for _, seg := range p {
		if lvl.children == nil {
			lvl.children = make(map[string]*specLevel)
		}
		next, ok := lvl.children[seg]
		if !ok {
			next = &specLevel{}
			lvl.children[seg] = next
		}
		lvl = next
	}
	if lvl.rule != nil {
		for i, r := range s.rules {
			if r == lvl.rule {
				s.rules[i] = rule
			}
		}
	} else {
		s.rules = append(s.rules, rule)
	}
	lvl.rule = rule
}

// DefineOfKind accepts values of the same kind as def.
func (s *Spec) DefineOfKind(p Path, def Value) {
	kind := def.Kind()
	s.Define(p, def, func(v Value) bool { return v.Kind() == kind })
}

// DefineInRange accepts numbers within [min, max]. With an int default only
// ints are accepted; with a float default ints and floats are.
func (s *Spec) DefineInRange(p Path, def, min, max Value) {
	if def.Kind() == KindInt {
		lo, ok1 := min.AsInt()
		hi, ok2 := max.AsInt()
		if !ok1 || !ok2 {
			panic(&UsageError{Op: "define", Path: p, Err: fmt.Errorf("int range needs int bounds, got %s and %s", min.Kind(), max.Kind())})
		}
		s.Define(p, def, func(v Value) bool {
			i, ok := v.AsInt()
			return ok && i >= lo && i <= hi
		})
		return
	}
	lo, ok1 := min.AsFloat()
	hi, ok2 := max.AsFloat()
	if !ok1 || !ok2 {
		panic(&UsageError{Op: "define", Path: p, Err: fmt.Errorf("range needs numeric bounds, got %s and %s", min.Kind(), max.Kind())})
	}
	s.Define(p, def, func(v Value) bool {
		f, ok := v.AsFloat()
		return ok && f >= lo && f <= hi
	})
}

// DefineInList accepts values equal to one of allowed.
func (s *Spec) DefineInList(p Path, def Value, allowed ...Value) {
	list := append([]Value(nil), allowed...)
	s.Define(p, def, func(v Value) bool {
		for _, a := range list {
			if a.Equal(v) {
				return true
			}
		}
		return false
	})
}

// exprEnv is what an expression rule sees.
type exprEnv struct {
	Value any    `expr:"value"`
	Kind  string `expr:"kind"`
}

// DefineExpr accepts values for which the boolean expression holds. The
// expression sees the value as `value` and its kind name as `kind`, e.g.
// `kind == "int" && value % 2 == 0`. Evaluation errors count as invalid.
func (s *Spec) DefineExpr(p Path, def Value, expression string) error {
	program, err := expr.Compile(expression, expr.Env(exprEnv{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("failed to compile rule for %q: %w", p.String(), err)
	}
	check := func(v Value) bool { return runExpr(program, v) }
	if !check(def) {
		return fmt.Errorf("default %s for %q fails expression %q", def, p.String(), expression)
	}
	s.Define(p, def, check)
	return nil
}

func runExpr(program *vm.Program, v Value) bool {
	out, err := expr.Run(program, exprEnv{Value: v.Interface(), Kind: v.Kind().String()})
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}

// Undefine drops the rule for p and reports whether there was one.
func (s *Spec) Undefine(p Path) bool {
	lvl := s.root
	for _, seg := range p {
		if lvl = lvl.children[seg]; lvl == nil {
			return false
		}
	}
	if lvl.rule == nil {
		return false
	}
	for i, r := range s.rules {
		if r == lvl.rule {
			s.rules = append(s.rules[:i], s.rules[i+1:]...)
			break
		}
	}
	lvl.rule = nil
	return true
}

// IsDefined reports whether a rule exists for p.
func (s *Spec) IsDefined(p Path) bool {
	lvl := s.root
	for _, seg := range p {
		if lvl = lvl.children[seg]; lvl == nil {
			return false
		}
	}
	return lvl.rule != nil
}

// IsCorrect reports whether every rule holds and, in strict mode, whether
// no undeclared entry exists.
func (s *Spec) IsCorrect(c Config) bool {
	for _, r := range s.rules {
		v, ok := c.Get(r.Path)
		if !ok || !r.Check(v) {
			return false
		}
	}
	if s.strict {
		return !hasUndeclared(c, s.root)
	}
	return true
}

func hasUndeclared(c Config, lvl *specLevel) bool {
	for key, v := range All(c) {
		child := lvl.children[key]
		if child == nil {
			return true
		}
		if child.rule != nil {
			continue
		}
		sub, ok := v.AsConfig()
		if !ok || hasUndeclared(sub, child) {
			return true
		}
	}
	return false
}

// Correct fixes c in place and returns the number of corrections.
func (s *Spec) Correct(c Config) int {
	return s.CorrectWithListener(c, nil)
}

// CorrectWithListener fixes c in place, reporting each correction to listener.
// Rules are applied in declaration order; in strict mode undeclared entries are
// removed afterwards in a separate pass.
func (s *Spec) CorrectWithListener(c Config, listener CorrectionListener) int {
	notify := func(action CorrectionAction, p Path, incorrect, corrected Value) {
		if listener != nil {
			listener(action, p, incorrect, corrected)
		}
	}

	count := 0
	for _, r := range s.rules {
		v, ok := c.Get(r.Path)
		if ok && r.Check(v) {
			continue
		}
		// A value where a level is declared gets replaced by Set below
		for i := 1; i < len(r.Path); i++ {
			prefix := r.Path[:i]
			if lv, ok := c.Get(prefix); ok && !lv.IsConfig() {
				notify(CorrectionReplace, prefix, lv, Value{})
				count++
				break
			}
		}
		corrected := cloneFor(c, r.Default)
		c.Set(r.Path, corrected)
		if ok {
			notify(CorrectionReplace, r.Path, v, corrected)
		} else {
			notify(CorrectionAdd, r.Path, Value{}, corrected)
		}
		count++
	}

	if s.strict {
		count += removeUndeclared(c, s.root, nil, notify)
	}
	return count
}

func removeUndeclared(c Config, lvl *specLevel, prefix Path, notify CorrectionListener) int {
	count := 0
	it := c.Iterator()
	for it.HasNext() {
		e := it.Next()
		child := lvl.children[e.Key]
		if child != nil && child.rule != nil {
			continue
		}
		if child != nil {
			if sub, ok := e.Value.AsConfig(); ok {
				count += removeUndeclared(sub, child, prefix.Child(e.Key), notify)
				continue
			}
		}
		it.Remove()
		notify(CorrectionRemove, prefix.Child(e.Key), e.Value, Value{})
		count++
	}
	return count
}

// SpecFromConfig builds a spec from a rules document. Every table holding a
// `default` key is a rule for the path of that table; its optional keys are
// `min` and `max` (range), `in` (list of allowed values) and `expr` (boolean
// expression). A rule with none of them accepts any value of the default's kind.
func SpecFromConfig(rules Config, strict bool) (*Spec, error) {
	s := NewSpec(strict)
	if err := s.defineFrom(rules, nil); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Spec) defineFrom(c Config, prefix Path) error {
	for _, e := range Entries(c) {
		sub, ok := e.Value.AsConfig()
		if !ok {
			return fmt.Errorf("rule %q: expected a table, found %s", prefix.Child(e.Key).String(), e.Value.Kind())
		}
		p := prefix.Child(e.Key)
		def, isRule := sub.Get(Path{"default"})
		if !isRule {
			if err := s.defineFrom(sub, p); err != nil {
				return err
			}
			continue
		}
		if err := s.defineRule(p, def, sub); err != nil {
			return fmt.Errorf("rule %q: %w", p.String(), err)
		}
	}
	return nil
}

func (s *Spec) defineRule(p Path, def Value, rule Config) (err error) {
	// Define panics on a default that fails its rule; report it as an error here
	defer func() {
		if r := recover(); r != nil {
			ue, ok := r.(*UsageError)
			if !ok {
				panic(r)
			}
			err = ue.Err
		}
	}()

	lo, hasMin := rule.Get(Path{"min"})
	hi, hasMax := rule.Get(Path{"max"})
	if hasMin || hasMax {
		if !hasMin || !hasMax {
			return fmt.Errorf("range needs both min and max")
		}
		s.DefineInRange(p, def, lo, hi)
		return nil
	}
	if in, ok := rule.Get(Path{"in"}); ok {
		allowed, isList := in.AsList()
		if !isList {
			return fmt.Errorf("'in' must be a list, found %s", in.Kind())
		}
		s.DefineInList(p, def, allowed...)
		return nil
	}
	if src, ok := rule.Get(Path{"expr"}); ok {
		expression, isString := src.AsString()
		if !isString {
			return fmt.Errorf("'expr' must be a string, found %s", src.Kind())
		}
		return s.DefineExpr(p, def, expression)
	}
	s.DefineOfKind(p, def)
	return nil
}
