// Package runtime holds the mutable state an executing session owns: the
// variable store and the output-streaming primitives.
package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ArrayKind classifies a variable's value shape.
type ArrayKind int

const (
	KindScalar ArrayKind = iota
	KindIndexed
	KindAssoc
)

func (k ArrayKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindIndexed:
		return "indexed"
	case KindAssoc:
		return "associative"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// CaseFold selects the case coercion applied on assignment.
type CaseFold int

const (
	FoldNone CaseFold = iota
	FoldUpper
	FoldLower
)

// VariableErrorKind discriminates store failures.
type VariableErrorKind int

const (
	ErrReadonly VariableErrorKind = iota
	ErrBadIndex
	ErrCircularNameref
	ErrKindMismatch
	ErrUnset
)

// VariableError reports a rejected store operation. The store never
// mutates state when returning one.
type VariableError struct {
	Kind    VariableErrorKind
	Name    string
	Message string
}

func (e *VariableError) Error() string {
	return fmt.Sprintf("variable %s: %s", e.Name, e.Message)
}

// Variable is one store entry: a scalar, an indexed array, or an
// associative array, plus its attribute flags. A nameref holds only the
// target name; its shape is whatever the target's is.
type Variable struct {
	scalar   string
	indexed  map[int64]string
	assoc    map[string]string
	kind     ArrayKind
	readonly bool
	export   bool
	integer  bool
	fold     CaseFold
	nameref  string
}

// Store maps names to variables. It is not internally locked: a session
// serialises all access through its own goroutine, which is the shared
// resource discipline the engine relies on.
type Store struct {
	vars map[string]*Variable
}

// NewStore returns an empty variable store.
func NewStore() *Store {
	return &Store{vars: make(map[string]*Variable)}
}

// resolve follows nameref indirection to the effective name. A visited
// set guards against reference cycles, which fail instead of spinning.
func (s *Store) resolve(name string) (string, error) {
	seen := map[string]bool{}
	for {
		if seen[name] {
			return "", &VariableError{Kind: ErrCircularNameref, Name: name, Message: "circular name reference"}
		}
		seen[name] = true
		v, ok := s.vars[name]
		if !ok || v.nameref == "" {
			return name, nil
		}
		name = v.nameref
	}
}

func (s *Store) lookup(name string) (*Variable, string, error) {
	target, err := s.resolve(name)
	if err != nil {
		return nil, "", err
	}
	return s.vars[target], target, nil
}

// IsSet reports whether name resolves to an existing variable.
func (s *Store) IsSet(name string) bool {
	v, _, err := s.lookup(name)
	return err == nil && v != nil
}

// Get returns the scalar value of name; for arrays it returns element 0
// (or the empty string when absent), matching $name on an array.
func (s *Store) Get(name string) (string, error) {
	v, _, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	switch v.kind {
	case KindIndexed:
		return v.indexed[0], nil
	case KindAssoc:
		return v.assoc["0"], nil
	default:
		return v.scalar, nil
	}
}

// GetIndex reads one indexed-array slot. Index 0 on a scalar returns the
// scalar. Negative indices address from max_key+1 backwards; resolving
// below zero yields the empty string.
func (s *Store) GetIndex(name string, index int64) (string, error) {
	v, _, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	if v == nil {
		return "", nil
	}
	switch v.kind {
	case KindScalar:
		if index == 0 {
			return v.scalar, nil
		}
		return "", nil
	case KindAssoc:
		return v.assoc[strconv.FormatInt(index, 10)], nil
	}
	if index < 0 {
		index = maxKey(v.indexed) + 1 + index
		if index < 0 {
			return "", nil
		}
	}
	return v.indexed[index], nil
}

// GetKey reads one associative-array slot; a missing key yields the
// empty string, never an error.
func (s *Store) GetKey(name, key string) (string, error) {
	v, _, err := s.lookup(name)
	if err != nil {
		return "", err
	}
	if v == nil || v.kind != KindAssoc {
		return "", nil
	}
	return v.assoc[key], nil
}

// Set assigns a scalar value, creating the variable if needed.
func (s *Store) Set(name, value string) error {
	v, target, err := s.lookup(name)
	if err != nil {
		return err
	}
	if v != nil && v.readonly {
		return &VariableError{Kind: ErrReadonly, Name: target, Message: "readonly variable"}
	}
	if v == nil {
		v = &Variable{}
		s.vars[target] = v
	}
	if v.kind == KindIndexed {
		v.indexed[0] = v.coerce(value)
		return nil
	}
	if v.kind == KindAssoc {
		v.assoc["0"] = v.coerce(value)
		return nil
	}
	v.scalar = v.coerce(value)
	return nil
}

// SetIndex assigns one indexed-array slot, converting a scalar into an
// indexed array on first use. Negative indices resolve as in GetIndex
// but may not land below zero.
func (s *Store) SetIndex(name string, index int64, value string) error {
	v, target, err := s.lookup(name)
	if err != nil {
		return err
	}
	if v != nil && v.readonly {
		return &VariableError{Kind: ErrReadonly, Name: target, Message: "readonly variable"}
	}
	if v == nil {
		v = &Variable{}
		s.vars[target] = v
	}
	if v.kind == KindAssoc {
		v.assoc[strconv.FormatInt(index, 10)] = v.coerce(value)
		return nil
	}
	if v.kind == KindScalar {
		v.kind = KindIndexed
		v.indexed = map[int64]string{}
		if v.scalar != "" {
			v.indexed[0] = v.scalar
			v.scalar = ""
		}
	}
	if index < 0 {
		index = maxKey(v.indexed) + 1 + index
		if index < 0 {
			return &VariableError{Kind: ErrBadIndex, Name: target, Message: fmt.Sprintf("index %d out of range", index)}
		}
	}
	v.indexed[index] = v.coerce(value)
	return nil
}

// SetKey assigns one associative-array slot. The variable must already
// be associative (declared via DeclareAssoc or an assoc initialiser).
func (s *Store) SetKey(name, key, value string) error {
	v, target, err := s.lookup(name)
	if err != nil {
		return err
	}
	if v != nil && v.readonly {
		return &VariableError{Kind: ErrReadonly, Name: target, Message: "readonly variable"}
	}
	if v == nil {
		v = &Variable{kind: KindAssoc, assoc: map[string]string{}}
		s.vars[target] = v
	}
	if v.kind != KindAssoc {
		return &VariableError{Kind: ErrKindMismatch, Name: target, Message: "not an associative array"}
	}
	v.assoc[key] = v.coerce(value)
	return nil
}

// DeclareAssoc creates (or re-types an unset) name as an associative
// array.
func (s *Store) DeclareAssoc(name string) error {
	v, target, err := s.lookup(name)
	if err != nil {
		return err
	}
	if v != nil {
		if v.readonly {
			return &VariableError{Kind: ErrReadonly, Name: target, Message: "readonly variable"}
		}
		if v.kind != KindAssoc {
			return &VariableError{Kind: ErrKindMismatch, Name: target, Message: "already declared with another shape"}
		}
		return nil
	}
	s.vars[target] = &Variable{kind: KindAssoc, assoc: map[string]string{}}
	return nil
}

// Unset removes a variable; removing a readonly variable is rejected.
func (s *Store) Unset(name string) error {
	v, target, err := s.lookup(name)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if v.readonly {
		return &VariableError{Kind: ErrReadonly, Name: target, Message: "readonly variable"}
	}
	delete(s.vars, target)
	return nil
}

// Attr identifies one settable attribute flag.
type Attr int

const (
	AttrReadonly Attr = iota
	AttrExport
	AttrInteger
	AttrUpper
	AttrLower
)

// SetAttr flags an attribute on name, creating the variable when absent.
// Readonly, once set, is permanent.
func (s *Store) SetAttr(name string, attr Attr) error {
	v, target, err := s.lookup(name)
	if err != nil {
		return err
	}
	if v == nil {
		v = &Variable{}
		s.vars[target] = v
	}
	switch attr {
	case AttrReadonly:
		v.readonly = true
	case AttrExport:
		v.export = true
	case AttrInteger:
		v.integer = true
	case AttrUpper:
		v.fold = FoldUpper
	case AttrLower:
		v.fold = FoldLower
	}
	return nil
}

// SetNameref makes name an indirection to target. A variable already
// holding an array shape cannot become a nameref.
func (s *Store) SetNameref(name, target string) error {
	v := s.vars[name]
	if v == nil {
		s.vars[name] = &Variable{nameref: target}
		return nil
	}
	if v.readonly {
		return &VariableError{Kind: ErrReadonly, Name: name, Message: "readonly variable"}
	}
	if v.kind != KindScalar {
		return &VariableError{Kind: ErrKindMismatch, Name: name, Message: "arrays cannot become namerefs"}
	}
	v.nameref = target
	return nil
}

// IsReadonly reports whether name carries the readonly attribute.
func (s *Store) IsReadonly(name string) bool {
	v, _, err := s.lookup(name)
	return err == nil && v != nil && v.readonly
}

// IsNameref reports whether name itself (without resolution) indirects.
func (s *Store) IsNameref(name string) bool {
	v := s.vars[name]
	return v != nil && v.nameref != ""
}

// NamerefTarget returns the immediate indirection target of name.
func (s *Store) NamerefTarget(name string) string {
	v := s.vars[name]
	if v == nil {
		return ""
	}
	return v.nameref
}

// IsArray reports whether name holds either array shape.
func (s *Store) IsArray(name string) bool {
	v, _, err := s.lookup(name)
	return err == nil && v != nil && v.kind != KindScalar
}

// IsAssociative reports whether name holds an associative array.
func (s *Store) IsAssociative(name string) bool {
	v, _, err := s.lookup(name)
	return err == nil && v != nil && v.kind == KindAssoc
}

// Kind returns the value shape of name (KindScalar when unset).
func (s *Store) Kind(name string) ArrayKind {
	v, _, err := s.lookup(name)
	if err != nil || v == nil {
		return KindScalar
	}
	return v.kind
}

// Length returns the element count: 1 for a set scalar, 0 when unset.
func (s *Store) Length(name string) int {
	v, _, err := s.lookup(name)
	if err != nil || v == nil {
		return 0
	}
	switch v.kind {
	case KindIndexed:
		return len(v.indexed)
	case KindAssoc:
		return len(v.assoc)
	default:
		return 1
	}
}

// Keys enumerates array keys: indexed arrays in ascending integer order,
// associative arrays in unspecified order.
func (s *Store) Keys(name string) []string {
	v, _, err := s.lookup(name)
	if err != nil || v == nil {
		return nil
	}
	switch v.kind {
	case KindIndexed:
		keys := sortedKeys(v.indexed)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, strconv.FormatInt(k, 10))
		}
		return out
	case KindAssoc:
		out := make([]string, 0, len(v.assoc))
		for k := range v.assoc {
			out = append(out, k)
		}
		return out
	default:
		return []string{"0"}
	}
}

// Values enumerates array values in the same order as Keys.
func (s *Store) Values(name string) []string {
	v, _, err := s.lookup(name)
	if err != nil || v == nil {
		return nil
	}
	switch v.kind {
	case KindIndexed:
		keys := sortedKeys(v.indexed)
		out := make([]string, 0, len(keys))
		for _, k := range keys {
			out = append(out, v.indexed[k])
		}
		return out
	case KindAssoc:
		out := make([]string, 0, len(v.assoc))
		for k := range v.assoc {
			out = append(out, v.assoc[k])
		}
		return out
	default:
		return []string{v.scalar}
	}
}

// Names lists every defined variable name in sorted order.
func (s *Store) Names() []string {
	out := make([]string, 0, len(s.vars))
	for k := range s.vars {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Environ renders exported scalar variables as k=v pairs for spawning,
// sorted by name.
func (s *Store) Environ() []string {
	var out []string
	for name, v := range s.vars {
		if !v.export || v.kind != KindScalar || v.nameref != "" {
			continue
		}
		out = append(out, name+"="+v.scalar)
	}
	sort.Strings(out)
	return out
}

func (v *Variable) coerce(value string) string {
	if v.integer {
		n, err := strconv.ParseInt(strings.TrimSpace(value), 0, 64)
		if err != nil {
			n = 0
		}
		value = strconv.FormatInt(n, 10)
	}
	switch v.fold {
	case FoldUpper:
		value = strings.ToUpper(value)
	case FoldLower:
		value = strings.ToLower(value)
	}
	return value
}

func maxKey(m map[int64]string) int64 {
	max := int64(-1)
	for k := range m {
		if k > max {
			max = k
		}
	}
	return max
}

func sortedKeys(m map[int64]string) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
