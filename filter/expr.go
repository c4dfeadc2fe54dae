package filter

import (
	"maps"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/s0up4200/jnetcce/cce"
)

// DefaultCacheSize is the number of compiled expressions kept by NewCompiler
const DefaultCacheSize = 64

// Filter is a compiled boolean expression over a cce.RequestStatus
type Filter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// Compiler compiles status expressions such as
//
//	Queued && Type == "docket" && hasPrefixFold(Key, "cp-51")
type Compiler struct {
	helpers map[string]any
	cache   *lruCache[*Filter]
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithCache sets how many compiled expressions are kept. Zero disables caching.
func WithCache(size int) CompilerOption {
	return func(c *Compiler) {
		if size > 0 {
			c.cache = newLRUCache[*Filter](size)
		} else {
			c.cache = nil
		}
	}
}

// WithCustomFunctions adds helper functions usable in expressions
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *Compiler) {
		maps.Copy(c.helpers, funcs)
	}
}

// NewCompiler creates a new expression compiler
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		helpers: helperFunctions(),
		cache:   newLRUCache[*Filter](DefaultCacheSize),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles expression. Unknown identifiers are rejected.
func (c *Compiler) Compile(expression string) (*Filter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Reason: "empty expression"}
	}

	if c.cache != nil {
		if f, ok := c.cache.Get(expression); ok {
			return f, nil
		}
	}

	program, err := expr.Compile(expression,
		expr.Env(environment(cce.RequestStatus{}, c.helpers)),
		expr.AsBool(),
	)
	if err != nil {
		return nil, &CompilationError{Expression: expression, Reason: "failed to compile expression", Err: err}
	}

	f := &Filter{expression: expression, program: program, helpers: c.helpers}
	if c.cache != nil {
		c.cache.Put(expression, f)
	}
	return f, nil
}

// CacheLen returns the number of cached filters
func (c *Compiler) CacheLen() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

// Expression returns the source expression
func (f *Filter) Expression() string {
	return f.expression
}

// Match evaluates the filter against one status
func (f *Filter) Match(s cce.RequestStatus) (bool, error) {
	result, err := expr.Run(f.program, environment(s, f.helpers))
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, FileID: s.FileID, Err: err}
	}
	return result.(bool), nil
}

// Apply returns the statuses the filter matches, preserving order
func (f *Filter) Apply(statuses []cce.RequestStatus) ([]cce.RequestStatus, error) {
	var out []cce.RequestStatus
	for _, s := range statuses {
		ok, err := f.Match(s)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Fields lists the status fields available in expressions
var Fields = []string{"TrackingID", "FileID", "Queued", "Found", "NotFound", "Resolved", "Type", "Key", "Message", "Text", "State"}

func environment(s cce.RequestStatus, helpers map[string]any) map[string]any {
	env := make(map[string]any, len(helpers)+len(Fields))
	maps.Copy(env, helpers)
	env["TrackingID"] = s.CorrelationID
	env["FileID"] = string(s.FileID)
	env["Queued"] = s.Queued
	env["Found"] = s.IsFound()
	env["NotFound"] = s.IsNotFound()
	env["Resolved"] = s.IsResolved()
	env["Type"] = string(s.KeyKind)
	env["Key"] = s.Key
	env["Message"] = s.Message
	env["Text"] = s.Text
	env["State"] = s.State()
	return env
}

// helperFunctions complements expr's builtins with case-insensitive matching
func helperFunctions() map[string]any {
	return map[string]any{
		"containsFold": func(str, substr string) bool {
			return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
		},
		"hasPrefixFold": func(str, prefix string) bool {
			return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
		},
		"hasSuffixFold": func(str, suffix string) bool {
			return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
		},
	}
}
