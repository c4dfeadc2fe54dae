// Package filter narrows classified queue records with expr-lang expressions.
//
// Each expression is compiled once against the status environment (see
// Fields) and must evaluate to a boolean. Compiled filters are cached by
// expression text.
package filter
