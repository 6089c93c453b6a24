// Package highlight colours Borsch source for terminal display.
//
// A Ruleset is an ordered list of (pattern, style) rules. Every rule is
// evaluated against the whole source independently and later rules paint
// over earlier ones.
package highlight
