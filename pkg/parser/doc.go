// Package parser extracts a lightweight symbol model from PHP source text.
//
// Extraction is line-oriented and regex-driven: each trimmed line is matched
// against namespace, import, class-like and method declaration patterns. No
// syntax tree is built, so unrecognized syntax is simply not captured.
package parser
