// Package kb recognizes Microsoft Knowledge Base update identifiers.
//
// A KB identifier is the literal "KB" followed by exactly seven decimal
// digits. The marker may be embedded in a longer string such as a
// catalog title ("2021-05 Cumulative Update ... (KB5003173)"), so the same
// pattern serves both as a predicate for user input and as an extractor
// for catalog text.
//
// # Usage
//
//	if !kb.MatchesFormat(arg) {
//	    return kb.ErrInvalidFormat
//	}
//	number, _ := kb.ExtractNumber("Security Update (KB5001330)") // "5001330"
//	kb.Format(number)                                          // "KB5001330"
package kb
