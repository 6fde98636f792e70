package types

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for rule loading and evaluation. Callers match with
// errors.Is; wrapped instances carry context via goerr variables.
var (
	// ErrInvalidPattern indicates a syntactically malformed glob pattern.
	ErrInvalidPattern = goerr.New("invalid glob pattern")

	// ErrDuplicateLabel indicates a rule set declares the same label twice.
	ErrDuplicateLabel = goerr.New("duplicate label in rule set")

	// ErrInvalidConfig indicates a malformed rule configuration structure.
	ErrInvalidConfig = goerr.New("invalid labeler configuration")

	// ErrRulesNotFound indicates the rule configuration file does not exist
	// at the expected location.
	ErrRulesNotFound = goerr.New("labeler configuration not found")
)
