package domain

import "errors"

// ErrUnbalanced marks a settlement journal whose debits and credits do
// not net to zero within tolerance. It blocks downstream posting and is
// never auto-corrected.
var ErrUnbalanced = errors.New("journal out of balance")
