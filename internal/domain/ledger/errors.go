package ledger

import "errors"

var ErrNonPositiveCredit = errors.New("credit amount must be positive")
