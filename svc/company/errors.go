package company

import "errors"

var ErrInvalidIdentifier = errors.New("company.invalid_identifier")
