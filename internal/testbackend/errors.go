package testbackend

import "errors"

var errUnknownAccount = errors.New("testbackend: unknown account")
