package store

import "errors"

var (
	ErrQueryFailed  = errors.New("store.query_failed")
	ErrDecodeFailed = errors.New("store.decode_failed")
)
