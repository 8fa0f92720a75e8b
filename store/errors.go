package store

import "errors"

var errNotSingular = errors.New("store: query returned more than one entity")
