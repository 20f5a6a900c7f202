// Package store provides role registry persistence.
package store

import "tokengate/pkg/platform/sentinel"

// ErrNotFound is returned when the owner has never been set.
var ErrNotFound = sentinel.ErrNotFound
