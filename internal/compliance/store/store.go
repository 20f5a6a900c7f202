// Package store provides compliance flag and policy persistence.
package store

import "tokengate/pkg/platform/sentinel"

// ErrUnavailable is returned when a backing store cannot be reached.
var ErrUnavailable = sentinel.ErrUnavailable
