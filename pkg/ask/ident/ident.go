// Package ident generates the opaque correlation ids that let a client tie
// stream events back to the session or stage that produced them. The ids
// carry no ordering semantics; ordering is delivery order.
package ident

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a collision-resistant id with a human-readable prefix,
// e.g. "ask-9f3c…" or "action-11ab…".
func New(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
