// Package session is the per-customer state store behind checkout. Each
// anonymous storefront session owns a small set of JSON-valued keys (cart,
// delivery info, discount, last order) with last-write-wins semantics.
package session

import "context"

type Key string

const (
	KeyCart            Key = "cart"
	KeyDeliveryInfo    Key = "delivery_info"
	KeyCustomer        Key = "customer"
	KeyAddress         Key = "address"
	KeyAppliedDiscount Key = "applied_discount"
	KeyLastOrder       Key = "last_order"
	KeyCheckoutState   Key = "checkout_state"
	KeyAddToOrder      Key = "add_to_order"
	KeyGroupOrder      Key = "group_order"
	KeyGroupJoin       Key = "group_join"
	KeyPaymentPending  Key = "payment_pending"
)

// Store persists session state. Implementations must treat concurrent writes
// to the same key as last-write-wins; no conflict resolution is attempted.
type Store interface {
	// Get unmarshals the stored value into dest and reports whether the key
	// was present.
	Get(ctx context.Context, sessionID int64, key Key, dest any) (bool, error)
	Put(ctx context.Context, sessionID int64, key Key, value any) error
	Delete(ctx context.Context, sessionID int64, keys ...Key) error
}
