package enum

// ── Order lifecycle (CHECK constrained in DB) ──

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// ── Roles (CHECK constrained in DB) ──

const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

// ── Derived transaction labels (never persisted) ──

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusRefunded  = "refunded"
)

const (
	GatewayStripe   = "stripe"
	GatewayPaypal   = "paypal"
	GatewayRazorpay = "razorpay"
)

// IsValidOrderStatus reports whether s is one of the recognized order statuses.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsValidRole reports whether role is one of the recognized user roles.
func IsValidRole(role string) bool {
	switch role {
	case UserRoleUser, UserRoleAdmin:
		return true
	}
	return false
}
