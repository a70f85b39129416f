// Package ordersservice owns the order aggregate and its status lifecycle.
// Status transitions arrive from two directions: user requests through the
// HTTP surface and choreography events consumed from the payment, inventory
// and shipping topics. Both paths go through the same transition guard, which
// enforces the closed status set and converges same-status requests without
// writes or publications.
package ordersservice
