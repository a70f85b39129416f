// Package paymentsservice owns payments and refunds. It charges through an
// external gateway port, publishes payment and refund outcomes, and consumes
// order events: a cancelled order automatically refunds whatever balance
// remains on its payment, while creation and status broadcasts are observed
// without side effects.
package paymentsservice
