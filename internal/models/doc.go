// Package models defines the core domain records for BestSplit.
//
// # Records
//
//   - Group: a set of member identities that share expenses
//   - Expense: a shared expense with a payer and a per-member share map
//   - Settlement: a real-world payment between two members
//   - User: a registered identity backing the member strings
//
// Members are identified by opaque string user IDs. Group, Expense and
// Settlement carry numeric IDs assigned by the record store; an ID of 0
// means "not yet persisted". Timestamps are epoch milliseconds.
//
// The JSON field names on these structs are the wire shape shared with the
// remote ledger; changing them breaks reconciliation with already-stored
// documents.
package models
