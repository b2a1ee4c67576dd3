// Package auth implements the account lifecycle and token authentication
// core of the Soulforger backend.
//
// Account lifecycle:
//   - Accounts are created as applications in one of two pending partitions
//     (testers, admins) and migrate into the active partition once a
//     reviewer with sufficient privilege approves them. Denied applications
//     are deleted and leave no trace beyond the DecisionSink notification.
//   - Usernames and emails are unique across all three partitions at once;
//     the controller re-checks the invariant around every insert.
//
// Tokens:
//   - TokenService signs HS256 bearer tokens whose subject is the account
//     id and whose "plv" claim snapshots the privilege level at issuance.
//     Validation distinguishes malformed, tampered, and expired tokens so
//     the HTTP boundary can map them to distinct status codes.
//
// Decision sinks:
//   - DecisionSink is a best-effort notification hook invoked after every
//     application approval or denial. Errors are logged, never propagated,
//     so a notification backend cannot block the review flow.
package auth
