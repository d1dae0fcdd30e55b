// Package core holds the vocabulary shared by every role of the rupture
// engine: the immutable parameter Config, the per-step PeerGroup, the
// distortion measure, and the error taxonomy.
//
// Error taxonomy:
//
//   - ErrConfiguration: a required parameter is missing or a role slot is
//     empty. Raised when a state is built, never mid-run.
//   - ErrInvalidSignal: a received signal is NaN or infinite. Raised before
//     any state is touched.
//   - ErrUnknownVariant: a named built-in does not exist; the message lists
//     the valid names.
//   - ErrPeerGroupMismatch: a peer-aware threshold or policy saw an empty or
//     unresolved peer group.
//
// All are fatal to the call that raised them. Nothing retries.
package core
