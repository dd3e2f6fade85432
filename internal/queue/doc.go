// Package queue owns queue-item and product state.
//
// The Service wraps every storage round trip with validation, the retention
// policy, and event emission, so handlers stay routing glue. It depends only
// on the storage.Store contract and the domain.EventPublisher interface.
package queue
