// Package persistence saves a snapshot of the node database between runs,
// so clients can show known nodes before the first config sync completes.
package persistence
