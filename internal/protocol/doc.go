// Package protocol owns the printer wire contract and parsing primitives.
//
// Ownership boundary:
// - SGD get/set/do message templates
// - response unwrapping
// - payload language detection
// - fixed control command bytes
package protocol
