// Package fields implements field-by-field data collection: the field registry,
// kind-specific prompts, answer validation, branching and the field menu.
package fields
