package types

// Event is the generic envelope emitted by native modules. Attributes hold
// string-rendered values so events survive serialization unchanged.
type Event struct {
	Type       string
	Attributes map[string]string
}
