package osd

// KeyValuePair is a generic key/value tuple used where a plain map would lose
// ordering (e.g. batched cache updates).
type KeyValuePair[TK any, TV any] struct {
	Key   TK
	Value TV
}
