package brain

const checksumSeed uint32 = 17

// Checksum is a small rolling hash (h = h*33 + r) used to pick reply
// variants. It only needs to be stable, not collision resistant.
func Checksum(text string) uint32 {
	h := checksumSeed
	for _, r := range text {
		h = h*33 + uint32(r)
	}
	return h
}

// pick returns options[Checksum(seed) % len(options)], or "" for no options.
func pick(seed string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[Checksum(seed)%uint32(len(options))]
}
