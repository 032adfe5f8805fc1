package host

import "github.com/hajimehoshi/ebiten/v2"

// KeyNames memoizes the name of each key code. The format function runs at
// most once per code; later lookups return the stored string.
type KeyNames[K comparable] struct {
	format func(K) string
	names  map[K]string
}

func NewKeyNames[K comparable](format func(K) string) *KeyNames[K] {
	return &KeyNames[K]{format: format, names: make(map[K]string)}
}

func (c *KeyNames[K]) Name(k K) string {
	if name, ok := c.names[k]; ok {
		return name
	}
	name := c.format(k)
	c.names[k] = name
	return name
}

// Len returns the number of cached codes.
func (c *KeyNames[K]) Len() int { return len(c.names) }

func formatKey(k ebiten.Key) string { return k.String() }
