package memworld

// palette maps names to small ints so they fit in a pixel channel.
// Index 0 is always the "nothing" name.
type palette struct {
	names   []string
	indexes map[string]uint16
}

func newPalette(zero string) *palette {
	return &palette{
		names:   []string{zero},
		indexes: map[string]uint16{zero: 0},
	}
}

// index returns the index of name, adding it if needed
func (p *palette) index(name string) uint16 {
	i, ok := p.indexes[name]
	if ok {
		return i
	}
	i = uint16(len(p.names))
	p.names = append(p.names, name)
	p.indexes[name] = i
	return i
}

// name returns the name at index i
func (p *palette) name(i uint16) string {
	if int(i) >= len(p.names) {
		return p.names[0]
	}
	return p.names[i]
}
