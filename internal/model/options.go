package model

// OptionMap is an ordered mapping from a display label to a link.
//
// Labels keep the order in which they were first added. Setting a label
// that already exists replaces its link but does not move it.
type OptionMap struct {
	labels []string
	links  map[string]string
}

// NewOptionMap creates an empty OptionMap.
func NewOptionMap() *OptionMap {
	return &OptionMap{links: make(map[string]string)}
}

// Set adds label → link, overwriting the link of an existing label.
func (m *OptionMap) Set(label, link string) {
	if m.links == nil {
		m.links = make(map[string]string)
	}
	if _, ok := m.links[label]; !ok {
		m.labels = append(m.labels, label)
	}
	m.links[label] = link
}

// Get returns the link stored for label.
func (m *OptionMap) Get(label string) (string, bool) {
	link, ok := m.links[label]
	return link, ok
}

// Len returns the number of distinct labels.
func (m *OptionMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.labels)
}

// Labels returns a copy of the labels in order.
func (m *OptionMap) Labels() []string {
	out := make([]string, len(m.labels))
	copy(out, m.labels)
	return out
}

// At returns the label and link at position i. It panics if i is out of range.
func (m *OptionMap) At(i int) (label, link string) {
	label = m.labels[i]
	return label, m.links[label]
}
