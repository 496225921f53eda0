package ml

import "strconv"

// Label is a class value as produced by the classifier and stored in the
// ground-truth Class column.
type Label int

// LabelMapping maps class values to display names in a fixed order.
type LabelMapping struct {
	classes []Label
	names   map[Label]string
}

// DefaultLabelMapping returns the five malware categories the models are trained on.
func DefaultLabelMapping() LabelMapping {
	return NewLabelMapping(
		[]Label{1, 2, 3, 4, 5},
		[]string{"Benign", "Adware", "Riskware", "Trojan", "Ransomware"},
	)
}

// NewLabelMapping builds a mapping; classes and names must have equal length.
func NewLabelMapping(classes []Label, names []string) LabelMapping {
	m := LabelMapping{
		classes: append([]Label(nil), classes...),
		names:   make(map[Label]string, len(classes)),
	}
	for i, c := range classes {
		m.names[c] = names[i]
	}
	return m
}

// Name renders a label; values outside the mapping render as their literal value.
func (m LabelMapping) Name(l Label) string {
	if name, ok := m.names[l]; ok {
		return name
	}
	return strconv.Itoa(int(l))
}

// Classes returns the mapped labels in display order.
func (m LabelMapping) Classes() []Label {
	return append([]Label(nil), m.classes...)
}

// Names returns the display names in the same order as Classes.
func (m LabelMapping) Names() []string {
	out := make([]string, len(m.classes))
	for i, c := range m.classes {
		out[i] = m.names[c]
	}
	return out
}
