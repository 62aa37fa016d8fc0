package tool

// Args is the bound argument set passed to a Handler.
//
// Values are in their decoded JSON form. The accessors return the zero
// value when a parameter is absent or has another type; binding has
// already checked declared types, so handlers can use them directly.
type Args map[string]any

// Has reports whether name was bound (present, or given a default).
func (a Args) Has(name string) bool {
	_, ok := a[name]

	return ok
}

// String returns a string parameter.
func (a Args) String(name string) string {
	s, _ := a[name].(string)

	return s
}

// Int returns an integer parameter.
func (a Args) Int(name string) int {
	f, _ := a[name].(float64)

	return int(f)
}

// Float returns a number parameter.
func (a Args) Float(name string) float64 {
	f, _ := a[name].(float64)

	return f
}

// Bool returns a boolean parameter.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)

	return b
}

// Map returns an object parameter.
func (a Args) Map(name string) map[string]any {
	m, _ := a[name].(map[string]any)

	return m
}

// Slice returns an array parameter.
func (a Args) Slice(name string) []any {
	s, _ := a[name].([]any)

	return s
}
