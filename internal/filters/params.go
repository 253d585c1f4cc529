package filters

// Params holds a stream's decode parameters with PDF numbers converted to
// int or float64 and booleans to bool.
type Params map[string]interface{}

// Int returns the integer stored under key, or def when it is missing or
// not a number.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the boolean stored under key, or def.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}
