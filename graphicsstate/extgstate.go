package graphicsstate

import (
	"fmt"

	"github.com/tsawler/pdfreveal/core"
)

// DashPattern is a dash array with its phase.
type DashPattern struct {
	Array []float64
	Phase float64
}

// ExtGState is a partial graphics state read from an /ExtGState resource.
// Nil fields were absent from the dictionary and are left untouched by
// Merge.
type ExtGState struct {
	LineWidth        *float64     // LW
	LineCap          *LineCap     // LC
	LineJoin         *LineJoin    // LJ
	MiterLimit       *float64     // ML
	Dash             *DashPattern // D
	FontSize         *float64     // Font
	StrokeAlpha      *float64     // CA
	NonStrokeAlpha   *float64     // ca
	AlphaSource      *bool        // AIS
	StrokeAdjustment *bool        // SA
	Knockout         *bool        // TK
}

// Resolver resolves indirect references. A nil Resolver leaves objects as
// they are.
type Resolver interface {
	Resolve(obj core.Object) (core.Object, error)
}

func resolve(r Resolver, obj core.Object) (core.Object, error) {
	if r == nil {
		return obj, nil
	}
	return r.Resolve(obj)
}

// ParseExtGState reads the keys it recognises from an ExtGState
// dictionary. A dictionary not tagged /Type /ExtGState is rejected with an
// *core.InvalidResourceError naming the resource.
func ParseExtGState(name string, dict core.Dict, r Resolver) (ExtGState, error) {
	var ext ExtGState

	typ, err := resolve(r, dict.Get("Type"))
	if err != nil {
		return ext, &core.InvalidResourceError{Name: name, Reason: fmt.Sprintf("resolving /Type: %v", err)}
	}
	if n, ok := typ.(core.Name); !ok || n != "ExtGState" {
		return ext, &core.InvalidResourceError{Name: name, Reason: "dictionary is not of type /ExtGState"}
	}

	get := func(key string) core.Object {
		obj, err := resolve(r, dict.Get(key))
		if err != nil {
			return nil
		}
		return obj
	}
	number := func(key string) *float64 {
		if f, ok := core.ToFloat(get(key)); ok {
			return &f
		}
		return nil
	}
	boolean := func(key string) *bool {
		if b, ok := get(key).(core.Bool); ok {
			v := bool(b)
			return &v
		}
		return nil
	}

	ext.LineWidth = number("LW")
	ext.MiterLimit = number("ML")
	ext.StrokeAlpha = number("CA")
	ext.NonStrokeAlpha = number("ca")
	ext.AlphaSource = boolean("AIS")
	ext.StrokeAdjustment = boolean("SA")
	ext.Knockout = boolean("TK")

	if v, ok := core.ToInt(get("LC")); ok {
		lc := lineCapFromInt(v)
		ext.LineCap = &lc
	}
	if v, ok := core.ToInt(get("LJ")); ok {
		lj := lineJoinFromInt(v)
		ext.LineJoin = &lj
	}

	// D is [dashArray phase]
	if arr, ok := get("D").(core.Array); ok && len(arr) == 2 {
		inner, _ := resolve(r, arr[0])
		dashArr, okArr := inner.(core.Array)
		rawPhase, _ := resolve(r, arr[1])
		phase, okPhase := core.ToFloat(rawPhase)
		if okArr && okPhase {
			if dash, ok := dashFromArray(dashArr); ok {
				ext.Dash = &DashPattern{Array: dash, Phase: phase}
			}
		}
	}

	// Font is [fontRef size]; only the size is kept
	if arr, ok := get("Font").(core.Array); ok && len(arr) == 2 {
		rawSize, _ := resolve(r, arr[1])
		if size, ok := core.ToFloat(rawSize); ok {
			ext.FontSize = &size
		}
	}

	return ext, nil
}

// Overrides maps /ExtGState resource names to their partial states. It is
// built once per page and only read afterwards.
type Overrides map[string]ExtGState

// BuildOverrides reads every entry of the /ExtGState dictionary in a page's
// resources. Invalid entries are skipped and returned as errors alongside
// the table.
func BuildOverrides(resources core.Dict, r Resolver) (Overrides, []error) {
	overrides := make(Overrides)
	if resources == nil {
		return overrides, nil
	}

	obj, err := resolve(r, resources.Get("ExtGState"))
	if err != nil {
		return overrides, []error{&core.InvalidResourceError{Name: "ExtGState", Reason: err.Error()}}
	}
	table, ok := obj.(core.Dict)
	if !ok {
		return overrides, nil
	}

	var errs []error
	for _, name := range table.Keys() {
		entry, err := resolve(r, table[name])
		if err != nil {
			errs = append(errs, &core.InvalidResourceError{Name: name, Reason: err.Error()})
			continue
		}
		dict, ok := entry.(core.Dict)
		if !ok {
			errs = append(errs, &core.InvalidResourceError{Name: name, Reason: fmt.Sprintf("entry is %T, not a dictionary", entry)})
			continue
		}
		ext, err := ParseExtGState(name, dict, r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		overrides[name] = ext
	}
	return overrides, errs
}
