// Package graphicsstate replays content stream operators and tracks the
// resulting imaging state.
//
// # Trackers
//
// Each concern has its own tracker with an Observe method that ignores
// operators it does not recognise:
//   - ColorState: stroke and non-stroke Color (g, G, rg, RG, k, K, cs, CS)
//   - TextState: spacing, scaling, leading, font size, rendering mode, rise
//     and the text line matrix (BT, ET, Td, TD, Tm, T*, ', ")
//   - LineStyle: width, cap, join, miter limit and dash (w, J, j, M, d)
//   - Path: subpaths built by m, l, c, v, y, re and h
//
// GraphicsState composes the first three with the CTM, alpha constants and
// flags. PageState adds the q/Q stack, the page's ExtGState overrides, the
// current Path and a draw-order id:
//
//	ps := graphicsstate.NewPageState(overrides)
//	for _, op := range ops {
//		if err := ps.Observe(op); err != nil {
//			log.Printf("warning: %v", err)
//		}
//		if graphicsstate.IsFillOperator(op.Operator) && ps.Path.IsRectangle(20, 400) {
//			// ...
//		}
//	}
//
// # Paths
//
// Painting operators do not discard the current path. It is replaced at
// the next construction operator that arrives without a current point, so
// consecutive painting operators observe the same subpaths.
//
// IsRectangle classifies by bounding box only. IsStrictRectangle also
// requires four perpendicular edges of the right length.
//
// # Colors
//
// Colors are compared through a fixed RGB approximation; see Color.ToRGB.
// Color.Emit writes a color back as an operator in one of two EmitModes.
package graphicsstate
