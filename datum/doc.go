// Package datum models the loosely structured records emitted by the
// rendering engine and stored in dataset rows.
//
// # Values
//
// A Value is a recursive tagged type:
//
//   - Null: datum.Null()
//   - Int: datum.Int(2024)
//   - Float: datum.Float(3.14)
//   - String: datum.String("tech")
//   - Bool: datum.Bool(true)
//   - Time: datum.Time(t)
//   - Array: datum.Array([]datum.Value{...})
//   - Map: datum.Map(datum.Document{...})
//   - Identity: datum.ID(id)
//
// Example:
//
//	d := datum.Document{
//	    "category": datum.String("tech"),
//	    "sales":    datum.Int(2024),
//	}
//
// # Normalization
//
// Normalize unwraps rendered items (including facet containers) into a flat
// list of shallow-copied documents. StripReserved and Redact hide the
// interactivity reserved words (__identity__, __row__, __selected__ and the
// highlight companions) from display consumers.
package datum
