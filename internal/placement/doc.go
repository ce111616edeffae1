// Package placement maps parsed rows onto placement records.
//
// A [Binding] ties one [Attribute] of a [Record] to a column name in the
// source header. [Map] copies a template record for every row and overwrites
// the bound attributes from the row's values:
//
//	bindings := []placement.Binding{
//	    {Attribute: placement.ObjectName, Column: "name"},
//	    {Attribute: placement.PosX, Column: "x"},
//	}
//	records, err := placement.Map(rows, bindings, placement.Record{})
//
// A binding whose column is missing from a row leaves the template value in
// place. A numeric attribute whose value cannot be read as a number produces
// a [*ConversionError]; by default that aborts the whole call, and
// [PolicySkipRow] drops the row instead.
package placement
